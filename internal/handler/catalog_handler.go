package handler

import (
	"strconv"

	"speaklab/internal/domain"
	"speaklab/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler exposes the tier and college reference data.
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListTiers returns the difficulty tier catalog.
// GET /api/tiers
func (h *CatalogHandler) ListTiers(c *fiber.Ctx) error {
	tiers, err := h.catalogService.ListTiers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(tiers)
}

// GetTierByID returns a single tier.
// GET /api/tiers/:id
func (h *CatalogHandler) GetTierByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return domain.NewInvalidInputError("tier id must be an integer")
	}
	tier, err := h.catalogService.GetTierByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(tier)
}

// GetTierByName returns a single tier resolved by name, case-insensitively.
// GET /api/tiers/by-name/:name
func (h *CatalogHandler) GetTierByName(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return domain.NewInvalidInputError("tier name is required")
	}
	tier, err := h.catalogService.GetTierByName(c.Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(tier)
}

// ListColleges returns the colleges shown at registration.
// GET /api/colleges
func (h *CatalogHandler) ListColleges(c *fiber.Ctx) error {
	colleges, err := h.catalogService.ListColleges(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(colleges)
}
