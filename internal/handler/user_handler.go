package handler

import (
	"speaklab/internal/dto"
	"speaklab/internal/logger"
	"speaklab/internal/middleware"
	"speaklab/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler exposes profile, progress and account endpoints.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMyProfile retrieves the profile of the currently authenticated user.
// GET /api/users/me
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	profile, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// GetMyProgress lists the user's all-time aggregates across tiers.
// GET /api/users/me/progress
func (h *UserHandler) GetMyProgress(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	progress, err := h.userService.ListProgress(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(progress)
}

// AssignInitialTier places a new user on a starting tier from a baseline
// anxiety reading.
// POST /api/users/me/initial-tier
func (h *UserHandler) AssignInitialTier(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	var req dto.AssignInitialTierRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.userService.AssignInitialTier(c.Context(), userID, req.AnxietyPctMax)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteMyAccount removes the user and all of their data.
// DELETE /api/users/me
func (h *UserHandler) DeleteMyAccount(c *fiber.Ctx) error {
	appLogger := logger.Get()
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	if err := h.userService.DeleteAccount(c.Context(), userID); err != nil {
		return err
	}
	appLogger.Info("Account deletion completed", zap.String("userID", userID))
	return c.SendStatus(fiber.StatusNoContent)
}
