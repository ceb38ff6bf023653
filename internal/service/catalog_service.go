package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"speaklab/internal/cache"
	"speaklab/internal/domain"
	"speaklab/internal/dto"
	"speaklab/internal/logger"
	"speaklab/internal/repository"

	"go.uber.org/zap"
)

const catalogCacheTTL = 24 * time.Hour

// CatalogService serves the tier and college reference data. Both change only
// through migrations, so cached copies are safe for a long TTL.
type CatalogService interface {
	ListTiers(ctx context.Context) ([]dto.TierResponse, error)
	GetTierByID(ctx context.Context, id int) (*dto.TierResponse, error)
	GetTierByName(ctx context.Context, name string) (*dto.TierResponse, error)
	ListColleges(ctx context.Context) ([]dto.CollegeResponse, error)
}

type catalogServiceImpl struct {
	catalogRepo repository.CatalogRepository
	cache       domain.Cache
}

// NewCatalogService creates a new CatalogService. cache may be nil, in which
// case every call goes to the database.
func NewCatalogService(catalogRepo repository.CatalogRepository, cacheClient domain.Cache) CatalogService {
	return &catalogServiceImpl{catalogRepo: catalogRepo, cache: cacheClient}
}

func (s *catalogServiceImpl) ListTiers(ctx context.Context) ([]dto.TierResponse, error) {
	appLogger := logger.Get()
	cacheKey := cache.GenerateCacheKey("catalog", "tiers", "all")

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var tiers []dto.TierResponse
			if err := json.Unmarshal([]byte(cached), &tiers); err == nil {
				return tiers, nil
			}
			appLogger.Warn("Failed to unmarshal cached tiers", zap.String("key", cacheKey))
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			appLogger.Warn("Cache get failed for tiers", zap.Error(err))
		}
	}

	rows, err := s.catalogRepo.ListTiers(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list tiers", err)
	}
	tiers := make([]dto.TierResponse, len(rows))
	for i, t := range rows {
		tiers[i] = dto.TierResponse{
			ID:              int(t.ID),
			Name:            t.Name,
			DifficultyOrder: t.DifficultyOrder,
			Description:     t.Description,
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(tiers); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(payload), catalogCacheTTL); err != nil {
				appLogger.Warn("Cache set failed for tiers", zap.Error(err))
			}
		}
	}
	return tiers, nil
}

func (s *catalogServiceImpl) GetTierByID(ctx context.Context, id int) (*dto.TierResponse, error) {
	tier, err := s.catalogRepo.GetTierByID(ctx, domain.Tier(id))
	if err != nil {
		return nil, domain.NewInternalError("failed to get tier", err)
	}
	if tier == nil {
		return nil, domain.NewTierNotFoundError(fmt.Sprintf("%d", id))
	}
	return &dto.TierResponse{
		ID:              int(tier.ID),
		Name:            tier.Name,
		DifficultyOrder: tier.DifficultyOrder,
		Description:     tier.Description,
	}, nil
}

func (s *catalogServiceImpl) GetTierByName(ctx context.Context, name string) (*dto.TierResponse, error) {
	tier, err := s.catalogRepo.GetTierByName(ctx, name)
	if err != nil {
		return nil, domain.NewInternalError("failed to get tier by name", err)
	}
	if tier == nil {
		return nil, domain.NewTierNotFoundError(name)
	}
	return &dto.TierResponse{
		ID:              int(tier.ID),
		Name:            tier.Name,
		DifficultyOrder: tier.DifficultyOrder,
		Description:     tier.Description,
	}, nil
}

func (s *catalogServiceImpl) ListColleges(ctx context.Context) ([]dto.CollegeResponse, error) {
	appLogger := logger.Get()
	cacheKey := cache.GenerateCacheKey("catalog", "colleges", "all")

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var colleges []dto.CollegeResponse
			if err := json.Unmarshal([]byte(cached), &colleges); err == nil {
				return colleges, nil
			}
			appLogger.Warn("Failed to unmarshal cached colleges", zap.String("key", cacheKey))
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			appLogger.Warn("Cache get failed for colleges", zap.Error(err))
		}
	}

	rows, err := s.catalogRepo.ListColleges(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list colleges", err)
	}
	colleges := make([]dto.CollegeResponse, len(rows))
	for i, c := range rows {
		colleges[i] = dto.CollegeResponse{ID: c.ID, Name: c.Name}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(colleges); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(payload), catalogCacheTTL); err != nil {
				appLogger.Warn("Cache set failed for colleges", zap.Error(err))
			}
		}
	}
	return colleges, nil
}
