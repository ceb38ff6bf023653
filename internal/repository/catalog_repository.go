package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"speaklab/internal/domain"
	"speaklab/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// CatalogRepository serves the immutable reference data: the tier catalog
// and the list of colleges shown at registration.
type CatalogRepository interface {
	ListTiers(ctx context.Context) ([]domain.TierInfo, error)
	GetTierByID(ctx context.Context, id domain.Tier) (*domain.TierInfo, error)
	GetTierByName(ctx context.Context, name string) (*domain.TierInfo, error)
	ListColleges(ctx context.Context) ([]domain.College, error)
}

type sqlxCatalogRepository struct {
	db *sqlx.DB
}

// NewSQLXCatalogRepository creates a new catalog repository.
func NewSQLXCatalogRepository(db *sqlx.DB) CatalogRepository {
	return &sqlxCatalogRepository{db: db}
}

func toDomainTierInfo(m *models.Tier) *domain.TierInfo {
	if m == nil {
		return nil
	}
	return &domain.TierInfo{
		ID:              domain.Tier(m.ID),
		Name:            m.Name,
		DifficultyOrder: m.DifficultyOrder,
		Description:     m.Description.String,
	}
}

func (r *sqlxCatalogRepository) ListTiers(ctx context.Context) ([]domain.TierInfo, error) {
	executor := GetExecutor(ctx, r.db)

	var rows []models.Tier
	query := `SELECT id, name, difficulty_order, description FROM tiers ORDER BY difficulty_order ASC`
	if err := executor.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}

	tiers := make([]domain.TierInfo, len(rows))
	for i, m := range rows {
		tiers[i] = *toDomainTierInfo(&m)
	}
	return tiers, nil
}

func (r *sqlxCatalogRepository) GetTierByID(ctx context.Context, id domain.Tier) (*domain.TierInfo, error) {
	executor := GetExecutor(ctx, r.db)

	var m models.Tier
	query := `SELECT id, name, difficulty_order, description FROM tiers WHERE id = $1`
	err := executor.GetContext(ctx, &m, query, int(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tier by id: %w", err)
	}
	return toDomainTierInfo(&m), nil
}

func (r *sqlxCatalogRepository) GetTierByName(ctx context.Context, name string) (*domain.TierInfo, error) {
	executor := GetExecutor(ctx, r.db)

	var m models.Tier
	query := `SELECT id, name, difficulty_order, description FROM tiers WHERE LOWER(name) = LOWER($1)`
	err := executor.GetContext(ctx, &m, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tier by name: %w", err)
	}
	return toDomainTierInfo(&m), nil
}

func (r *sqlxCatalogRepository) ListColleges(ctx context.Context) ([]domain.College, error) {
	executor := GetExecutor(ctx, r.db)

	var rows []models.College
	query := `SELECT id, name FROM colleges ORDER BY name ASC`
	if err := executor.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list colleges: %w", err)
	}

	colleges := make([]domain.College, len(rows))
	for i, m := range rows {
		colleges[i] = domain.College{ID: m.ID, Name: m.Name}
	}
	return colleges, nil
}
