package repository

import (
	"context"
	"fmt"
	"time"

	"speaklab/internal/domain"
	"speaklab/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// ProgressRepository maintains the all-time aggregate per (user, tier).
type ProgressRepository interface {
	// Record folds one scored attempt into the aggregate: attempts always
	// increments; max_stars/max_progress/updated_at move only when the new
	// (stars, progress) pair is a lexicographic all-time best; passed
	// latches on once 3 stars are reached.
	Record(ctx context.Context, userID string, tier domain.Tier, stars, progress int, now time.Time) error
	// ListByUser returns the user's aggregates across all tiers.
	ListByUser(ctx context.Context, userID string) ([]domain.ProgressRecord, error)
	// DeleteByUser removes all aggregates of a user.
	DeleteByUser(ctx context.Context, userID string) error
}

type sqlxProgressRepository struct {
	db *sqlx.DB
}

// NewSQLXProgressRepository creates a new progress repository.
func NewSQLXProgressRepository(db *sqlx.DB) ProgressRepository {
	return &sqlxProgressRepository{db: db}
}

// The upsert is a single atomic statement so two submissions for the same
// (user, tier) on different days cannot lose an increment. Row-value
// comparison gives the lexicographic (stars, progress) order.
const recordProgressQuery = `
INSERT INTO user_tier_progress (user_id, tier, attempts, max_stars, max_progress, passed, updated_at)
VALUES ($1, $2, 1, $3, $4, $5, $6)
ON CONFLICT (user_id, tier) DO UPDATE SET
  attempts = user_tier_progress.attempts + 1,
  max_stars = CASE WHEN (EXCLUDED.max_stars, EXCLUDED.max_progress) > (user_tier_progress.max_stars, user_tier_progress.max_progress)
                   THEN EXCLUDED.max_stars ELSE user_tier_progress.max_stars END,
  max_progress = CASE WHEN (EXCLUDED.max_stars, EXCLUDED.max_progress) > (user_tier_progress.max_stars, user_tier_progress.max_progress)
                      THEN EXCLUDED.max_progress ELSE user_tier_progress.max_progress END,
  passed = user_tier_progress.passed OR EXCLUDED.passed,
  updated_at = CASE WHEN (EXCLUDED.max_stars, EXCLUDED.max_progress) > (user_tier_progress.max_stars, user_tier_progress.max_progress)
                    THEN EXCLUDED.updated_at ELSE user_tier_progress.updated_at END`

func (r *sqlxProgressRepository) Record(ctx context.Context, userID string, tier domain.Tier, stars, progress int, now time.Time) error {
	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, recordProgressQuery,
		userID, int(tier), stars, progress, stars == 3, now)
	if err != nil {
		return fmt.Errorf("failed to record tier progress: %w", err)
	}
	return nil
}

func (r *sqlxProgressRepository) ListByUser(ctx context.Context, userID string) ([]domain.ProgressRecord, error) {
	executor := GetExecutor(ctx, r.db)

	var rows []models.TierProgress
	query := `SELECT user_id, tier, attempts, max_stars, max_progress, passed, updated_at
	          FROM user_tier_progress
	          WHERE user_id = $1
	          ORDER BY tier ASC`
	if err := executor.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list tier progress: %w", err)
	}

	records := make([]domain.ProgressRecord, len(rows))
	for i, m := range rows {
		records[i] = domain.ProgressRecord{
			UserID:      m.UserID,
			Tier:        domain.Tier(m.Tier),
			Attempts:    m.Attempts,
			MaxStars:    m.MaxStars,
			MaxProgress: m.MaxProgress,
			Passed:      m.Passed,
			UpdatedAt:   m.UpdatedAt,
		}
	}
	return records, nil
}

func (r *sqlxProgressRepository) DeleteByUser(ctx context.Context, userID string) error {
	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, `DELETE FROM user_tier_progress WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete tier progress for user: %w", err)
	}
	return nil
}
