package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"speaklab/internal/domain"
	"speaklab/internal/repository/models"
	"speaklab/internal/util"

	"github.com/jmoiron/sqlx"
)

// AttemptRepository persists scored attempts. The daily-best lookup and the
// in-place overwrite are only meaningful under the per-(user, tier, day)
// scope lock; callers are expected to hold it.
type AttemptRepository interface {
	// GetDailyBest returns the attempt for (user, tier) within [from, to),
	// or nil when the user has not played that tier today.
	GetDailyBest(ctx context.Context, userID string, tier domain.Tier, from, to time.Time) (*domain.Attempt, error)
	// Insert creates a new attempt row.
	Insert(ctx context.Context, attempt *domain.Attempt) error
	// UpdateScore overwrites the scoring fields and timestamp of an existing
	// row in place, keeping a single visible row per day.
	UpdateScore(ctx context.Context, attempt *domain.Attempt) error
	// DeleteByUser removes all attempts of a user.
	DeleteByUser(ctx context.Context, userID string) error
}

type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new attempt repository.
func NewSQLXAttemptRepository(db *sqlx.DB) AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

func toDomainAttempt(m *models.Attempt) *domain.Attempt {
	if m == nil {
		return nil
	}
	var anxiety *float64
	if m.AnxietyPct.Valid {
		v := m.AnxietyPct.Float64
		anxiety = &v
	}
	return &domain.Attempt{
		ID:         m.ID,
		UserID:     m.UserID,
		Tier:       domain.Tier(m.Tier),
		AnxietyPct: anxiety,
		Band:       domain.Band(m.Band.String),
		Stars:      m.StarRating,
		Progress:   m.ProgressPct,
		Pauses:     m.PausesCount,
		Summary:    m.Summary.String,
		PlayedAt:   m.PlayedAt,
	}
}

func fromDomainAttempt(a *domain.Attempt) *models.Attempt {
	if a == nil {
		return nil
	}
	return &models.Attempt{
		ID:          a.ID,
		UserID:      a.UserID,
		Tier:        int(a.Tier),
		AnxietyPct:  util.FloatPtrToNullFloat64(a.AnxietyPct),
		Band:        util.StringToNullString(string(a.Band)),
		StarRating:  a.Stars,
		ProgressPct: a.Progress,
		PausesCount: a.Pauses,
		Summary:     util.StringToNullString(a.Summary),
		PlayedAt:    a.PlayedAt,
	}
}

func (r *sqlxAttemptRepository) GetDailyBest(ctx context.Context, userID string, tier domain.Tier, from, to time.Time) (*domain.Attempt, error) {
	executor := GetExecutor(ctx, r.db)

	var m models.Attempt
	query := `SELECT id, user_id, tier, anxiety_pct, band, star_rating, progress_pct, pauses_count, summary, played_at
	          FROM attempts
	          WHERE user_id = $1 AND tier = $2 AND played_at >= $3 AND played_at < $4
	          ORDER BY star_rating DESC, progress_pct DESC
	          LIMIT 1
	          FOR UPDATE`
	err := executor.GetContext(ctx, &m, query, userID, int(tier), from, to)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily best attempt: %w", err)
	}
	return toDomainAttempt(&m), nil
}

func (r *sqlxAttemptRepository) Insert(ctx context.Context, attempt *domain.Attempt) error {
	executor := GetExecutor(ctx, r.db)

	m := fromDomainAttempt(attempt)
	if m.PlayedAt.IsZero() {
		m.PlayedAt = time.Now()
	}
	query := `INSERT INTO attempts (id, user_id, tier, anxiety_pct, band, star_rating, progress_pct, pauses_count, summary, played_at)
	          VALUES (:id, :user_id, :tier, :anxiety_pct, :band, :star_rating, :progress_pct, :pauses_count, :summary, :played_at)`
	if _, err := executor.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return nil
}

func (r *sqlxAttemptRepository) UpdateScore(ctx context.Context, attempt *domain.Attempt) error {
	executor := GetExecutor(ctx, r.db)

	m := fromDomainAttempt(attempt)
	query := `UPDATE attempts SET
	            anxiety_pct = :anxiety_pct,
	            band = :band,
	            star_rating = :star_rating,
	            progress_pct = :progress_pct,
	            pauses_count = :pauses_count,
	            summary = :summary,
	            played_at = :played_at
	          WHERE id = :id`
	result, err := executor.NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to update attempt score: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *sqlxAttemptRepository) DeleteByUser(ctx context.Context, userID string) error {
	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, `DELETE FROM attempts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete attempts for user: %w", err)
	}
	return nil
}
