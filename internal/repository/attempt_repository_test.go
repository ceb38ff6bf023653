package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"speaklab/internal/domain"
	"speaklab/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAttemptTestDB creates a new sqlx.DB instance and sqlmock for attempt repository testing.
func setupAttemptTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func attemptColumns() []string {
	return []string{"id", "user_id", "tier", "anxiety_pct", "band", "star_rating", "progress_pct", "pauses_count", "summary", "played_at"}
}

func TestToDomainAttempt(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := &models.Attempt{
		ID:          "attempt1",
		UserID:      "user1",
		Tier:        2,
		AnxietyPct:  sql.NullFloat64{Float64: 41.5, Valid: true},
		Band:        sql.NullString{String: "medium", Valid: true},
		StarRating:  3,
		ProgressPct: 100,
		PausesCount: 2,
		Summary:     sql.NullString{String: "anxiety=41.5% (tier=medium)", Valid: true},
		PlayedAt:    now,
	}

	a := toDomainAttempt(m)
	require.NotNil(t, a)
	assert.Equal(t, domain.TierMedium, a.Tier)
	require.NotNil(t, a.AnxietyPct)
	assert.Equal(t, 41.5, *a.AnxietyPct)
	assert.Equal(t, domain.BandMedium, a.Band)
	assert.Equal(t, 3, a.Stars)
	assert.Equal(t, 100, a.Progress)

	// Null anxiety maps to a nil pointer.
	m.AnxietyPct = sql.NullFloat64{}
	a = toDomainAttempt(m)
	assert.Nil(t, a.AnxietyPct)
}

func TestGetDailyBest_ReturnsBestRow(t *testing.T) {
	db, mock := setupAttemptTestDB(t)
	defer db.Close()
	repo := NewSQLXAttemptRepository(db)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	playedAt := from.Add(10 * time.Hour)

	rows := sqlmock.NewRows(attemptColumns()).
		AddRow("attempt1", "user1", 2, 41.5, "medium", 2, 67, 1, "s", playedAt)
	mock.ExpectQuery(`SELECT (.+) FROM attempts`).
		WithArgs("user1", 2, from, to).
		WillReturnRows(rows)

	best, err := repo.GetDailyBest(context.Background(), "user1", domain.TierMedium, from, to)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "attempt1", best.ID)
	assert.Equal(t, 2, best.Stars)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDailyBest_NoRowsMeansNil(t *testing.T) {
	db, mock := setupAttemptTestDB(t)
	defer db.Close()
	repo := NewSQLXAttemptRepository(db)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	mock.ExpectQuery(`SELECT (.+) FROM attempts`).
		WithArgs("user1", 1, from, to).
		WillReturnError(sql.ErrNoRows)

	best, err := repo.GetDailyBest(context.Background(), "user1", domain.TierEasy, from, to)
	assert.NoError(t, err)
	assert.Nil(t, best)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAttempt(t *testing.T) {
	db, mock := setupAttemptTestDB(t)
	defer db.Close()
	repo := NewSQLXAttemptRepository(db)

	anxiety := 12.3
	attempt := &domain.Attempt{
		ID:         "attempt1",
		UserID:     "user1",
		Tier:       domain.TierHard,
		AnxietyPct: &anxiety,
		Band:       domain.BandLow,
		Stars:      2,
		Progress:   67,
		Pauses:     0,
		Summary:    "anxiety=12.3% (tier=hard)",
		PlayedAt:   time.Now(),
	}

	mock.ExpectExec(`INSERT INTO attempts`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), attempt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateScore_NoMatchingRow(t *testing.T) {
	db, mock := setupAttemptTestDB(t)
	defer db.Close()
	repo := NewSQLXAttemptRepository(db)

	mock.ExpectExec(`UPDATE attempts SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateScore(context.Background(), &domain.Attempt{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAttemptsByUser(t *testing.T) {
	db, mock := setupAttemptTestDB(t)
	defer db.Close()
	repo := NewSQLXAttemptRepository(db)

	mock.ExpectExec(`DELETE FROM attempts WHERE user_id`).
		WithArgs("user1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.DeleteByUser(context.Background(), "user1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
