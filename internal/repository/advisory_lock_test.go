package repository

import (
	"context"
	"testing"

	"speaklab/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireExclusive_RequiresTransaction(t *testing.T) {
	db, _ := setupTxTestDB(t)
	defer db.Close()
	locker := NewPgScopeLocker(db)

	err := locker.AcquireExclusive(context.Background(), "user1", domain.LockKey(domain.TierEasy, 20250301))
	assert.Error(t, err)
}

func TestAcquireExclusive_TakesAdvisoryLockInsideTransaction(t *testing.T) {
	db, mock := setupTxTestDB(t)
	defer db.Close()
	tm := NewTransactionManagerAdapter(db)
	locker := NewPgScopeLocker(db)

	scopeKey := domain.LockKey(domain.TierMedium, 20250301)
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(subjectHash("user1"), int32(scopeKey)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		return locker.AcquireExclusive(ctx, "user1", scopeKey)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectHash_Stable(t *testing.T) {
	// Same subject must always land on the same lock slot.
	assert.Equal(t, subjectHash("user1"), subjectHash("user1"))
	assert.NotEqual(t, subjectHash("user1"), subjectHash("user2"))
}
