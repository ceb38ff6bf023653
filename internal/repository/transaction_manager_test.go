package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTxTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	db, mock := setupTxTestDB(t)
	defer db.Close()
	tm := NewTransactionManagerAdapter(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		executor := GetExecutor(ctx, db)
		_, err := executor.ExecContext(ctx, `UPDATE users SET current_tier = $2 WHERE id = $1`, "user1", 2)
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db, mock := setupTxTestDB(t)
	defer db.Close()
	tm := NewTransactionManagerAdapter(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("write failed")
	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExecutor_ReturnsTransactionWhenPresent(t *testing.T) {
	db, mock := setupTxTestDB(t)
	defer db.Close()
	tm := NewTransactionManagerAdapter(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		executor := GetExecutor(ctx, db)
		_, isTx := executor.(*sqlx.Tx)
		assert.True(t, isTx, "executor inside WithTransaction must be the transaction")
		return nil
	})
	require.NoError(t, err)

	executor := GetExecutor(context.Background(), db)
	assert.Same(t, db, executor, "executor outside a transaction is the raw handle")
}
