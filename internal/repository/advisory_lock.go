package repository

import (
	"context"
	"fmt"
	"hash/fnv"

	"speaklab/internal/domain"

	"github.com/jmoiron/sqlx"
)

// pgScopeLocker implements domain.ScopeLocker with Postgres transaction-level
// advisory locks. The (subject, scope) pair maps onto pg_advisory_xact_lock's
// two int arguments: the subject ID is folded to 32 bits with FNV-1a, the
// scope key is passed through. Locks release automatically at commit or
// abort, which is why acquisition only makes sense inside WithTransaction.
type pgScopeLocker struct {
	db *sqlx.DB
}

// NewPgScopeLocker creates an advisory-lock based ScopeLocker.
func NewPgScopeLocker(db *sqlx.DB) domain.ScopeLocker {
	return &pgScopeLocker{db: db}
}

func (l *pgScopeLocker) AcquireExclusive(ctx context.Context, subjectID string, scopeKey int64) error {
	if ctx.Value(TransactionContextKey) == nil {
		return fmt.Errorf("scope lock requested outside a transaction")
	}
	executor := GetExecutor(ctx, l.db)
	// pg_advisory_xact_lock(int4, int4) blocks until the lock is granted,
	// serializing the second submitter behind the first. The tier*1e8+date
	// encoding stays well inside int32 range.
	_, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1, $2)", subjectHash(subjectID), int32(scopeKey))
	if err != nil {
		return fmt.Errorf("failed to acquire advisory lock: %w", err)
	}
	return nil
}

func subjectHash(subjectID string) int32 {
	h := fnv.New32a()
	h.Write([]byte(subjectID))
	return int32(h.Sum32())
}
