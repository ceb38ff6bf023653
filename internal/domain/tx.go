package domain

import "context"

// TransactionManager runs a function inside one ACID transaction. Every
// repository call made with the returned context joins that transaction; any
// error rolls back all of its writes.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ScopeLocker serializes concurrent work on a (subject, scope) pair. The
// lock is exclusive, transaction-scoped, and released when the surrounding
// transaction commits or aborts, so AcquireExclusive must be called inside
// WithTransaction. How the pair maps onto the backend's lock space is an
// implementation detail.
type ScopeLocker interface {
	AcquireExclusive(ctx context.Context, subjectID string, scopeKey int64) error
}
