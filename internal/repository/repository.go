package repository

import (
	"context"
	"database/sql"
)

// DBTX is the subset of sqlx operations repositories need; both *sqlx.DB and
// *sqlx.Tx satisfy it, so the same repository code runs inside and outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}
