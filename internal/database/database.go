package database

import (
	"fmt"

	"speaklab/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver
)

// NewSQLXPostgresDB opens a sqlx handle to Postgres and verifies the
// connection with a ping.
func NewSQLXPostgresDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Postgres database: %w", err)
	}

	logger.Get().Info("Successfully connected to Postgres database")
	return db, nil
}
