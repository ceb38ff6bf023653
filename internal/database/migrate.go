package database

import (
	"errors"
	"fmt"

	"speaklab/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// RunMigrations applies every pending migration from sourceDir against db.
// Already-applied versions are skipped; a dirty database surfaces as an error.
func RunMigrations(db *sqlx.DB, sourceDir string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+sourceDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Get().Info("No pending migrations")
			return nil
		}
		return fmt.Errorf("could not run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("could not read migration version: %w", err)
	}
	logger.Get().Info("Migrations completed successfully",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}
