package main

import (
	"context"
	"log"

	"speaklab/internal/config"
	"speaklab/internal/database"
	"speaklab/internal/logger"
	"speaklab/internal/util"

	"go.uber.org/zap"
)

var collegeNames = []string{
	"Engineering",
	"Health Sciences",
	"Business and Economics",
	"Law and Political Science",
	"Humanities and Education",
	"Architecture and Urbanism",
}

// Seeds the college catalog. Tiers ship with the schema migration; colleges
// are deployment data and can be re-run safely.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	inserted := 0
	for _, name := range collegeNames {
		result, err := db.ExecContext(ctx,
			`INSERT INTO colleges (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			util.NewULID(), name)
		if err != nil {
			appLogger.Fatal("Failed to seed college", zap.String("name", name), zap.Error(err))
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}

	appLogger.Info("College seeding completed",
		zap.Int("inserted", inserted),
		zap.Int("total", len(collegeNames)))
}
