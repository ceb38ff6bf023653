package main

import (
	"flag"
	"log"

	"speaklab/internal/config"
	"speaklab/internal/database"
	"speaklab/internal/logger"
)

func main() {
	sourceDir := flag.String("source", "migrations", "directory holding the SQL migrations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, *sourceDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
}
