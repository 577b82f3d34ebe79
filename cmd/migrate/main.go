package main

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/ocha-app/ocha/internal/config"
	"github.com/ocha-app/ocha/internal/repository/postgres"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if cfg.Database.Driver != "" && cfg.Database.Driver != "postgres" {
		fmt.Printf("Driver %q manages its own schema, nothing to migrate\n", cfg.Database.Driver)
		return
	}

	fmt.Printf("Migrating database at %s:%d...\n", cfg.Database.Host, cfg.Database.Port)

	if err := postgres.RunMigrations(cfg.Database.DSN(), "file://migrations"); err != nil {
		panic(fmt.Sprintf("Migration failed: %v", err))
	}
}
