package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"keyportal/internal/platform/config"
	"keyportal/internal/platform/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	steps := flag.Int("steps", 0, "Number of migrations to apply; 0 applies all")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		log.Fatalf("Nothing to migrate for storage driver %q", cfg.Storage.Driver)
	}

	db, err := database.NewDB(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	m, err := database.NewMigrator(db)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if err := run(m, *direction, *steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migrations to apply")
			return
		}
		log.Fatal(err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatal(err)
	}
	fmt.Printf("Migration completed successfully (version %d, dirty %t)\n", version, dirty)
}

func run(m *migrate.Migrate, direction string, steps int) error {
	switch direction {
	case "up":
		if steps > 0 {
			return m.Steps(steps)
		}
		return m.Up()
	case "down":
		if steps > 0 {
			return m.Steps(-steps)
		}
		return m.Down()
	default:
		return fmt.Errorf("invalid direction %q: must be 'up' or 'down'", direction)
	}
}
