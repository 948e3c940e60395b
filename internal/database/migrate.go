package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"bank-reconciliation-service/internal/config"
)

// MigrationStatus is the schema version reported by "version".
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

// RunMigration applies command ("up", "down" or "version") to the schema in
// cfg.Migration.Dir. steps > 0 limits up/down to that many migrations.
func RunMigration(cfg *config.Config, command string, steps int) (*MigrationStatus, error) {
	dbURL, err := cfg.GetMigrationDBURL()
	if err != nil {
		return nil, err
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", cfg.Migration.Dir), dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer m.Close()

	switch command {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, verErr := m.Version()
		if errors.Is(verErr, migrate.ErrNilVersion) {
			return &MigrationStatus{}, nil
		}
		if verErr != nil {
			return nil, fmt.Errorf("failed to get version: %w", verErr)
		}
		return &MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
	default:
		return nil, fmt.Errorf("invalid migration command: %s", command)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("No migration changes to apply")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("Migration completed successfully", "command", command)
	return nil, nil
}
