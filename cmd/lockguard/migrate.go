package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/lockguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/database"
	"github.com/nerrad567/lockguard-core/migrations"
)

// errUsage is returned for an unknown migrate action.
var errUsage = errors.New("usage: lockguard migrate [up|down|status]")

// runMigrate handles `lockguard migrate <action>` against the configured
// database without starting the relay.
//
// Actions:
//   - up: apply pending migrations (the default)
//   - down: roll back the most recently applied migration
//   - status: list applied and pending migrations
func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}
	if len(args) > 1 || (action != "up" && action != "down" && action != "status") {
		return errUsage
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-mostly command, nothing to recover

	switch action {
	case "down":
		if err := db.MigrateDown(ctx, migrations.FS); err != nil {
			return fmt.Errorf("rolling back: %w", err)
		}
		fmt.Fprintln(out, "rolled back latest migration")
	case "status":
		applied, pending, err := db.MigrationStatus(ctx, migrations.FS)
		if err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}
		for _, m := range applied {
			fmt.Fprintf(out, "applied  %s  %s\n", m.Version, m.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		for _, m := range pending {
			fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
		}
	default:
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		fmt.Fprintln(out, "migrations applied")
	}
	return nil
}
