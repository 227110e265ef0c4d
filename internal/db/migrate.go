package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// UpMigrations returns the names of the embedded up migrations in apply order.
func UpMigrations() ([]string, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}

// Migrate applies every embedded up migration. Statements are idempotent, so
// running it against an initialised schema is a no-op.
func (db *DB) Migrate(ctx context.Context) error {
	names, err := UpMigrations()
	if err != nil {
		return err
	}

	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}

		db.logger.Info("applied migration", "name", strings.TrimPrefix(name, "migrations/"))
	}

	return nil
}
