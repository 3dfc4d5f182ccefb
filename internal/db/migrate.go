package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const migrationTable = "schema_migrations"

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// ApplyMigrations runs every *.sql file at the root of migrationFS that has
// not been recorded in schema_migrations yet. Files run in name order, each
// in its own transaction.
func ApplyMigrations(ctx context.Context, database DB, migrationFS fs.FS, logger *zap.Logger) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := database.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS `+migrationTable+` (
            name TEXT PRIMARY KEY,
            applied_at TIMESTAMPTZ NOT NULL
        )
    `); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var applied bool
		if err := database.Get(ctx, &applied,
			"SELECT EXISTS(SELECT 1 FROM "+migrationTable+" WHERE name = $1)", file); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		upSQL := strings.TrimSpace(extractUp(string(content)))
		if upSQL == "" {
			continue
		}

		if err := applyMigration(ctx, database, file, upSQL); err != nil {
			return err
		}
		logger.Info("Applied migration", zap.String("name", file))
	}

	return nil
}

func applyMigration(ctx context.Context, database DB, name, upSQL string) (err error) {
	tx, err := database.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// no args keeps pgx on the simple protocol, which accepts several statements
	if _, err = tx.Exec(ctx, upSQL); err != nil {
		return fmt.Errorf("exec migration %s: %w", name, err)
	}

	if _, err = tx.Exec(ctx,
		"INSERT INTO "+migrationTable+" (name, applied_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
		name, time.Now().UTC()); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

func extractUp(content string) string {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		return content
	}
	content = content[upIdx+len(upMarker):]
	if downIdx := strings.Index(content, downMarker); downIdx != -1 {
		return content[:downIdx]
	}
	return content
}
