package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Migrate runs every embedded migration for direction, in name order for
// "up" and reverse order for "down". The scripts are idempotent.
func Migrate(ctx context.Context, db *sql.DB, direction string) error {
	if direction != DirectionUp && direction != DirectionDown {
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	names, err := migrationFiles(direction)
	if err != nil {
		return err
	}

	for _, name := range names {
		content, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return nil
}

func migrationFiles(direction string) ([]string, error) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	suffix := "." + direction + ".sql"
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	if direction == DirectionDown {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}
	return names, nil
}
