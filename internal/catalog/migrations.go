package catalog

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		versions = append(versions, entry.Name())
	}
	sort.Strings(versions)

	migrations := make([]migration, 0, len(versions))
	for _, name := range versions {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{
			version: strings.TrimSuffix(name, ".sql"),
			sql:     string(data),
		})
	}
	return migrations, nil
}

// Initialize creates the catalog schema when absent. It is safe to call on
// every run: applied migrations are recorded in schema_migrations and skipped.
func (s *Store) Initialize(ctx context.Context) error {
	ctx = ensureContext(ctx)
	migrations, err := loadMigrations()
	if err != nil {
		return Wrap(ErrStorage, "load migrations", "", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Wrap(ErrStorage, "begin migration tx", s.path, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return Wrap(ErrStorage, "ensure schema_migrations", s.path, err)
	}

	for _, m := range migrations {
		var count int
		if err := tx.GetContext(ctx, &count, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version); err != nil {
			return Wrap(ErrStorage, "scan migration version", s.path, err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return Wrap(ErrStorage, "apply migration "+m.version, s.path, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return Wrap(ErrStorage, "record migration "+m.version, s.path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Wrap(ErrStorage, "commit migrations", s.path, err)
	}
	return nil
}

// AppliedMigrations lists recorded migration versions in order.
func (s *Store) AppliedMigrations(ctx context.Context) ([]string, error) {
	var versions []string
	if err := s.db.SelectContext(ensureContext(ctx), &versions, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return nil, Wrap(ErrStorage, "list migrations", s.path, err)
	}
	return versions, nil
}
