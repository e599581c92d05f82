package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/cinedex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
)

// DatabaseFile is the file name of the catalog database.
const DatabaseFile = "catalog.db"

// Store is a SQLite database holding the build catalog and scheduler state.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the catalog database in dir, creating the directory and
// applying pending migrations.
func NewStore(ctx context.Context, dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: catalog directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	path := filepath.Join(dir, DatabaseFile)
	// WAL lets status reads proceed while a build record is written.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		return nil, errors.Join(fmt.Errorf("migrating catalog: %w", err), db.Close())
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// BuildCatalog returns a BuildCatalog backed by this store.
func (s *Store) BuildCatalog() driven.BuildCatalog {
	return &buildCatalog{store: s}
}

// SchedulerStore returns a SchedulerStore backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migration is one versioned NNN_name.up.sql script.
type migration struct {
	version int
	name    string
}

// pendingMigrations lists the up scripts in fsys newer than current,
// ordered by version. Files without a numeric prefix are ignored.
func pendingMigrations(fsys fs.FS, current int) ([]migration, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	var pending []migration
	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		pending = append(pending, migration{version: version, name: name})
	}
	slices.SortFunc(pending, func(a, b migration) int { return cmp.Compare(a.version, b.version) })
	return pending, nil
}

// migrate applies every pending script, each in its own transaction
// together with its schema_migrations row.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := pendingMigrations(fsys, current)
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	for _, m := range pending {
		script, err := fs.ReadFile(fsys, m.name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", m.name, err)
		}
		if err := s.apply(ctx, m.version, string(script)); err != nil {
			return fmt.Errorf("applying %s: %w", m.name, err)
		}
	}
	return nil
}

func (s *Store) apply(ctx context.Context, version int, script string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if _, err = tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		version, formatTime(time.Now())); err != nil {
		return err
	}
	return tx.Commit()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// timeLayout is fixed width so stored times sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime stores times in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime returns nil for the zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullableTime returns the zero time for NULL or unparsable values.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
