package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultPragmas are applied by Open unless WithPragmas replaces them.
var DefaultPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Migration is one schema step. Version must be positive and unique;
// migrations run in ascending Version order, each at most once per database.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Option configures Open.
type Option func(*options)

type options struct {
	pragmas    []string
	migrations []Migration
}

// WithPragmas replaces DefaultPragmas.
func WithPragmas(pragmas ...string) Option {
	return func(o *options) {
		o.pragmas = pragmas
	}
}

// WithMigrations adds schema migrations.
func WithMigrations(migrations ...Migration) Option {
	return func(o *options) {
		o.migrations = append(o.migrations, migrations...)
	}
}

// Store is a SQLite database handle.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies pragmas and pending migrations.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	o := &options{pragmas: DefaultPragmas}
	for _, opt := range opts {
		opt(o)
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, o.pragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := runMigrations(db, o.migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// QueryContext implements Conn.
func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// ExecContext implements Conn.
func (s *Store) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, pragmas []string) error {
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// runMigrations applies migrations newer than user_version, in order.
func runMigrations(db *sql.DB, migrations []Migration) error {
	if len(migrations) == 0 {
		return nil
	}

	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	seen := make(map[int]bool, len(sorted))
	for _, m := range sorted {
		if m.Version <= 0 {
			return fmt.Errorf("migration %q: version must be positive", m.Name)
		}
		if seen[m.Version] {
			return fmt.Errorf("migration %q: duplicate version %d", m.Name, m.Version)
		}
		seen[m.Version] = true
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	for _, m := range sorted {
		if m.Version <= version {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		version = m.Version
	}
	return nil
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v%d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("migrate to v%d (%s): %w", m.Version, m.Name, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return tx.Commit()
}
