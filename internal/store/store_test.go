package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.False(t, os.IsNotExist(err), "database file was not created")
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_CustomPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithPragmas("PRAGMA foreign_keys = OFF"))
	require.NoError(t, err)
	defer s.Close()

	var fk int
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 0, fk)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path, WithMigrations(widgetsSchema))
		require.NoError(t, err, "Open() iteration %d", i)
		s.Close()
	}

	s, err := Open(path, WithMigrations(widgetsSchema))
	require.NoError(t, err)
	defer s.Close()

	version, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	var name string
	err = s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", "widgets").Scan(&name)
	assert.NoError(t, err)
}

func TestOpen_MigrationsRunInOrderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	addColor := Migration{Version: 2, Name: "color", SQL: `ALTER TABLE widgets ADD COLUMN color TEXT`}

	// Out of order on purpose.
	s, err := Open(path, WithMigrations(addColor, widgetsSchema))
	require.NoError(t, err)
	s.Close()

	// Re-running v2 would fail with a duplicate column.
	s, err = Open(path, WithMigrations(widgetsSchema, addColor))
	require.NoError(t, err)
	defer s.Close()

	version, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestOpen_InvalidMigrations(t *testing.T) {
	testCases := []struct {
		name       string
		migrations []Migration
	}{
		{"zero version", []Migration{{Version: 0, SQL: "SELECT 1"}}},
		{"duplicate version", []Migration{widgetsSchema, {Version: 1, Name: "again", SQL: "SELECT 1"}}},
		{"bad sql", []Migration{{Version: 1, Name: "broken", SQL: "CREATE TABLE"}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test.db")
			_, err := Open(path, WithMigrations(tc.migrations...))
			assert.Error(t, err)
		})
	}
}

func TestOpen_FailedMigrationKeepsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	_, err := Open(path, WithMigrations(widgetsSchema, Migration{Version: 2, Name: "broken", SQL: "ALTER TABLE nope ADD x"}))
	require.Error(t, err)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	version, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	_ = s.Close()
}
