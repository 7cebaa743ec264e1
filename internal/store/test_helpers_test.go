package store

import (
	"path/filepath"
	"testing"
)

var widgetsSchema = Migration{
	Version: 1,
	Name:    "widgets",
	SQL: `CREATE TABLE widgets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		qty INTEGER NOT NULL DEFAULT 0
	)`,
}

type widget struct {
	ID    int64
	Label string
	Qty   int
}

// createTestStore creates a new file-backed store with the widgets table.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithMigrations(widgetsSchema))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
