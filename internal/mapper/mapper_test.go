package mapper

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/entmap/internal/meta"
)

type profile struct {
	ID        int64  `column:"id"`
	Email     string `column:"email_address"`
	Name      string
	CreatedAt time.Time
	Nick      *string
	Score     sql.NullInt64
}

func testRegistry(t *testing.T) *meta.Registry {
	t.Helper()
	b := meta.NewBuilder()
	require.NoError(t, meta.Register[profile](b, "profiles"))
	return b.MustBuild()
}

func TestResolve_FallbackChain(t *testing.T) {
	m, err := For[profile](testRegistry(t))
	require.NoError(t, err)

	testCases := []struct {
		column   string
		member   string
		declared bool
	}{
		{"email_address", "Email", true},
		{"id", "ID", true},
		{"Name", "Name", false},
		{"NAME", "Name", false},
		{"created_at", "CreatedAt", false},
		{"CREATED_AT", "CreatedAt", false},
		{"nick", "Nick", false},
	}
	for _, tc := range testCases {
		t.Run(tc.column, func(t *testing.T) {
			mem, ok := m.Resolve(tc.column)
			require.True(t, ok)
			assert.Equal(t, tc.member, mem.Name)
			assert.Equal(t, tc.declared, mem.Declared)
		})
	}

	_, ok := m.Resolve("unknown_column")
	assert.False(t, ok)
}

func TestResolve_WithoutRegistry(t *testing.T) {
	m, err := New(nil, reflect.TypeOf(&profile{}))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(profile{}), m.Type())

	mem, ok := m.Resolve("email")
	require.True(t, ok, "convention still applies")
	assert.Equal(t, "Email", mem.Name)

	_, ok = m.Resolve("email_address")
	assert.False(t, ok)
}

func TestNew_RejectsNonStruct(t *testing.T) {
	_, err := New(nil, reflect.TypeOf(0))
	assert.Error(t, err)
	_, err = New(nil, nil)
	assert.Error(t, err)
}

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE profiles (
		id INTEGER PRIMARY KEY,
		email_address TEXT,
		Name TEXT,
		created_at DATETIME,
		nick TEXT,
		score INTEGER,
		extra TEXT
	)`)
	require.NoError(t, err)
	return db
}

func TestBinder_ScansRows(t *testing.T) {
	db := openMemory(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err := db.Exec(`INSERT INTO profiles VALUES (1, 'a@b.com', 'Ann', ?, 'annie', 7, 'ignored')`, created)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO profiles (id) VALUES (2)`)
	require.NoError(t, err)

	m, err := For[profile](testRegistry(t))
	require.NoError(t, err)

	rows, err := db.QueryContext(context.Background(), `SELECT * FROM profiles ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	binder := m.Binder(cols)
	assert.Equal(t, []string{"extra"}, binder.Unresolved())

	var got []profile
	for rows.Next() {
		var p profile
		require.NoError(t, binder.Scan(rows, &p))
		got = append(got, p)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "a@b.com", got[0].Email)
	assert.Equal(t, "Ann", got[0].Name)
	assert.True(t, created.Equal(got[0].CreatedAt))
	require.NotNil(t, got[0].Nick)
	assert.Equal(t, "annie", *got[0].Nick)
	assert.Equal(t, sql.NullInt64{Int64: 7, Valid: true}, got[0].Score)

	assert.Equal(t, int64(2), got[1].ID)
	assert.Empty(t, got[1].Email, "NULL leaves the zero value")
	assert.True(t, got[1].CreatedAt.IsZero())
	assert.Nil(t, got[1].Nick)
	assert.False(t, got[1].Score.Valid)
}

func TestBinder_RejectsWrongDest(t *testing.T) {
	db := openMemory(t)
	m, err := For[profile](nil)
	require.NoError(t, err)

	rows, err := db.Query(`SELECT id FROM profiles`)
	require.NoError(t, err)
	defer rows.Close()

	binder := m.Binder([]string{"id"})
	var wrong struct{ ID int64 }
	assert.Error(t, binder.Scan(rows, &wrong))
	assert.Error(t, binder.Scan(rows, profile{}))
	assert.Error(t, binder.Scan(rows, (*profile)(nil)))
}

type member struct {
	ID   int64  `column:"id"`
	Name string `column:"display_name"`
}

func TestResolve_DeclaredMemberSkipsConvention(t *testing.T) {
	b := meta.NewBuilder()
	require.NoError(t, meta.Register[member](b, "members"))
	m, err := For[member](b.MustBuild())
	require.NoError(t, err)

	_, ok := m.Resolve("name")
	assert.False(t, ok, "Name is bound to display_name")
	_, ok = m.Resolve("Name")
	assert.False(t, ok)

	mem, ok := m.Resolve("DISPLAY_NAME")
	require.True(t, ok)
	assert.Equal(t, "Name", mem.Name)
	assert.True(t, mem.Declared)
}

func TestBinder_DeclaredBindingWins(t *testing.T) {
	db := openMemory(t)
	_, err := db.Exec(`CREATE TABLE members (name TEXT, id INTEGER, display_name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO members VALUES ('legacy', 1, 'Ann')`)
	require.NoError(t, err)

	b := meta.NewBuilder()
	require.NoError(t, meta.Register[member](b, "members"))
	m, err := For[member](b.MustBuild())
	require.NoError(t, err)

	rows, err := db.Query(`SELECT name, id, display_name FROM members`)
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	binder := m.Binder(cols)
	assert.Equal(t, []string{"name"}, binder.Unresolved())

	require.True(t, rows.Next())
	var got member
	require.NoError(t, binder.Scan(rows, &got))
	assert.Equal(t, member{ID: 1, Name: "Ann"}, got)
}

func TestBinder_FirstConventionMatchWins(t *testing.T) {
	m, err := For[profile](nil)
	require.NoError(t, err)

	binder := m.Binder([]string{"created_at", "CreatedAt", "Name"})
	assert.Equal(t, []string{"CreatedAt"}, binder.Unresolved())
}
