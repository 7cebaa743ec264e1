package compose

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/entmap/internal/meta"
	"github.com/roach88/entmap/internal/translate"
	"github.com/roach88/entmap/internal/where"
)

type user struct {
	ID      int64  `column:"id,noinsert,noupdate"`
	Email   string `column:"Email"`
	Name    string `column:"display_name,noupdate"`
	Created string `column:"created,noinsert"`
}

type keyless struct {
	Label string `column:"label"`
}

type readonly struct {
	ID int64 `column:"id,noinsert,noupdate"`
}

func registry(t *testing.T) *meta.Registry {
	t.Helper()
	b := meta.NewBuilder()
	require.NoError(t, meta.Register[user](b, "Users"))
	require.NoError(t, meta.Register[keyless](b, "Labels"))
	require.NoError(t, meta.Register[readonly](b, "Counters"))
	return b.MustBuild()
}

func usersTable(t *testing.T) *meta.TableDescriptor {
	t.Helper()
	td, ok := meta.TableOf[user](registry(t))
	require.True(t, ok)
	return td
}

func emailWhere(t *testing.T) translate.ComputedWhere {
	t.Helper()
	tr, err := translate.New(registry(t))
	require.NoError(t, err)
	w, err := tr.Translate(where.Field[user]("Email").Eq("a@b.com"))
	require.NoError(t, err)
	return w
}

func assertGolden(t *testing.T, name string, st Statement) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(st.String()+"\n"))
}

func TestSelect_Shapes(t *testing.T) {
	td := usersTable(t)
	w := emailWhere(t)

	testCases := []struct {
		name string
		opts SelectOptions
		want string
	}{
		{"all", SelectOptions{}, "SELECT * FROM Users"},
		{"filtered", SelectOptions{Where: &w}, "SELECT * FROM Users WHERE (Users.Email = :whereExp0)"},
		{"single", SelectOptions{Where: &w, Limit: 1}, "SELECT * FROM Users WHERE (Users.Email = :whereExp0) LIMIT 1"},
		{"last", SelectOptions{Descending: true, Limit: 1}, "SELECT * FROM Users ORDER BY id DESC LIMIT 1"},
		{"last filtered", SelectOptions{Where: &w, Descending: true, Limit: 1},
			"SELECT * FROM Users WHERE (Users.Email = :whereExp0) ORDER BY id DESC LIMIT 1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st, err := Select(td, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, st.SQL)
		})
	}
}

func TestSelect_VacuousWhere(t *testing.T) {
	td := usersTable(t)
	w := translate.Render(nil)

	st, err := Select(td, SelectOptions{Where: &w})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM Users WHERE 1 = 1", st.SQL)
	assert.Empty(t, st.Params)
}

func TestSelect_DescendingNeedsKey(t *testing.T) {
	td, _ := meta.TableOf[keyless](registry(t))
	_, err := Select(td, SelectOptions{Descending: true})
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
}

func TestCount(t *testing.T) {
	td := usersTable(t)
	w := emailWhere(t)

	assert.Equal(t, "SELECT COUNT(*) FROM Users", Count(td, nil).SQL)
	st := Count(td, &w)
	assert.Equal(t, "SELECT COUNT(*) FROM Users WHERE (Users.Email = :whereExp0)", st.SQL)
	assert.Len(t, st.Params, 1)
}

func TestByKey(t *testing.T) {
	st, err := ByKey(usersTable(t), int64(9))
	require.NoError(t, err)
	assertGolden(t, "by_key", st)

	td, _ := meta.TableOf[keyless](registry(t))
	_, err = ByKey(td, 1)
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
}

func TestInsert(t *testing.T) {
	u := user{ID: 5, Email: "a@b.com", Name: "Ann", Created: "now"}

	st, ok := Insert(usersTable(t), EntityValues(&u))
	require.True(t, ok)
	assert.Equal(t, "INSERT INTO Users (Email, display_name) VALUES (:Email, :Name)", st.SQL)
	assertGolden(t, "insert", st)
}

func TestUpdateAll(t *testing.T) {
	u := user{Email: "a@b.com", Name: "Ann", Created: "now"}

	st, ok := UpdateAll(usersTable(t), EntityValues(u))
	require.True(t, ok)
	assert.Equal(t, "UPDATE Users SET Email = :Email, created = :Created", st.SQL)
	assert.NotContains(t, st.SQL, "WHERE")
	assertGolden(t, "update_all", st)
}

func TestUpdateWhere(t *testing.T) {
	u := user{Email: "new@b.com", Created: "now"}

	st, ok := UpdateWhere(usersTable(t), EntityValues(&u), emailWhere(t))
	require.True(t, ok)
	assert.Equal(t, "UPDATE Users SET Email = :Email, created = :Created WHERE (Users.Email = :whereExp0)", st.SQL)

	names := make([]string, len(st.Params))
	for i, p := range st.Params {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Email", "Created", "whereExp0"}, names)
	assertGolden(t, "update_where", st)
}

func TestNoColumns_NoStatement(t *testing.T) {
	td, _ := meta.TableOf[readonly](registry(t))

	_, ok := Insert(td, NoValues)
	assert.False(t, ok)
	_, ok = UpdateAll(td, NoValues)
	assert.False(t, ok)
	_, ok = UpdateWhere(td, NoValues, translate.Render(nil))
	assert.False(t, ok)
}

func TestStatement_Args(t *testing.T) {
	st, ok := Insert(usersTable(t), EntityValues(user{Email: "e", Name: "n"}))
	require.True(t, ok)
	assert.Len(t, st.Args(), 2)
}
