package translate

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/entmap/internal/meta"
	"github.com/roach88/entmap/internal/where"
)

type user struct {
	ID       int64  `column:"id,pk,noinsert,noupdate"`
	Email    string `column:"Email"`
	Age      int    `column:"age"`
	Nickname string
}

type stranger struct {
	Email string
}

type guest struct {
	Email string `column:"email"`
}

func newTestTranslator(t *testing.T, opts ...Option) *Translator {
	t.Helper()
	b := meta.NewBuilder()
	require.NoError(t, meta.Register[user](b, "Users"))
	reg, err := b.Build()
	require.NoError(t, err)

	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	tr, err := New(reg, opts...)
	require.NoError(t, err)
	return tr
}

func assertGolden(t *testing.T, name string, w ComputedWhere) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(w.String()+"\n"))
}

func TestTranslate_SingleEquality(t *testing.T) {
	tr := newTestTranslator(t)

	w, err := tr.Translate(where.Field[user]("Email").Eq("a@b.com"))
	require.NoError(t, err)

	assert.Equal(t, "(Users.Email = :whereExp0)", w.Fragment)
	assert.Equal(t, map[string]any{":whereExp0": "a@b.com"}, w.Map())
	assertGolden(t, "single_equality", w)
}

func TestTranslate_NoExpressions(t *testing.T) {
	tr := newTestTranslator(t)

	w, err := tr.Translate()
	require.NoError(t, err)

	assert.Equal(t, VacuousTruth, w.Fragment)
	assert.Empty(t, w.Params)
	assert.True(t, w.IsVacuous())
	assertGolden(t, "vacuous", w)
}

func TestTranslate_AllSkippedIsVacuous(t *testing.T) {
	tr := newTestTranslator(t)

	w, err := tr.Translate(
		where.Field[user]("Nickname").Eq("x"),
		where.Field[stranger]("Email").Eq("x"),
		where.Field[user]("Email").Ref(),
	)
	require.NoError(t, err)
	assert.True(t, w.IsVacuous())
	assert.Empty(t, w.Map())
}

func TestTranslate_EqualityConjunction(t *testing.T) {
	tr := newTestTranslator(t)

	w, err := tr.Translate(
		where.Field[user]("Email").Eq("a@b.com"),
		where.Field[user]("Age").Eq(30),
		where.Field[user]("ID").Eq(int64(7)),
	)
	require.NoError(t, err)

	assert.Equal(t,
		"(Users.Email = :whereExp0) AND (Users.age = :whereExp1) AND (Users.id = :whereExp2)",
		w.Fragment)
	require.Len(t, w.Params, 3)
	for i, want := range []any{"a@b.com", 30, int64(7)} {
		assert.Equal(t, want, w.Params[i].Value)
	}
	assertGolden(t, "equality_conjunction", w)
}

func TestTranslate_EachOperatorHonored(t *testing.T) {
	tr := newTestTranslator(t)
	age := where.Field[user]("Age")

	w, err := tr.Translate(age.Eq(1), age.Ne(2), age.Lt(3), age.Le(4), age.Gt(5), age.Ge(6))
	require.NoError(t, err)

	assertGolden(t, "all_operators", w)
}

func TestTranslate_SkipsUnmappable(t *testing.T) {
	var logs bytes.Buffer
	tr := newTestTranslator(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	w, err := tr.Translate(
		where.Field[user]("Email").Eq("a@b.com"),
		where.Field[user]("Email").Ref(),
		where.Field[user]("Nickname").Eq("nick"),
		where.Field[stranger]("Email").Eq("x"),
		nil,
		where.Field[user]("Age").Compare(where.Op(42), 1),
		where.Ptr(func(u *user) any { return &u.Age }).Gt(21),
	)
	require.NoError(t, err)

	assert.Equal(t, "(Users.Email = :whereExp0) AND (Users.age > :whereExp1)", w.Fragment)
	assert.Equal(t, 21, w.Params[1].Value)

	out := logs.String()
	assert.Contains(t, out, "predicate dropped")
	assert.Contains(t, out, string(ReasonNotComparison))
	assert.Contains(t, out, string(ReasonUnknownMember))
	assert.Contains(t, out, string(ReasonUnknownEntity))
	assert.Contains(t, out, string(ReasonNil))
	assert.Contains(t, out, string(ReasonBadOperator))
}

func TestTranslate_StrictRejectsSkips(t *testing.T) {
	tr := newTestTranslator(t, WithStrict())
	assert.True(t, tr.Strict())

	_, err := tr.Translate(
		where.Field[user]("Email").Eq("a@b.com"),
		where.Field[user]("Nickname").Eq("nick"),
	)
	require.Error(t, err)
	assert.True(t, IsSkipError(err))
	assert.Contains(t, err.Error(), "member=Nickname")

	w, err := tr.Translate(where.Field[user]("Email").Eq("a@b.com"))
	require.NoError(t, err)
	assert.Len(t, w.Params, 1)
}

func TestTranslate_PointerComparison(t *testing.T) {
	tr := newTestTranslator(t)

	c := where.Field[user]("Email").Eq("a@b.com")
	w, err := tr.Translate(&c)
	require.NoError(t, err)
	assert.Equal(t, "(Users.Email = :whereExp0)", w.Fragment)

	var nilCmp *where.Comparison
	w, err = tr.Translate(nilCmp)
	require.NoError(t, err)
	assert.True(t, w.IsVacuous())
}

func TestTranslate_LazyEvaluatedOncePerTranslation(t *testing.T) {
	tr := newTestTranslator(t)
	calls := 0
	expr := where.Field[user]("Age").Ge(where.Lazy(func() any {
		calls++
		return 18
	}))

	w, err := tr.Translate(expr)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 18, w.Params[0].Value)
}

func TestTranslate_Idempotent(t *testing.T) {
	tr := newTestTranslator(t)
	exprs := []where.Expr{
		where.Field[user]("Email").Eq("a@b.com"),
		where.Field[user]("Age").Lt(40),
	}

	first, err := tr.Translate(exprs...)
	require.NoError(t, err)
	second, err := tr.Translate(exprs...)
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, first, second)
}

func TestTranslate_NoInterpolation(t *testing.T) {
	tr := newTestTranslator(t)
	dangerous := "'; DROP TABLE Users; --"

	w, err := tr.Translate(where.Field[user]("Email").Eq(dangerous))
	require.NoError(t, err)
	assert.NotContains(t, w.Fragment, dangerous)
	assert.Equal(t, dangerous, w.Params[0].Value)
}

func TestComputedWhere_Args(t *testing.T) {
	w := Render([]Predicate{
		{Table: "Users", Column: "Email", Op: where.Eq, Value: "a@b.com"},
		{Table: "Users", Column: "age", Op: where.Ge, Value: 18},
	})

	assert.Equal(t, []any{
		sql.Named("whereExp0", "a@b.com"),
		sql.Named("whereExp1", 18),
	}, w.Args())
}

func TestNew_NilRegistry(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestTranslate_NilMemberRef(t *testing.T) {
	tr := newTestTranslator(t)

	var ref *where.MemberRef
	require.NotPanics(t, func() {
		w, err := tr.Translate(ref)
		require.NoError(t, err)
		assert.True(t, w.IsVacuous())
	})

	_, err := newTestTranslator(t, WithStrict()).Translate(ref)
	require.Error(t, err)
	var skip *SkipError
	require.ErrorAs(t, err, &skip)
	assert.Equal(t, ReasonNil, skip.Reason)
}

func TestFor_SkipsOtherEntities(t *testing.T) {
	b := meta.NewBuilder()
	require.NoError(t, meta.Register[user](b, "Users"))
	require.NoError(t, meta.Register[guest](b, "Guests"))
	reg, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	base, err := New(reg, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)
	tr := base.For(reflect.TypeOf(&user{}))
	assert.Equal(t, reflect.TypeOf(user{}), tr.Scope())
	assert.Nil(t, base.Scope())

	w, err := tr.Translate(
		where.Field[user]("Email").Eq("a@b.com"),
		where.Field[guest]("Email").Eq("x@y.com"),
	)
	require.NoError(t, err)
	assert.Equal(t, "(Users.Email = :whereExp0)", w.Fragment)
	assert.Contains(t, buf.String(), string(ReasonOtherEntity))

	w, err = base.Translate(where.Field[guest]("Email").Eq("x@y.com"))
	require.NoError(t, err)
	assert.Equal(t, "(Guests.email = :whereExp0)", w.Fragment)

	strict, err := New(reg, WithStrict())
	require.NoError(t, err)
	_, err = strict.For(reflect.TypeOf(user{})).Translate(where.Field[guest]("Email").Eq("x@y.com"))
	require.Error(t, err)
	assert.True(t, IsSkipError(err))
	var skip *SkipError
	require.ErrorAs(t, err, &skip)
	assert.Equal(t, ReasonOtherEntity, skip.Reason)
	assert.Equal(t, "guest", skip.Entity)
}
