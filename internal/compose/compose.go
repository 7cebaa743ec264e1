// Package compose assembles SELECT, COUNT, INSERT and UPDATE statements from
// table metadata and translated WHERE fragments.
//
// Statements are plain text plus named parameters. Column values bind under
// the member name (":Email"); WHERE values keep the translator's names
// (":whereExp0"), so the two sets never collide.
package compose

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/entmap/internal/meta"
	"github.com/roach88/entmap/internal/translate"
	"github.com/roach88/entmap/internal/where"
)

// ErrNoPrimaryKey is returned when a statement needs the table's key and
// the table has none.
var ErrNoPrimaryKey = errors.New("compose: table has no primary key")

// Statement is SQL text with its named parameters in binding order.
type Statement struct {
	SQL    string
	Params []translate.Param
}

// Args returns the params as sql.Named values.
func (s Statement) Args() []any {
	return translate.ComputedWhere{Params: s.Params}.Args()
}

// String renders the SQL followed by one "name = value" line per param.
func (s Statement) String() string {
	return translate.ComputedWhere{Fragment: s.SQL, Params: s.Params}.String()
}

// Values supplies the value bound for a column.
type Values func(col meta.ColumnDescriptor) any

// EntityValues reads column values from an entity (struct or pointer).
func EntityValues(entity any) Values {
	v := reflect.ValueOf(entity)
	return func(col meta.ColumnDescriptor) any {
		return col.Value(v)
	}
}

// NoValues binds nil for every column. Useful to render statement shapes.
func NoValues(meta.ColumnDescriptor) any { return nil }

// SelectOptions shapes a SELECT.
type SelectOptions struct {
	// Where, when set, adds " WHERE <fragment>".
	Where *translate.ComputedWhere

	// Descending orders by the primary key, newest first.
	Descending bool

	// Limit adds " LIMIT n" when positive.
	Limit int
}

// Select builds "SELECT * FROM <table>[ WHERE ...][ ORDER BY <pk> DESC][ LIMIT n]".
func Select(t *meta.TableDescriptor, opts SelectOptions) (Statement, error) {
	var sb strings.Builder
	var params []translate.Param

	sb.WriteString("SELECT * FROM ")
	sb.WriteString(t.Name())
	if opts.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(opts.Where.Fragment)
		params = append(params, opts.Where.Params...)
	}
	if opts.Descending {
		pk, ok := t.PrimaryKey()
		if !ok {
			return Statement{}, fmt.Errorf("order %s: %w", t.Name(), ErrNoPrimaryKey)
		}
		fmt.Fprintf(&sb, " ORDER BY %s DESC", pk.Name)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}
	return Statement{SQL: sb.String(), Params: params}, nil
}

// Count builds "SELECT COUNT(*) FROM <table>[ WHERE ...]".
func Count(t *meta.TableDescriptor, w *translate.ComputedWhere) Statement {
	st := Statement{SQL: "SELECT COUNT(*) FROM " + t.Name()}
	if w != nil {
		st.SQL += " WHERE " + w.Fragment
		st.Params = append(st.Params, w.Params...)
	}
	return st
}

// ByKey builds a single-row SELECT on the primary key.
func ByKey(t *meta.TableDescriptor, key any) (Statement, error) {
	pk, ok := t.PrimaryKey()
	if !ok {
		return Statement{}, fmt.Errorf("select %s by key: %w", t.Name(), ErrNoPrimaryKey)
	}
	w := translate.Render([]translate.Predicate{
		{Table: t.Name(), Column: pk.Name, Op: where.Eq, Value: key},
	})
	return Select(t, SelectOptions{Where: &w, Limit: 1})
}

// Insert builds "INSERT INTO <table> (<cols>) VALUES (:<member>, ...)" over
// the insert columns. ok is false when the table has none.
func Insert(t *meta.TableDescriptor, values Values) (st Statement, ok bool) {
	cols := t.InsertColumns()
	if len(cols) == 0 {
		return Statement{}, false
	}

	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	params := make([]translate.Param, len(cols))
	for i, c := range cols {
		params[i] = translate.Param{Name: c.Member, Value: values(c)}
		names[i] = c.Name
		placeholders[i] = params[i].Placeholder()
	}

	return Statement{
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			t.Name(), strings.Join(names, ", "), strings.Join(placeholders, ", ")),
		Params: params,
	}, true
}

// UpdateAll builds "UPDATE <table> SET <col> = :<member>, ..." with no
// WHERE: every row is updated. ok is false when the table has no update
// columns.
func UpdateAll(t *meta.TableDescriptor, values Values) (st Statement, ok bool) {
	cols := t.UpdateColumns()
	if len(cols) == 0 {
		return Statement{}, false
	}

	sets := make([]string, len(cols))
	params := make([]translate.Param, len(cols))
	for i, c := range cols {
		params[i] = translate.Param{Name: c.Member, Value: values(c)}
		sets[i] = fmt.Sprintf("%s = %s", c.Name, params[i].Placeholder())
	}

	return Statement{
		SQL:    fmt.Sprintf("UPDATE %s SET %s", t.Name(), strings.Join(sets, ", ")),
		Params: params,
	}, true
}

// UpdateWhere is UpdateAll scoped by w. Column params come first, then the
// WHERE params.
func UpdateWhere(t *meta.TableDescriptor, values Values, w translate.ComputedWhere) (st Statement, ok bool) {
	st, ok = UpdateAll(t, values)
	if !ok {
		return Statement{}, false
	}
	st.SQL += " WHERE " + w.Fragment
	st.Params = append(st.Params, w.Params...)
	return st, true
}
