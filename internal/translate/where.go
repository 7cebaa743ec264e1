package translate

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/entmap/internal/where"
)

// VacuousTruth is the fragment emitted when no comparison is accepted.
const VacuousTruth = "1 = 1"

// ParamPrefix prefixes the generated parameter names.
const ParamPrefix = "whereExp"

// Predicate is one resolved comparison, ready for emission.
type Predicate struct {
	Table  string
	Column string
	Op     where.Op
	Value  any
}

// Param is a named parameter binding. Name carries no ':' prefix.
type Param struct {
	Name  string
	Value any
}

// Placeholder returns the parameter as it appears in SQL (":name").
func (p Param) Placeholder() string {
	return ":" + p.Name
}

// ComputedWhere is a WHERE fragment plus its parameter bindings in
// emission order.
type ComputedWhere struct {
	Fragment string
	Params   []Param
}

// IsVacuous reports whether the fragment is the always-true condition.
func (w ComputedWhere) IsVacuous() bool {
	return w.Fragment == VacuousTruth && len(w.Params) == 0
}

// Args returns the params as sql.Named values for database/sql.
func (w ComputedWhere) Args() []any {
	args := make([]any, len(w.Params))
	for i, p := range w.Params {
		args[i] = sql.Named(p.Name, p.Value)
	}
	return args
}

// Map returns the params keyed by placeholder (":whereExp0").
func (w ComputedWhere) Map() map[string]any {
	m := make(map[string]any, len(w.Params))
	for _, p := range w.Params {
		m[p.Placeholder()] = p.Value
	}
	return m
}

// String renders the fragment followed by its bindings, for logs and
// golden files.
func (w ComputedWhere) String() string {
	var sb strings.Builder
	sb.WriteString(w.Fragment)
	for _, p := range w.Params {
		fmt.Fprintf(&sb, "\n%s = %#v", p.Placeholder(), p.Value)
	}
	return sb.String()
}

// Render emits predicates in order. It does not consult metadata.
func Render(preds []Predicate) ComputedWhere {
	if len(preds) == 0 {
		return ComputedWhere{Fragment: VacuousTruth}
	}

	parts := make([]string, len(preds))
	params := make([]Param, len(preds))
	for i, p := range preds {
		params[i] = Param{Name: fmt.Sprintf("%s%d", ParamPrefix, i), Value: p.Value}
		parts[i] = fmt.Sprintf("(%s.%s %s %s)", p.Table, p.Column, p.Op.Symbol(), params[i].Placeholder())
	}

	return ComputedWhere{
		Fragment: strings.Join(parts, " AND "),
		Params:   params,
	}
}
