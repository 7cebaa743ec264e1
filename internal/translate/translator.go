package translate

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/entmap/internal/meta"
	"github.com/roach88/entmap/internal/where"
)

// Translator resolves where expressions against a Registry.
// It holds no mutable state and is safe for concurrent use.
type Translator struct {
	reg    *meta.Registry
	logger *slog.Logger
	strict bool
	scope  reflect.Type // nil: any registered entity
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger used to report skipped expressions.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithStrict makes skipped expressions an error instead of a warning.
func WithStrict() Option {
	return func(t *Translator) {
		t.strict = true
	}
}

// New creates a Translator over reg.
func New(reg *meta.Registry, opts ...Option) (*Translator, error) {
	if reg == nil {
		return nil, fmt.Errorf("translate: registry is nil")
	}
	t := &Translator{
		reg:    reg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Strict reports whether skipped expressions are errors.
func (t *Translator) Strict() bool { return t.strict }

// For returns a copy of t that only accepts expressions over typ (pointer
// types are dereferenced). Expressions over any other entity are skipped
// like unmappable ones.
func (t *Translator) For(typ reflect.Type) *Translator {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	scoped := *t
	scoped.scope = typ
	return &scoped
}

// Scope returns the entity type set by For, or nil.
func (t *Translator) Scope() reflect.Type { return t.scope }

// Translate converts exprs into a WHERE fragment.
// In the default mode the error is always nil.
func (t *Translator) Translate(exprs ...where.Expr) (ComputedWhere, error) {
	preds, err := t.Predicates(exprs...)
	if err != nil {
		return ComputedWhere{}, err
	}
	return Render(preds), nil
}

// Predicates resolves exprs into predicates in input order.
// Lazy values are evaluated here, once each.
func (t *Translator) Predicates(exprs ...where.Expr) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(exprs))
	var skipped []error

	for i, e := range exprs {
		p, skip := t.resolve(i, e)
		if skip != nil {
			if t.strict {
				skipped = append(skipped, skip)
				continue
			}
			t.logger.Warn("predicate dropped",
				"index", skip.Index,
				"entity", skip.Entity,
				"member", skip.Member,
				"reason", string(skip.Reason),
			)
			continue
		}
		preds = append(preds, p)
	}

	if len(skipped) > 0 {
		return nil, errors.Join(skipped...)
	}
	return preds, nil
}

func (t *Translator) resolve(i int, e where.Expr) (Predicate, *SkipError) {
	if isNil(e) {
		return Predicate{}, &SkipError{Index: i, Reason: ReasonNil}
	}

	var cmp where.Comparison
	switch x := e.(type) {
	case where.Comparison:
		cmp = x
	case *where.Comparison:
		cmp = *x
	default:
		return Predicate{}, &SkipError{Index: i, Entity: typeName(e.Entity()), Reason: ReasonNotComparison}
	}
	entity := typeName(cmp.EntityType)

	if t.scope != nil && cmp.EntityType != t.scope {
		return Predicate{}, &SkipError{Index: i, Entity: entity, Member: cmp.Member, Reason: ReasonOtherEntity}
	}
	if !cmp.Op.Valid() {
		return Predicate{}, &SkipError{Index: i, Entity: entity, Member: cmp.Member, Reason: ReasonBadOperator}
	}

	table, ok := t.reg.GetTable(cmp.EntityType)
	if !ok {
		return Predicate{}, &SkipError{Index: i, Entity: entity, Member: cmp.Member, Reason: ReasonUnknownEntity}
	}
	col, ok := table.Column(cmp.Member)
	if !ok {
		return Predicate{}, &SkipError{Index: i, Entity: entity, Member: cmp.Member, Reason: ReasonUnknownMember}
	}

	return Predicate{
		Table:  table.Name(),
		Column: col.Name,
		Op:     cmp.Op,
		Value:  where.Resolve(cmp.Value),
	}, nil
}

// isNil reports a nil interface or an interface holding a nil pointer.
func isNil(e where.Expr) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.Name()
}
