package where

import "reflect"

// Expr is a predicate expression over one entity type.
// This is a sealed interface: only types in this package implement it.
type Expr interface {
	// Entity returns the type whose member the expression references.
	Entity() reflect.Type
	exprNode()
}

// Comparison is "member <op> value".
type Comparison struct {
	EntityType reflect.Type
	Member     string
	Op         Op
	Value      any
}

func (c Comparison) Entity() reflect.Type { return c.EntityType }
func (Comparison) exprNode()                {}

// MemberRef is a bare member reference. It has the member's type, not a
// boolean one, so it is never a predicate by itself.
type MemberRef struct {
	EntityType reflect.Type
	Member     string
}

func (m MemberRef) Entity() reflect.Type { return m.EntityType }
func (MemberRef) exprNode()                {}

// Lazy is a comparison value computed at translation time.
// It is called exactly once per translation and must not depend on row data.
type Lazy func() any

// Resolve returns v, calling it first if it is a Lazy.
func Resolve(v any) any {
	if fn, ok := v.(Lazy); ok && fn != nil {
		return fn()
	}
	return v
}
