// Package where provides typed predicate expressions over entity members.
//
// An expression names an entity member and compares it to a value:
//
//	where.Field[User]("Email").Eq("a@b.com")
//	where.Ptr(func(u *User) any { return &u.Age }).Ge(18)
//
// Field names the member directly. Ptr resolves the member from the field
// address the selector returns, so renaming the field breaks the build
// instead of silently dropping the clause.
//
// # Sealed Interface
//
// Expr is sealed with a marker method. The node kinds are:
//   - Comparison: member <op> value, the only boolean node
//   - MemberRef: a bare member reference, not a predicate on its own
//
// Translators type switch over these exhaustively. Anything that is not a
// Comparison is not a predicate and is skipped.
//
// # Values
//
// Comparison values are literals or Lazy thunks. A Lazy value is evaluated
// once per translation, never per row.
//
// # Composition
//
// A list of expressions means their conjunction. There is no OR, NOT,
// join or subquery node.
package where
