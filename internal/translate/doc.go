// Package translate converts where expressions into a parameterized SQL
// WHERE fragment.
//
// Each accepted comparison becomes "(Table.Column <op> :whereExpN)" where N
// is the 0-based emission index. Fragments are joined with " AND ". When no
// comparison is accepted the fragment is "1 = 1" and there are no params.
//
// Values are NEVER interpolated into the fragment; they are bound as named
// parameters.
//
// # Skipped Expressions
//
// An expression is skipped when it is not a comparison, its entity is not
// registered, its member has no column, or its operator is invalid. By
// default a skip is logged at WARN and translation continues with the
// remaining expressions. WithStrict makes every skip an error instead.
//
// # Determinism
//
// Output depends only on the input order: translating the same expressions
// twice yields byte-identical fragments and params.
package translate
