// Package repo provides a generic repository over one registered entity type.
//
// Every operation takes a context and performs one database round trip,
// except Insert, which performs two: the INSERT and a read-back by primary
// key so the returned entity carries database-computed values
// (autoincrement keys, defaults, trigger output).
//
// # Cardinality
//
//   - First / Single / Last fail with ErrNotFound when nothing matches
//   - Single / SingleOrDefault fail with ErrAmbiguous when more than one
//     row matches (they request LIMIT 2 to detect it)
//   - the *OrDefault forms return nil instead of ErrNotFound
//
// # Predicates
//
// Predicates are where expressions joined by AND. With no expressions the
// statement has no WHERE clause. Expressions the translator cannot map are
// dropped (see package translate) unless the repository was built with a
// strict translator.
//
// Nothing here retries or times out; database errors are returned wrapped
// in *QueryError with the original error reachable through errors.Is/As.
package repo
