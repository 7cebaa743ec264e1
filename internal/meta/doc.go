// Package meta holds the entity metadata registry.
//
// The registry maps each entity type to a TableDescriptor: the table name,
// the ordered column list, and lookup maps in both directions
// (member → column, column → member).
//
// # Registration
//
// Entity types are registered explicitly at startup through a Builder:
//
//	b := meta.NewBuilder()
//	meta.Register[User](b, "Users")
//	meta.Register[Order](b, "") // uses Order.TableName()
//	reg := b.MustBuild()
//
// Columns are declared with the `column` struct tag:
//
//	type User struct {
//	    ID    int64  `column:"id,pk,noinsert,noupdate"`
//	    Email string `column:"Email"`
//	    Notes string // untagged: not part of the descriptor
//	}
//
// Tag options:
//   - noinsert: the column is left out of INSERT statements
//   - noupdate: the column is left out of UPDATE SET clauses
//   - pk: the column is the primary key (otherwise a column named "id" is used)
//
// # Failure Semantics
//
// Malformed declarations (missing names, duplicates, unknown options) are
// reported as *ConfigError values. Build returns all of them joined and never
// yields a partially usable registry.
//
// # Concurrency
//
// A Registry is immutable once built. Any number of goroutines may call
// GetTable concurrently without locking.
package meta
