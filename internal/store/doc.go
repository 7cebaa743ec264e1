// Package store is the SQL connection collaborator.
//
// It provides:
//   - Conn: the minimal query/exec surface (satisfied by *sql.DB, *sql.Tx
//     and *Store)
//   - Query, QuerySingle, Execute: parameterized execution returning typed
//     rows or affected-row counts
//   - Open: a SQLite-backed Store with pragmas and versioned migrations
//
// # Parameters
//
// Statements use named parameters (":name"). Pass them as sql.Named values;
// go-sqlite3 binds ":name", "@name" and "$name" forms.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Nothing in this package retries, times out, or cancels on its own. The
// caller's context is passed unmodified to database/sql.
package store
