// Package decl loads entity declarations from YAML or CUE files.
//
// A declaration names, per entity type, the table it maps to and any column
// overrides. It serves two purposes:
//
//   - ApplyTo feeds it to a meta.Builder so deployments can rename tables
//     and columns without touching struct tags
//   - Tables builds type-less descriptors for tooling that never sees the Go
//     types (the entmap CLI)
//
// YAML example:
//
//	entities:
//	  User:
//	    table: Users
//	    columns:
//	      - member: ID
//	        name: id
//	        pk: true
//	        insert: false
//	        update: false
//	      - member: Email
//
// The CUE form has the same shape and is checked against a closed schema,
// so misspelled fields are errors in both formats.
package decl
