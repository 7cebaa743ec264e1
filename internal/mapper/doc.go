// Package mapper resolves result-set columns to entity members and binds
// rows into entity values.
//
// Resolution tries, in order:
//  1. the registry's column → member mapping (column tags and declarations)
//  2. an exported field with exactly the column's name
//  3. a case-folded name match ("EMAIL" → Email)
//  4. a case-folded match ignoring underscores ("created_at" → CreatedAt)
//
// The fallback chain lets partially annotated entities round-trip: tagged
// members bind through their declared column, untagged ones by convention.
// Columns that resolve to nothing are read and discarded.
package mapper
