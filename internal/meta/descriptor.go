package meta

import (
	"errors"
	"reflect"
	"strings"
)

// ColumnDescriptor binds one table column to one entity member.
type ColumnDescriptor struct {
	// Name is the column name as it appears in SQL.
	Name string

	// Member is the Go field name the column binds to.
	Member string

	// Index is the reflect field index path of Member within the entity.
	// Nil for descriptors built without a Go type (declaration files).
	Index []int

	// Type is the Go type of Member. Nil without a Go type.
	Type reflect.Type

	IncludeOnInsert bool
	IncludeOnUpdate bool
	PrimaryKey      bool
}

// Field returns the addressable field of entity that the column binds to.
// entity may be a struct or a pointer to a struct.
func (c ColumnDescriptor) Field(entity reflect.Value) reflect.Value {
	for entity.Kind() == reflect.Pointer {
		entity = entity.Elem()
	}
	return entity.FieldByIndex(c.Index)
}

// Value returns the current value of the bound member in entity.
func (c ColumnDescriptor) Value(entity reflect.Value) any {
	return c.Field(entity).Interface()
}

// TableDescriptor is the immutable metadata for one entity type.
type TableDescriptor struct {
	name     string
	entity   string
	typ      reflect.Type
	columns  []ColumnDescriptor
	byMember map[string]int
	byColumn map[string]int
	pk       int
}

// NewTableDescriptor validates columns and builds a descriptor.
//
// entity names the declaring type in error messages. typ may be nil for
// tables described only by a declaration file. When no column is flagged as
// primary key, a column named "id" (case-insensitive) is used.
func NewTableDescriptor(entity, name string, typ reflect.Type, columns []ColumnDescriptor) (*TableDescriptor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newConfigError(ErrCodeMissingName, entity, "", "table name is required")
	}

	t := &TableDescriptor{
		name:     name,
		entity:   entity,
		typ:      typ,
		columns:  make([]ColumnDescriptor, len(columns)),
		byMember: make(map[string]int, len(columns)),
		byColumn: make(map[string]int, len(columns)),
		pk:       -1,
	}
	copy(t.columns, columns)

	var errs []error
	for i, col := range t.columns {
		if strings.TrimSpace(col.Name) == "" {
			errs = append(errs, newConfigError(ErrCodeMissingName, entity, col.Member, "column name is required"))
			continue
		}
		if _, dup := t.byMember[col.Member]; dup {
			errs = append(errs, newConfigError(ErrCodeDuplicateMember, entity, col.Member, "member declared more than once"))
			continue
		}
		if prev, dup := t.byColumn[col.Name]; dup {
			errs = append(errs, newConfigError(ErrCodeDuplicateColumn, entity, col.Member,
				"column %q already bound to member %s", col.Name, t.columns[prev].Member))
			continue
		}
		t.byMember[col.Member] = i
		t.byColumn[col.Name] = i

		if col.PrimaryKey {
			if t.pk >= 0 {
				errs = append(errs, newConfigError(ErrCodeDuplicateKey, entity, col.Member,
					"primary key already declared on %s", t.columns[t.pk].Member))
				continue
			}
			t.pk = i
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if t.pk < 0 {
		for i, col := range t.columns {
			if strings.EqualFold(col.Name, "id") {
				t.pk = i
				t.columns[i].PrimaryKey = true
				break
			}
		}
	}

	return t, nil
}

// Name returns the table name.
func (t *TableDescriptor) Name() string { return t.name }

// Entity returns the name of the declaring entity type.
func (t *TableDescriptor) Entity() string { return t.entity }

// Type returns the entity type, or nil for declaration-only tables.
func (t *TableDescriptor) Type() reflect.Type { return t.typ }

// Len returns the number of columns.
func (t *TableDescriptor) Len() int { return len(t.columns) }

// Columns returns the columns in declaration order.
// The returned slice is a copy.
func (t *TableDescriptor) Columns() []ColumnDescriptor {
	out := make([]ColumnDescriptor, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column returns the column bound to the given member name.
func (t *TableDescriptor) Column(member string) (ColumnDescriptor, bool) {
	i, ok := t.byMember[member]
	if !ok {
		return ColumnDescriptor{}, false
	}
	return t.columns[i], true
}

// ColumnByName returns the column with the given SQL name.
func (t *TableDescriptor) ColumnByName(name string) (ColumnDescriptor, bool) {
	i, ok := t.byColumn[name]
	if !ok {
		return ColumnDescriptor{}, false
	}
	return t.columns[i], true
}

// PrimaryKey returns the primary key column, if any.
func (t *TableDescriptor) PrimaryKey() (ColumnDescriptor, bool) {
	if t.pk < 0 {
		return ColumnDescriptor{}, false
	}
	return t.columns[t.pk], true
}

// InsertColumns returns the columns with IncludeOnInsert set, in order.
func (t *TableDescriptor) InsertColumns() []ColumnDescriptor {
	return t.filter(func(c ColumnDescriptor) bool { return c.IncludeOnInsert })
}

// UpdateColumns returns the columns with IncludeOnUpdate set, in order.
func (t *TableDescriptor) UpdateColumns() []ColumnDescriptor {
	return t.filter(func(c ColumnDescriptor) bool { return c.IncludeOnUpdate })
}

func (t *TableDescriptor) filter(keep func(ColumnDescriptor) bool) []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, c := range t.columns {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
