package mapper

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/entmap/internal/meta"
)

// Member is a resolved entity member.
type Member struct {
	// Name is the Go field name.
	Name string

	// Index is the reflect field index path.
	Index []int

	// Type is the field type.
	Type reflect.Type

	// Declared is true when the match came from the registry rather than
	// the naming convention.
	Declared bool
}

// Mapper resolves columns for one entity type.
// It is immutable after New and safe for concurrent use.
type Mapper struct {
	typ    reflect.Type
	table  *meta.TableDescriptor
	fields []reflect.StructField

	// declared holds registry columns by folded name.
	declared map[string]meta.ColumnDescriptor

	// Convention lookups. Members bound by the registry are left out.
	exact  map[string]int
	folded map[string]int
	loose  map[string]int
}

// New creates a Mapper for typ. The registry may be nil or may not know typ;
// in that case only the naming convention applies.
func New(reg *meta.Registry, typ reflect.Type) (*Mapper, error) {
	if typ == nil {
		return nil, fmt.Errorf("mapper: type is nil")
	}
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("mapper: %s is not a struct", typ)
	}

	m := &Mapper{
		typ:    typ,
		fields: meta.Fields(typ),
	}
	m.table, _ = reg.GetTable(typ)

	fold := cases.Fold()
	m.declared = make(map[string]meta.ColumnDescriptor)
	claimed := make(map[string]bool)
	if m.table != nil {
		for _, col := range m.table.Columns() {
			if col.Index == nil {
				continue
			}
			claimed[col.Member] = true
			if key := fold.String(col.Name); !hasColumn(m.declared, key) {
				m.declared[key] = col
			}
		}
	}

	m.exact = make(map[string]int, len(m.fields))
	m.folded = make(map[string]int, len(m.fields))
	m.loose = make(map[string]int, len(m.fields))
	for i, f := range m.fields {
		if claimed[f.Name] {
			continue
		}
		m.exact[f.Name] = i
		if key := fold.String(f.Name); !has(m.folded, key) {
			m.folded[key] = i
		}
		if key := fold.String(stripUnderscores(f.Name)); !has(m.loose, key) {
			m.loose[key] = i
		}
	}
	return m, nil
}

// For creates a Mapper for entity type T.
func For[T any](reg *meta.Registry) (*Mapper, error) {
	return New(reg, reflect.TypeOf((*T)(nil)).Elem())
}

// Type returns the entity type.
func (m *Mapper) Type() reflect.Type { return m.typ }

// Resolve returns the member that column binds to.
//
// A member bound by the registry is reachable only through its declared
// column name (compared exactly, then case-folded); the naming convention
// never maps another column onto it.
func (m *Mapper) Resolve(column string) (Member, bool) {
	if m.table != nil {
		if col, ok := m.table.ColumnByName(column); ok && col.Index != nil {
			return declaredMember(col), true
		}
	}

	if i, ok := m.exact[column]; ok {
		return m.member(i), true
	}
	// Casers are stateful; one per call.
	fold := cases.Fold()
	if col, ok := m.declared[fold.String(column)]; ok {
		return declaredMember(col), true
	}
	if i, ok := m.folded[fold.String(column)]; ok {
		return m.member(i), true
	}
	if i, ok := m.loose[fold.String(stripUnderscores(column))]; ok {
		return m.member(i), true
	}
	return Member{}, false
}

func (m *Mapper) member(i int) Member {
	f := m.fields[i]
	return Member{Name: f.Name, Index: f.Index, Type: f.Type}
}

func declaredMember(col meta.ColumnDescriptor) Member {
	return Member{Name: col.Member, Index: col.Index, Type: col.Type, Declared: true}
}

func hasColumn(m map[string]meta.ColumnDescriptor, key string) bool {
	_, ok := m[key]
	return ok
}

func has(m map[string]int, key string) bool {
	_, ok := m[key]
	return ok
}

func stripUnderscores(s string) string {
	return strings.ReplaceAll(s, "_", "")
}
