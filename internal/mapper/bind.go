package mapper

import (
	"database/sql"
	"fmt"
	"reflect"
)

// RowBinder scans rows of one result set into entity values.
// Build it once per result set with Binder.
type RowBinder struct {
	typ     reflect.Type
	columns []string
	members []*Member
}

// Binder resolves columns once for a result set.
//
// Each member is written by at most one column. Declared bindings claim
// their members first; among convention matches the leftmost column wins
// and later ones are left unresolved.
func (m *Mapper) Binder(columns []string) *RowBinder {
	b := &RowBinder{
		typ:     m.typ,
		columns: columns,
		members: make([]*Member, len(columns)),
	}

	resolved := make([]*Member, len(columns))
	for i, c := range columns {
		if mem, ok := m.Resolve(c); ok {
			resolved[i] = &mem
		}
	}

	claimed := make(map[string]bool, len(columns))
	for _, declared := range []bool{true, false} {
		for i, mem := range resolved {
			if mem == nil || mem.Declared != declared || claimed[mem.Name] {
				continue
			}
			claimed[mem.Name] = true
			b.members[i] = mem
		}
	}
	return b
}

// Unresolved returns the columns that bind to no member.
func (b *RowBinder) Unresolved() []string {
	var out []string
	for i, mem := range b.members {
		if mem == nil {
			out = append(out, b.columns[i])
		}
	}
	return out
}

// Scan reads the current row of rows into dest, which must be a non-nil
// pointer to the entity type. NULL leaves non-pointer fields at their zero
// value.
func (b *RowBinder) Scan(rows *sql.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != b.typ {
		return fmt.Errorf("mapper: dest must be a non-nil *%s, got %T", b.typ, dest)
	}
	entity := v.Elem()

	targets := make([]any, len(b.members))
	holders := make([]reflect.Value, len(b.members))
	for i, mem := range b.members {
		if mem == nil {
			targets[i] = new(any)
			continue
		}
		field := entity.FieldByIndex(mem.Index)
		if scansDirectly(field) {
			targets[i] = field.Addr().Interface()
			continue
		}
		// **T: database/sql stores nil for NULL, otherwise allocates.
		holders[i] = reflect.New(reflect.PointerTo(field.Type()))
		targets[i] = holders[i].Interface()
	}

	if err := rows.Scan(targets...); err != nil {
		return err
	}

	for i, h := range holders {
		if !h.IsValid() {
			continue
		}
		field := entity.FieldByIndex(b.members[i].Index)
		if p := h.Elem(); p.IsNil() {
			field.Set(reflect.Zero(field.Type()))
		} else {
			field.Set(p.Elem())
		}
	}
	return nil
}

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

// scansDirectly reports whether field handles NULL by itself.
func scansDirectly(field reflect.Value) bool {
	return field.Kind() == reflect.Pointer || field.Addr().Type().Implements(scannerType)
}
