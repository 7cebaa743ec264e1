package meta

import (
	"errors"
	"maps"
	"reflect"
	"slices"
)

// Tabler is implemented by entity types that name their own table.
type Tabler interface {
	TableName() string
}

// ColumnOverride replaces parts of a column declaration.
// Nil flags keep the struct tag value (or the default, true).
type ColumnOverride struct {
	Column     string
	Insert     *bool
	Update     *bool
	PrimaryKey *bool
}

// TableOverride replaces parts of an entity declaration.
// Columns is keyed by member name. Members without a column tag become
// columns when they appear here.
type TableOverride struct {
	Table   string
	Columns map[string]ColumnOverride
}

// Builder collects entity registrations and produces a Registry.
// A Builder is not safe for concurrent use.
type Builder struct {
	entries   []entry
	seen      map[reflect.Type]bool
	overrides map[string]TableOverride
	errs      []error
}

type entry struct {
	typ   reflect.Type
	table string
	cols  []ColumnDescriptor
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		seen:      make(map[reflect.Type]bool),
		overrides: make(map[string]TableOverride),
	}
}

// Register records entity type T under the given table name.
//
// An empty table name falls back to T's TableName method. Tag errors are
// returned immediately and also cause Build to fail.
func Register[T any](b *Builder, table string) error {
	var zero T
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if table == "" {
		if tb, ok := any(zero).(Tabler); ok {
			table = tb.TableName()
		} else if tb, ok := any(&zero).(Tabler); ok {
			table = tb.TableName()
		}
	}
	return b.register(typ, table)
}

func (b *Builder) register(typ reflect.Type, table string) error {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	entity := typ.Name()

	if typ.Kind() != reflect.Struct {
		return b.fail(newConfigError(ErrCodeNotStruct, entity, "", "entity must be a struct, got %s", typ.Kind()))
	}
	if b.seen[typ] {
		return b.fail(newConfigError(ErrCodeDuplicateTable, entity, "", "entity registered more than once"))
	}
	b.seen[typ] = true

	cols, errs := taggedColumns(entity, typ)
	if len(errs) > 0 {
		return b.fail(errs...)
	}

	b.entries = append(b.entries, entry{typ: typ, table: table, cols: cols})
	return nil
}

// Override applies a declaration to an entity. The entity is named either
// by its package-qualified type name ("example.com/app/model.User", see
// QualifiedName) or by its bare type name ("User"). A qualified name wins
// over a bare one; a bare name that matches more than one registered type
// fails Build with ErrCodeAmbiguousEntity. Overrides take effect at Build;
// the entity must be registered by then.
func (b *Builder) Override(entity string, o TableOverride) {
	b.overrides[entity] = o
}

func (b *Builder) fail(errs ...error) error {
	b.errs = append(b.errs, errs...)
	return errors.Join(errs...)
}

// Build validates every registration and returns the immutable Registry.
// All configuration errors are returned joined.
func (b *Builder) Build() (*Registry, error) {
	errs := append([]error(nil), b.errs...)

	reg := &Registry{
		byType: make(map[reflect.Type]*TableDescriptor, len(b.entries)),
		byName: make(map[string]*TableDescriptor, len(b.entries)),
	}

	sameName := make(map[string]int, len(b.entries))
	for _, e := range b.entries {
		sameName[e.typ.Name()]++
	}

	applied := make(map[string]bool, len(b.overrides))
	reported := make(map[string]bool)
	for _, e := range b.entries {
		entity := e.typ.Name()
		table, cols := e.table, e.cols

		key := QualifiedName(e.typ)
		o, ok := b.overrides[key]
		if ok {
			// The qualified declaration shadows a bare one.
			if _, bare := b.overrides[entity]; bare {
				applied[entity] = true
			}
		} else {
			key = entity
			o, ok = b.overrides[key]
			if ok && sameName[entity] > 1 {
				if !reported[key] {
					reported[key] = true
					errs = append(errs, newConfigError(ErrCodeAmbiguousEntity, entity, "",
						"%d registered types share this name; use the package-qualified name", sameName[entity]))
				}
				applied[key] = true
				continue
			}
		}
		if ok {
			applied[key] = true
			var err error
			table, cols, err = applyOverride(e.typ, table, cols, o)
			if err != nil {
				errs = append(errs, err)
				continue
			}
		}

		td, err := NewTableDescriptor(entity, table, e.typ, cols)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := reg.byName[td.Name()]; dup {
			errs = append(errs, newConfigError(ErrCodeDuplicateTable, entity, "",
				"table %q already registered by %s", td.Name(), prev.Entity()))
			continue
		}
		reg.byType[e.typ] = td
		reg.byName[td.Name()] = td
		reg.order = append(reg.order, td)
	}

	for entity := range b.overrides {
		if !applied[entity] {
			errs = append(errs, newConfigError(ErrCodeUnknownEntity, entity, "", "declared entity was never registered"))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

// QualifiedName returns typ's package path and name joined by a dot, or the
// bare name for types without a package path.
func QualifiedName(typ reflect.Type) string {
	if typ.PkgPath() == "" {
		return typ.Name()
	}
	return typ.PkgPath() + "." + typ.Name()
}

// MustBuild is Build for process startup: it panics on configuration errors.
func (b *Builder) MustBuild() *Registry {
	reg, err := b.Build()
	if err != nil {
		panic("meta: invalid entity configuration: " + err.Error())
	}
	return reg
}

func applyOverride(typ reflect.Type, table string, cols []ColumnDescriptor, o TableOverride) (string, []ColumnDescriptor, error) {
	entity := typ.Name()
	if o.Table != "" {
		table = o.Table
	}

	out := make([]ColumnDescriptor, len(cols))
	copy(out, cols)
	pos := make(map[string]int, len(out))
	for i, c := range out {
		pos[c.Member] = i
	}

	var fields map[string]reflect.StructField
	var errs []error
	for _, member := range slices.Sorted(maps.Keys(o.Columns)) {
		co := o.Columns[member]
		i, ok := pos[member]
		if !ok {
			if fields == nil {
				fields = make(map[string]reflect.StructField)
				for _, f := range Fields(typ) {
					fields[f.Name] = f
				}
			}
			f, exists := fields[member]
			if !exists {
				errs = append(errs, newConfigError(ErrCodeUnknownMember, entity, member, "no exported field with this name"))
				continue
			}
			out = append(out, ColumnDescriptor{
				Name:            member,
				Member:          member,
				Index:           f.Index,
				Type:            f.Type,
				IncludeOnInsert: true,
				IncludeOnUpdate: true,
			})
			i = len(out) - 1
			pos[member] = i
		}

		c := &out[i]
		if co.Column != "" {
			c.Name = co.Column
		}
		if co.Insert != nil {
			c.IncludeOnInsert = *co.Insert
		}
		if co.Update != nil {
			c.IncludeOnUpdate = *co.Update
		}
		if co.PrimaryKey != nil {
			c.PrimaryKey = *co.PrimaryKey
		}
	}
	if len(errs) > 0 {
		return "", nil, errors.Join(errs...)
	}

	// Columns added by the declaration keep field order.
	slices.SortStableFunc(out, func(a, b ColumnDescriptor) int {
		return slices.Compare(a.Index, b.Index)
	})
	return table, out, nil
}

// Registry maps entity types to their table descriptors.
// It is immutable and safe for concurrent reads.
type Registry struct {
	byType map[reflect.Type]*TableDescriptor
	byName map[string]*TableDescriptor
	order  []*TableDescriptor
}

// GetTable returns the descriptor for an entity type.
// Pointer types are dereferenced. Unregistered types report false.
func (r *Registry) GetTable(typ reflect.Type) (*TableDescriptor, bool) {
	if r == nil || typ == nil {
		return nil, false
	}
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	td, ok := r.byType[typ]
	return td, ok
}

// Lookup returns the descriptor with the given table name.
func (r *Registry) Lookup(table string) (*TableDescriptor, bool) {
	if r == nil {
		return nil, false
	}
	td, ok := r.byName[table]
	return td, ok
}

// Tables returns all descriptors in registration order.
func (r *Registry) Tables() []*TableDescriptor {
	if r == nil {
		return nil
	}
	out := make([]*TableDescriptor, len(r.order))
	copy(out, r.order)
	return out
}

// TableOf returns the descriptor for entity type T.
func TableOf[T any](r *Registry) (*TableDescriptor, bool) {
	return r.GetTable(reflect.TypeOf((*T)(nil)).Elem())
}
