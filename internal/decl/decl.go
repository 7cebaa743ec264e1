package decl

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/entmap/internal/meta"
)

// File is a parsed declaration file.
type File struct {
	// Entities is keyed by Go type name.
	Entities map[string]Entity `yaml:"entities" json:"entities"`
}

// Entity declares the table for one entity type.
type Entity struct {
	Table   string   `yaml:"table" json:"table"`
	Columns []Column `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// Column declares one column. Unset flags keep the struct tag value.
// For type-less tables Name defaults to Member and Insert/Update to true.
type Column struct {
	Member     string `yaml:"member" json:"member"`
	Name       string `yaml:"name,omitempty" json:"name,omitempty"`
	Insert     *bool  `yaml:"insert,omitempty" json:"insert,omitempty"`
	Update     *bool  `yaml:"update,omitempty" json:"update,omitempty"`
	PrimaryKey *bool  `yaml:"pk,omitempty" json:"pk,omitempty"`
}

// Load reads a declaration file, choosing the format by extension
// (.yaml, .yml or .cue).
func Load(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".cue":
		return LoadCUE(path)
	default:
		return nil, fmt.Errorf("unsupported declaration format %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// EntityNames returns the declared entity names in sorted order.
func (f *File) EntityNames() []string {
	return slices.Sorted(maps.Keys(f.Entities))
}

// ApplyTo registers every entity declaration as a builder override.
// Entities declared here must be registered on b before Build.
func (f *File) ApplyTo(b *meta.Builder) {
	for _, name := range f.EntityNames() {
		e := f.Entities[name]
		o := meta.TableOverride{
			Table:   e.Table,
			Columns: make(map[string]meta.ColumnOverride, len(e.Columns)),
		}
		for _, c := range e.Columns {
			o.Columns[c.Member] = meta.ColumnOverride{
				Column:     c.Name,
				Insert:     c.Insert,
				Update:     c.Update,
				PrimaryKey: c.PrimaryKey,
			}
		}
		b.Override(name, o)
	}
}

// Tables builds a descriptor per declared entity, sorted by entity name.
// The descriptors have no Go type; columns keep declaration order.
func (f *File) Tables() ([]*meta.TableDescriptor, error) {
	var errs []error
	out := make([]*meta.TableDescriptor, 0, len(f.Entities))
	tables := make(map[string]string, len(f.Entities))

	for _, name := range f.EntityNames() {
		e := f.Entities[name]
		cols := make([]meta.ColumnDescriptor, len(e.Columns))
		for i, c := range e.Columns {
			cols[i] = meta.ColumnDescriptor{
				Name:            orDefault(c.Name, c.Member),
				Member:          c.Member,
				IncludeOnInsert: flag(c.Insert, true),
				IncludeOnUpdate: flag(c.Update, true),
				PrimaryKey:      flag(c.PrimaryKey, false),
			}
		}

		td, err := meta.NewTableDescriptor(name, e.Table, nil, cols)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := tables[td.Name()]; dup {
			errs = append(errs, &meta.ConfigError{
				Code:    meta.ErrCodeDuplicateTable,
				Entity:  name,
				Message: fmt.Sprintf("table %q already declared by %s", td.Name(), prev),
			})
			continue
		}
		tables[td.Name()] = name
		out = append(out, td)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// validate checks what the decoders cannot: names and member uniqueness.
func (f *File) validate() error {
	if len(f.Entities) == 0 {
		return fmt.Errorf("entities is required and must be non-empty")
	}

	var errs []error
	for _, name := range f.EntityNames() {
		e := f.Entities[name]
		if strings.TrimSpace(name) == "" {
			errs = append(errs, &meta.ConfigError{Code: meta.ErrCodeMissingName, Message: "entity name is required"})
			continue
		}
		seen := make(map[string]bool, len(e.Columns))
		for i, c := range e.Columns {
			switch {
			case strings.TrimSpace(c.Member) == "":
				errs = append(errs, &meta.ConfigError{
					Code:    meta.ErrCodeMissingName,
					Entity:  name,
					Message: fmt.Sprintf("columns[%d]: member is required", i),
				})
			case seen[c.Member]:
				errs = append(errs, &meta.ConfigError{
					Code:    meta.ErrCodeDuplicateMember,
					Entity:  name,
					Member:  c.Member,
					Message: "member declared more than once",
				})
			}
			seen[c.Member] = true
		}
	}
	return errors.Join(errs...)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func flag(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
