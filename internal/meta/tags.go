package meta

import (
	"reflect"
	"strings"
)

// TagName is the struct tag key that declares a column.
const TagName = "column"

// Tag options.
const (
	optNoInsert   = "noinsert"
	optNoUpdate   = "noupdate"
	optPrimaryKey = "pk"
)

// parseColumnTag parses a `column:"name,opt,..."` tag value.
// skip is true for "-".
func parseColumnTag(entity, member, tag string) (col ColumnDescriptor, skip bool, err error) {
	if tag == "-" {
		return ColumnDescriptor{}, true, nil
	}

	parts := strings.Split(tag, ",")
	col = ColumnDescriptor{
		Name:            strings.TrimSpace(parts[0]),
		Member:          member,
		IncludeOnInsert: true,
		IncludeOnUpdate: true,
	}
	if col.Name == "" {
		return ColumnDescriptor{}, false, newConfigError(ErrCodeMissingName, entity, member, "column tag has no name")
	}

	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case optNoInsert:
			col.IncludeOnInsert = false
		case optNoUpdate:
			col.IncludeOnUpdate = false
		case optPrimaryKey:
			col.PrimaryKey = true
		case "":
		default:
			return ColumnDescriptor{}, false, newConfigError(ErrCodeBadTag, entity, member, "unknown column tag option %q", opt)
		}
	}
	return col, false, nil
}

// Fields returns the exported, directly reachable fields of struct type t,
// with embedded structs flattened. Fields promoted through embedded pointers
// are excluded because they cannot be addressed on a zero entity.
func Fields(t reflect.Type) []reflect.StructField {
	var out []reflect.StructField
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		if throughPointer(t, f.Index) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func throughPointer(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			return true
		}
		t = f.Type
	}
	return false
}

// taggedColumns parses the column tags of every field of t.
func taggedColumns(entity string, t reflect.Type) ([]ColumnDescriptor, []error) {
	var cols []ColumnDescriptor
	var errs []error
	for _, f := range Fields(t) {
		tag, ok := f.Tag.Lookup(TagName)
		if !ok {
			continue
		}
		col, skip, err := parseColumnTag(entity, f.Name, tag)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if skip {
			continue
		}
		col.Index = f.Index
		col.Type = f.Type
		cols = append(cols, col)
	}
	return cols, errs
}
