package where

import "reflect"

// FieldRef references a member of entity type T.
type FieldRef[T any] struct {
	member string
}

// Field references member of T by its Go field name.
func Field[T any](member string) FieldRef[T] {
	return FieldRef[T]{member: member}
}

// Ptr references the member of T whose address sel returns.
//
//	where.Ptr(func(u *User) any { return &u.Email })
//
// If sel returns anything other than the address of a field of its
// argument, the reference has no member and translators skip it.
func Ptr[T any](sel func(*T) any) FieldRef[T] {
	return FieldRef[T]{member: memberByAddress(sel)}
}

// Member returns the referenced Go field name ("" if unresolved).
func (f FieldRef[T]) Member() string { return f.member }

// Ref returns the bare member reference.
func (f FieldRef[T]) Ref() MemberRef {
	return MemberRef{EntityType: entityType[T](), Member: f.member}
}

// Compare builds "member <op> v".
func (f FieldRef[T]) Compare(op Op, v any) Comparison {
	return Comparison{EntityType: entityType[T](), Member: f.member, Op: op, Value: v}
}

func (f FieldRef[T]) Eq(v any) Comparison { return f.Compare(Eq, v) }
func (f FieldRef[T]) Ne(v any) Comparison { return f.Compare(Ne, v) }
func (f FieldRef[T]) Lt(v any) Comparison { return f.Compare(Lt, v) }
func (f FieldRef[T]) Le(v any) Comparison { return f.Compare(Le, v) }
func (f FieldRef[T]) Gt(v any) Comparison { return f.Compare(Gt, v) }
func (f FieldRef[T]) Ge(v any) Comparison { return f.Compare(Ge, v) }

func entityType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// memberByAddress calls sel on a fresh T and matches the returned pointer
// against the field offsets of T. The pointed-to type disambiguates fields
// sharing an offset (an embedded struct and its first field).
func memberByAddress[T any](sel func(*T) any) string {
	if sel == nil {
		return ""
	}
	typ := entityType[T]()
	if typ.Kind() != reflect.Struct {
		return ""
	}

	base := new(T)
	got := reflect.ValueOf(sel(base))
	if got.Kind() != reflect.Pointer || got.IsNil() {
		return ""
	}
	offset := got.Pointer() - reflect.ValueOf(base).Pointer()
	target := got.Type().Elem()

	for _, f := range reflect.VisibleFields(typ) {
		if f.Anonymous || f.Type != target {
			continue
		}
		if off, ok := fieldOffset(typ, f.Index); ok && off == offset {
			return f.Name
		}
	}
	return ""
}

func fieldOffset(t reflect.Type, index []int) (uintptr, bool) {
	var off uintptr
	for n, i := range index {
		f := t.Field(i)
		off += f.Offset
		if n < len(index)-1 {
			if f.Type.Kind() != reflect.Struct {
				return 0, false
			}
			t = f.Type
		}
	}
	return off, true
}
