package processor

import (
	"reflect"
)

func mergeReflect(t reflect.Type, a, b, out reflect.Value) {
	switch t.Kind() {
	case reflect.Struct:
		for _, f := range reflect.VisibleFields(t) {
			if !f.IsExported() || len(f.Index) > 1 {
				continue
			}
			mergeReflect(f.Type, a.FieldByIndex(f.Index), b.FieldByIndex(f.Index), out.FieldByIndex(f.Index))
		}
	case reflect.Pointer:
		if a.IsNil() {
			out.Set(b)
		} else if b.IsNil() {
			out.Set(a)
		} else {
			out.Set(reflect.New(t.Elem()))
			mergeReflect(t.Elem(), a.Elem(), b.Elem(), out.Elem())
		}
	case reflect.Map:
		if a.IsNil() {
			out.Set(b)
			return
		}
		m := reflect.MakeMapWithSize(t, a.Len()+b.Len())
		for _, k := range a.MapKeys() {
			m.SetMapIndex(k, a.MapIndex(k))
		}
		for _, k := range b.MapKeys() {
			m.SetMapIndex(k, b.MapIndex(k))
		}
		out.Set(m)
	default:
		if b.IsZero() {
			out.Set(a)
		} else {
			out.Set(b)
		}
	}
}

// Merge overlays the non-zero fields of b onto a.
// Maps are merged key by key, with b winning.
func Merge[T any](a T, b T) T {
	var out T
	mergeReflect(reflect.TypeOf((*T)(nil)).Elem(), reflect.ValueOf(a), reflect.ValueOf(b), reflect.ValueOf(&out).Elem())
	return out
}

// WithDefault returns v, or def if v is the zero value.
func WithDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
