package zspec

import (
	"reflect"
)

// FieldNameOf returns the description key for a top-level field of S selected
// by selector. The selector must return the address of a top-level field, e.g.:
//
//	FieldNameOf[Order](func(o *Order) *string { return &o.Status }) -> "status"
//
// This guarantees compile-time errors if the field is renamed/removed, which
// keeps call-site override keys linked to the struct definition.
func FieldNameOf[S any, F any](selector func(*S) *F) string {
	if selector == nil {
		panic("zspec.FieldNameOf: selector must not be nil")
	}
	var zero S
	fp := reflect.ValueOf(selector(&zero)).Pointer()
	rv := reflect.ValueOf(&zero).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if fv.CanAddr() && fv.Addr().Pointer() == fp {
			name := ResolveStructKey(sf)
			if name == "" || name == "-" {
				panic("zspec.FieldNameOf: selected field is not exported or disabled")
			}
			return name
		}
	}
	panic("zspec.FieldNameOf: selector must return address of a top-level field")
}
