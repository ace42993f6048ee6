// Package shape enumerates the construction-relevant structure of a target
// type: its fields, each field's kind (scalar, struct, fixed array, slice,
// map, tagged union, optional) and any struct-tag default. Reflection over a
// fully known type cannot fail except for self-referential composites, which
// are rejected at definition time.
package shape

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	zspec "github.com/apotema/zspec"
	"github.com/apotema/zspec/i18n"
)

// Kind tags the type-shape variants the engine dispatches on.
type Kind int

const (
	KindScalar Kind = iota
	KindStruct
	KindArray
	KindSlice
	KindMap
	KindUnion
	KindOptional
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	case KindOptional:
		return "optional"
	default:
		return "unknown"
	}
}

// DefaultSpec is the first-class representation of a field's declared default:
// either literal data or a resolver marker. Exhaustively matched by the merge
// engine so the dynamic/static distinction never relies on value sniffing.
type DefaultSpec struct {
	Generated bool
	Format    string // only for Generated string targets
	Literal   any    // only when !Generated
}

// Field describes one named member of a struct shape.
type Field struct {
	Name    string // Go field name
	Key     string // external description key
	Index   int    // reflect field index
	Shape   *Shape
	Default *DefaultSpec // nil when the type declares no default
}

// Variant describes one tag of a union shape.
type Variant struct {
	Name       string // Go field name
	Key        string // external tag key
	Index      int    // reflect field index
	Payload    *Shape // nil when the variant carries no payload
	HasPayload bool
}

// Shape is the recursive type-shape of a target type.
type Shape struct {
	Kind     Kind
	Type     reflect.Type
	Fields   []Field      // KindStruct, in declared order
	Variants []Variant    // KindUnion, in declared order
	Elem     *Shape       // array/slice element, map value, optional inner
	Key      reflect.Type // KindMap key type
	Len      int          // KindArray declared length
}

// FieldByKey returns the field with the given external key.
func (s *Shape) FieldByKey(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// VariantByKey returns the variant with the given tag key.
func (s *Shape) VariantByKey(key string) (Variant, bool) {
	for _, v := range s.Variants {
		if v.Key == key {
			return v, true
		}
	}
	return Variant{}, false
}

var unionMarker = reflect.TypeOf(zspec.Union{})
var unitType = reflect.TypeOf(zspec.Unit{})
var byteSliceType = reflect.TypeOf([]byte(nil))

var cache sync.Map // reflect.Type -> *Shape

// Of reflects the shape of t. Results are cached; repeated and concurrent
// first use is safe because building is idempotent and side-effect-free.
func Of(t reflect.Type) (*Shape, error) {
	if v, ok := cache.Load(t); ok {
		return v.(*Shape), nil
	}
	sh, iss := build(t, map[reflect.Type]bool{})
	if len(iss) > 0 {
		return nil, iss
	}
	actual, _ := cache.LoadOrStore(t, sh)
	return actual.(*Shape), nil
}

func build(t reflect.Type, visiting map[reflect.Type]bool) (*Shape, zspec.Issues) {
	switch t.Kind() {
	case reflect.Pointer:
		inner, iss := build(t.Elem(), visiting)
		if len(iss) > 0 {
			return nil, iss
		}
		return &Shape{Kind: KindOptional, Type: t, Elem: inner}, nil
	case reflect.Struct:
		if visiting[t] {
			return nil, zspec.Issues{zspec.Issue{
				Path:    "/",
				Code:    zspec.CodeCycle,
				Message: fmt.Sprintf("%s: type %q refers to itself", i18n.T(zspec.CodeCycle, nil), t.String()),
				Params:  map[string]any{"type": t.String()},
			}}
		}
		if !hasExportedFields(t) {
			// Opaque structs such as time.Time are handled as scalar values:
			// the description must supply an already-typed value.
			return &Shape{Kind: KindScalar, Type: t}, nil
		}
		visiting[t] = true
		defer delete(visiting, t)
		if isUnion(t) {
			return buildUnion(t, visiting)
		}
		return buildStruct(t, visiting)
	case reflect.Array:
		elem, iss := build(t.Elem(), visiting)
		if len(iss) > 0 {
			return nil, iss
		}
		return &Shape{Kind: KindArray, Type: t, Elem: elem, Len: t.Len()}, nil
	case reflect.Slice:
		if t == byteSliceType {
			return &Shape{Kind: KindScalar, Type: t}, nil
		}
		elem, iss := build(t.Elem(), visiting)
		if len(iss) > 0 {
			return nil, iss
		}
		return &Shape{Kind: KindSlice, Type: t, Elem: elem}, nil
	case reflect.Map:
		elem, iss := build(t.Elem(), visiting)
		if len(iss) > 0 {
			return nil, iss
		}
		return &Shape{Kind: KindMap, Type: t, Elem: elem, Key: t.Key()}, nil
	default:
		return &Shape{Kind: KindScalar, Type: t}, nil
	}
}

func hasExportedFields(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func isUnion(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == unionMarker {
			return true
		}
	}
	return false
}

func buildStruct(t reflect.Type, visiting map[reflect.Type]bool) (*Shape, zspec.Issues) {
	sh := &Shape{Kind: KindStruct, Type: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := zspec.ResolveStructKey(sf)
		if key == "-" || key == "" {
			continue
		}
		fs, iss := build(sf.Type, visiting)
		if len(iss) > 0 {
			return nil, rebase(iss, key)
		}
		def, iss := parseDefault(sf, fs)
		if len(iss) > 0 {
			return nil, iss
		}
		sh.Fields = append(sh.Fields, Field{Name: sf.Name, Key: key, Index: i, Shape: fs, Default: def})
	}
	return sh, nil
}

func buildUnion(t reflect.Type, visiting map[reflect.Type]bool) (*Shape, zspec.Issues) {
	sh := &Shape{Kind: KindUnion, Type: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == unionMarker {
			continue
		}
		if !sf.IsExported() {
			continue
		}
		key := zspec.ResolveStructKey(sf)
		if key == "-" || key == "" {
			continue
		}
		if sf.Type.Kind() != reflect.Pointer {
			return nil, zspec.Issues{zspec.Issue{
				Path:    "/" + key,
				Code:    zspec.CodeInvalidType,
				Message: fmt.Sprintf("union %q: variant %q must be a pointer field", t.String(), key),
				Params:  map[string]any{"type": t.String(), "variant": key},
			}}
		}
		v := Variant{Name: sf.Name, Key: key, Index: i}
		if sf.Type.Elem() != unitType {
			payload, iss := build(sf.Type.Elem(), visiting)
			if len(iss) > 0 {
				return nil, rebase(iss, key)
			}
			v.Payload = payload
			v.HasPayload = true
		}
		sh.Variants = append(sh.Variants, v)
	}
	return sh, nil
}

// rebase prefixes child issue paths with the enclosing field key.
func rebase(iss zspec.Issues, key string) zspec.Issues {
	out := make(zspec.Issues, 0, len(iss))
	for _, it := range iss {
		p := it.Path
		if p == "" || p == "/" {
			p = "/" + key
		} else {
			p = "/" + key + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}

// parseDefault reads the field's default:"..." tag.
// "auto" and "auto:FORMAT" produce resolver markers; scalar values parse via
// strconv; composite values parse as JSON.
func parseDefault(sf reflect.StructField, fs *Shape) (*DefaultSpec, zspec.Issues) {
	tag, ok := sf.Tag.Lookup("default")
	if !ok {
		return nil, nil
	}
	if tag == "auto" {
		return &DefaultSpec{Generated: true}, nil
	}
	if strings.HasPrefix(tag, "auto:") {
		return &DefaultSpec{Generated: true, Format: strings.TrimPrefix(tag, "auto:")}, nil
	}
	lit, err := parseLiteralTag(tag, fs)
	if err != nil {
		return nil, zspec.Issues{zspec.Issue{
			Path:    "/" + zspec.ResolveStructKey(sf),
			Code:    zspec.CodeParseError,
			Message: fmt.Sprintf("bad default tag %q for field %q: %v", tag, sf.Name, err),
			Cause:   err,
		}}
	}
	return &DefaultSpec{Literal: lit}, nil
}

func parseLiteralTag(tag string, fs *Shape) (any, error) {
	target := fs.Type
	if fs.Kind == KindOptional {
		target = fs.Elem.Type
	}
	switch target.Kind() {
	case reflect.String:
		return tag, nil
	case reflect.Bool:
		return strconv.ParseBool(tag)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(tag, 10, 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(tag, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(tag, 64)
	default:
		// Composite defaults are written as JSON in the tag.
		dec := json.NewDecoder(bytes.NewReader([]byte(tag)))
		dec.UseNumber()
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		return normalize(raw), nil
	}
}

// normalize rewrites decoder output into the Desc/Tuple vocabulary.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(zspec.Desc, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make(zspec.Tuple, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
