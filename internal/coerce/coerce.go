// Package coerce turns loosely-typed description values into values of the
// exact target shape: passthrough when the value is already typed, recursive
// field-by-field construction for structs (filling unspecified fields from
// declared defaults), tag-directed construction for unions, and element-wise
// construction for arrays, slices and maps. A coercion failure on input that
// passed validation is always a definition-time concern (arity, missing
// value), never a runtime panic.
package coerce

import (
	"context"
	"fmt"
	"reflect"

	zspec "github.com/apotema/zspec"
	"github.com/apotema/zspec/i18n"
	"github.com/apotema/zspec/internal/shape"
)

// Env carries the per-construction collaborators through the recursion.
type Env struct {
	Ctx      context.Context
	Resolver zspec.Resolver
	Root     reflect.Type
}

// Coerce produces a reflect.Value of sh.Type from v.
func Coerce(env Env, sh *shape.Shape, v any, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	if g, ok := v.(zspec.Generated); ok {
		resolved, iss := resolveGenerated(env, sh, g, at)
		if len(iss) > 0 {
			return reflect.Value{}, iss
		}
		return Coerce(env, sh, resolved, at)
	}
	switch sh.Kind {
	case shape.KindOptional:
		return coerceOptional(env, sh, v, at)
	case shape.KindStruct:
		return coerceStruct(env, sh, v, at)
	case shape.KindUnion:
		return coerceUnion(env, sh, v, at)
	case shape.KindArray:
		return coerceArray(env, sh, v, at)
	case shape.KindSlice:
		return coerceSlice(env, sh, v, at)
	case shape.KindMap:
		return coerceMap(env, sh, v, at)
	default:
		return coerceScalar(sh.Type, v, at)
	}
}

func resolveGenerated(env Env, sh *shape.Shape, g zspec.Generated, at zspec.PathRef) (any, zspec.Issues) {
	if env.Resolver == nil {
		return nil, zspec.Issues{at.Issue(zspec.CodeResolverFailure,
			fmt.Sprintf("%s: no resolver configured for generated value of type %q", i18n.T(zspec.CodeResolverFailure, nil), sh.Type.String()),
			"type", sh.Type.String())}
	}
	ctx := env.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	req := zspec.ResolveRequest{Type: sh.Type, Root: env.Root, Path: at.Pointer(), Format: g.Format}
	v, err := env.Resolver.Resolve(ctx, req)
	if err != nil {
		return nil, zspec.Issues{zspec.Issue{
			Path:    at.Pointer(),
			Code:    zspec.CodeResolverFailure,
			Message: fmt.Sprintf("%s: %v", i18n.T(zspec.CodeResolverFailure, nil), err),
			Cause:   err,
			Params:  map[string]any{"type": sh.Type.String()},
		}}
	}
	if _, again := v.(zspec.Generated); again {
		return nil, zspec.Issues{at.Issue(zspec.CodeResolverFailure, "resolver returned another generated marker", "type", sh.Type.String())}
	}
	return v, nil
}

func coerceOptional(env Env, sh *shape.Shape, v any, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	if v == nil {
		return reflect.Zero(sh.Type), nil
	}
	if rv := reflect.ValueOf(v); rv.Type().AssignableTo(sh.Type) {
		return rv, nil
	}
	inner, iss := Coerce(env, sh.Elem, v, at)
	if len(iss) > 0 {
		return reflect.Value{}, iss
	}
	ptr := reflect.New(sh.Elem.Type)
	ptr.Elem().Set(inner)
	return ptr, nil
}

func coerceStruct(env Env, sh *shape.Shape, v any, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	d, isDesc := shape.AsDesc(v)
	if !isDesc {
		// Whole-value replacement: an already-typed value whose shape matches
		// the target exactly is used directly.
		if v != nil {
			if rv := reflect.ValueOf(v); rv.Type().AssignableTo(sh.Type) {
				return rv, nil
			}
		}
		return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
			fmt.Sprintf("%s: expected a description or a %s value, got %T", i18n.T(zspec.CodeInvalidType, nil), sh.Type.String(), v),
			"type", sh.Type.String())}
	}
	out := reflect.New(sh.Type).Elem()
	var iss zspec.Issues
	for _, f := range sh.Fields {
		fat := at.Field(f.Key)
		var fv reflect.Value
		var fiss zspec.Issues
		switch {
		case hasKey(d, f.Key):
			fv, fiss = Coerce(env, f.Shape, d[f.Key], fat)
		case f.Default != nil && f.Default.Generated:
			fv, fiss = Coerce(env, f.Shape, zspec.Generated{Format: f.Default.Format}, fat)
		case f.Default != nil:
			fv, fiss = Coerce(env, f.Shape, f.Default.Literal, fat)
		case f.Shape.Kind == shape.KindOptional:
			// absent source maps to the empty optional
			fv = reflect.Zero(f.Shape.Type)
		default:
			fiss = zspec.Issues{zspec.Issue{
				Path:    fat.Pointer(),
				Code:    zspec.CodeMissingValue,
				Message: fmt.Sprintf("%s: field %q of type %q is not covered by any layer or default", i18n.T(zspec.CodeMissingValue, nil), f.Key, sh.Type.String()),
				Params:  map[string]any{"field": f.Key, "type": sh.Type.String()},
			}}
		}
		if len(fiss) > 0 {
			iss = zspec.AppendIssues(iss, fiss...)
			continue
		}
		out.Field(f.Index).Set(fv)
	}
	if len(iss) > 0 {
		return reflect.Value{}, iss
	}
	return out, nil
}

func coerceUnion(env Env, sh *shape.Shape, v any, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	d, isDesc := shape.AsDesc(v)
	if !isDesc {
		if v != nil {
			if rv := reflect.ValueOf(v); rv.Type().AssignableTo(sh.Type) {
				return rv, nil
			}
		}
		return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
			fmt.Sprintf("%s: expected a single-tag description for union %q, got %T", i18n.T(zspec.CodeInvalidType, nil), sh.Type.String(), v),
			"type", sh.Type.String())}
	}
	if len(d) != 1 {
		return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeUnionTag,
			fmt.Sprintf("%s: union %q needs exactly one tag, got %d", i18n.T(zspec.CodeUnionTag, nil), sh.Type.String(), len(d)),
			"type", sh.Type.String(), "got", len(d))}
	}
	var tag string
	for k := range d {
		tag = k
	}
	variant, ok := sh.VariantByKey(tag)
	if !ok {
		return reflect.Value{}, zspec.Issues{zspec.Issue{
			Path:    at.Field(tag).Pointer(),
			Code:    zspec.CodeUnknownVariant,
			Message: fmt.Sprintf("%s %q: union %q declares no such tag (check for a typo)", i18n.T(zspec.CodeUnknownVariant, nil), tag, sh.Type.String()),
			Params:  map[string]any{"tag": tag, "type": sh.Type.String()},
		}}
	}
	out := reflect.New(sh.Type).Elem()
	if !variant.HasPayload {
		if !isUnitValue(d[tag]) {
			return reflect.Value{}, zspec.Issues{at.Field(tag).Issue(zspec.CodeInvalidType,
				fmt.Sprintf("variant %q of union %q carries no payload", tag, sh.Type.String()),
				"tag", tag, "type", sh.Type.String())}
		}
		out.Field(variant.Index).Set(reflect.ValueOf(&zspec.Unit{}))
		return out, nil
	}
	payload, iss := Coerce(env, variant.Payload, d[tag], at.Field(tag))
	if len(iss) > 0 {
		return reflect.Value{}, iss
	}
	ptr := reflect.New(variant.Payload.Type)
	ptr.Elem().Set(payload)
	out.Field(variant.Index).Set(ptr)
	return out, nil
}

func coerceArray(env Env, sh *shape.Shape, v any, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	tup, ok := shape.AsTuple(v)
	if !ok {
		if v != nil {
			if rv := reflect.ValueOf(v); rv.Type().AssignableTo(sh.Type) {
				return rv, nil
			}
		}
		return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
			fmt.Sprintf("%s: expected an ordered tuple for %s, got %T", i18n.T(zspec.CodeInvalidType, nil), sh.Type.String(), v),
			"type", sh.Type.String())}
	}
	if len(tup) != sh.Len {
		return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeArityMismatch,
			fmt.Sprintf("%s: %s expects %d elements, got %d", i18n.T(zspec.CodeArityMismatch, nil), sh.Type.String(), sh.Len, len(tup)),
			"expected", sh.Len, "got", len(tup), "type", sh.Type.String())}
	}
	out := reflect.New(sh.Type).Elem()
	var iss zspec.Issues
	for i, el := range tup {
		ev, eiss := Coerce(env, sh.Elem, el, at.Index(i))
		if len(eiss) > 0 {
			iss = zspec.AppendIssues(iss, eiss...)
			continue
		}
		out.Index(i).Set(ev)
	}
	if len(iss) > 0 {
		return reflect.Value{}, iss
	}
	return out, nil
}

func coerceSlice(env Env, sh *shape.Shape, v any, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	tup, ok := shape.AsTuple(v)
	if !ok {
		if v != nil {
			if rv := reflect.ValueOf(v); rv.Type().AssignableTo(sh.Type) {
				return rv, nil
			}
		}
		return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
			fmt.Sprintf("%s: expected an ordered tuple for %s, got %T", i18n.T(zspec.CodeInvalidType, nil), sh.Type.String(), v),
			"type", sh.Type.String())}
	}
	out := reflect.MakeSlice(sh.Type, len(tup), len(tup))
	var iss zspec.Issues
	for i, el := range tup {
		ev, eiss := Coerce(env, sh.Elem, el, at.Index(i))
		if len(eiss) > 0 {
			iss = zspec.AppendIssues(iss, eiss...)
			continue
		}
		out.Index(i).Set(ev)
	}
	if len(iss) > 0 {
		return reflect.Value{}, iss
	}
	return out, nil
}

func coerceMap(env Env, sh *shape.Shape, v any, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	d, isDesc := shape.AsDesc(v)
	if !isDesc {
		if v != nil {
			if rv := reflect.ValueOf(v); rv.Type().AssignableTo(sh.Type) {
				return rv, nil
			}
		}
		return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
			fmt.Sprintf("%s: expected a description for %s, got %T", i18n.T(zspec.CodeInvalidType, nil), sh.Type.String(), v),
			"type", sh.Type.String())}
	}
	if sh.Key.Kind() != reflect.String {
		return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
			fmt.Sprintf("map %q: description keys require a string key type", sh.Type.String()),
			"type", sh.Type.String())}
	}
	out := reflect.MakeMapWithSize(sh.Type, len(d))
	var iss zspec.Issues
	for k, el := range d {
		ev, eiss := Coerce(env, sh.Elem, el, at.Field(k))
		if len(eiss) > 0 {
			iss = zspec.AppendIssues(iss, eiss...)
			continue
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(sh.Key), ev)
	}
	if len(iss) > 0 {
		return reflect.Value{}, iss
	}
	return out, nil
}

func hasKey(d zspec.Desc, k string) bool {
	_, ok := d[k]
	return ok
}

// isUnitValue accepts the empty shapes a payload-less variant may be written as.
func isUnitValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case zspec.Unit, *zspec.Unit:
		return true
	case zspec.Desc:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
