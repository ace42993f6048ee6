// Package validate walks a description tree against a target shape and
// reports every key that names no field or union tag. It runs eagerly at
// template registration and again on each call-site overlay, always before
// any value is written into an instance. Structure runs a second,
// independent walk at registration that enforces fixed-array arity and the
// union single-tag invariant per layer, so length and tag-count errors
// surface at Define/Variant time while staying separate from the
// unknown-key report.
package validate

import (
	"fmt"
	"sort"

	zspec "github.com/apotema/zspec"
	"github.com/apotema/zspec/i18n"
	"github.com/apotema/zspec/internal/shape"
)

// Validate checks every key of d against sh, recursing through nested
// composites, array elements and union payloads. An empty description
// validates trivially against any shape.
func Validate(sh *shape.Shape, v any, at zspec.PathRef) zspec.Issues {
	if v == nil {
		return nil
	}
	switch sh.Kind {
	case shape.KindOptional:
		return Validate(sh.Elem, v, at)
	case shape.KindStruct:
		d, ok := shape.AsDesc(v)
		if !ok {
			// Whole-value replacement; the coercer checks assignability.
			return nil
		}
		return validateStruct(sh, d, at)
	case shape.KindUnion:
		d, ok := shape.AsDesc(v)
		if !ok {
			return nil
		}
		return validateUnion(sh, d, at)
	case shape.KindArray, shape.KindSlice:
		tup, ok := shape.AsTuple(v)
		if !ok {
			return nil
		}
		var iss zspec.Issues
		for i, el := range tup {
			iss = zspec.AppendIssues(iss, Validate(sh.Elem, el, at.Index(i))...)
		}
		return iss
	case shape.KindMap:
		d, ok := shape.AsDesc(v)
		if !ok {
			return nil
		}
		var iss zspec.Issues
		for _, k := range sortedKeys(d) {
			iss = zspec.AppendIssues(iss, Validate(sh.Elem, d[k], at.Field(k))...)
		}
		return iss
	default:
		return nil
	}
}

func validateStruct(sh *shape.Shape, d zspec.Desc, at zspec.PathRef) zspec.Issues {
	var iss zspec.Issues
	for _, k := range sortedKeys(d) {
		f, ok := sh.FieldByKey(k)
		if !ok {
			iss = zspec.AppendIssues(iss, zspec.IssueAt(at.Field(k), zspec.CodeUnknownField,
				fmt.Sprintf("%s %q: type %q has no such member (check for a typo)", i18n.T(zspec.CodeUnknownField, nil), k, sh.Type.String()),
				map[string]any{"key": k, "type": sh.Type.String()}))
			continue
		}
		iss = zspec.AppendIssues(iss, Validate(f.Shape, d[k], at.Field(k))...)
	}
	return iss
}

func validateUnion(sh *shape.Shape, d zspec.Desc, at zspec.PathRef) zspec.Issues {
	var iss zspec.Issues
	for _, k := range sortedKeys(d) {
		v, ok := sh.VariantByKey(k)
		if !ok {
			iss = zspec.AppendIssues(iss, zspec.IssueAt(at.Field(k), zspec.CodeUnknownVariant,
				fmt.Sprintf("%s %q: union %q declares no such tag (check for a typo)", i18n.T(zspec.CodeUnknownVariant, nil), k, sh.Type.String()),
				map[string]any{"tag": k, "type": sh.Type.String()}))
			continue
		}
		if v.HasPayload {
			iss = zspec.AppendIssues(iss, Validate(v.Payload, d[k], at.Field(k))...)
		}
	}
	return iss
}

// Structure enforces the per-layer shape constraints that do not depend on
// other layers: a Tuple for a fixed array must already have the declared
// length, and a description for a union field must carry exactly one tag.
// Unknown keys are Validate's concern and are skipped here.
func Structure(sh *shape.Shape, v any, at zspec.PathRef) zspec.Issues {
	if v == nil {
		return nil
	}
	switch sh.Kind {
	case shape.KindOptional:
		return Structure(sh.Elem, v, at)
	case shape.KindStruct:
		d, ok := shape.AsDesc(v)
		if !ok {
			return nil
		}
		var iss zspec.Issues
		for _, k := range sortedKeys(d) {
			f, ok := sh.FieldByKey(k)
			if !ok {
				continue
			}
			iss = zspec.AppendIssues(iss, Structure(f.Shape, d[k], at.Field(k))...)
		}
		return iss
	case shape.KindUnion:
		d, ok := shape.AsDesc(v)
		if !ok {
			return nil
		}
		if len(d) != 1 {
			return zspec.Issues{at.Issue(zspec.CodeUnionTag,
				fmt.Sprintf("%s for union %q, got %d", i18n.T(zspec.CodeUnionTag, nil), sh.Type.String(), len(d)),
				"type", sh.Type.String(), "got", len(d))}
		}
		for _, k := range sortedKeys(d) {
			variant, ok := sh.VariantByKey(k)
			if !ok || !variant.HasPayload {
				continue
			}
			return Structure(variant.Payload, d[k], at.Field(k))
		}
		return nil
	case shape.KindArray:
		tup, ok := shape.AsTuple(v)
		if !ok {
			return nil
		}
		var iss zspec.Issues
		if len(tup) != sh.Len {
			iss = zspec.AppendIssues(iss, at.Issue(zspec.CodeArityMismatch,
				fmt.Sprintf("%s: type %q wants %d elements, got %d", i18n.T(zspec.CodeArityMismatch, nil), sh.Type.String(), sh.Len, len(tup)),
				"expected", sh.Len, "got", len(tup)))
		}
		for i, el := range tup {
			iss = zspec.AppendIssues(iss, Structure(sh.Elem, el, at.Index(i))...)
		}
		return iss
	case shape.KindSlice:
		tup, ok := shape.AsTuple(v)
		if !ok {
			return nil
		}
		var iss zspec.Issues
		for i, el := range tup {
			iss = zspec.AppendIssues(iss, Structure(sh.Elem, el, at.Index(i))...)
		}
		return iss
	case shape.KindMap:
		d, ok := shape.AsDesc(v)
		if !ok {
			return nil
		}
		var iss zspec.Issues
		for _, k := range sortedKeys(d) {
			iss = zspec.AppendIssues(iss, Structure(sh.Elem, d[k], at.Field(k))...)
		}
		return iss
	default:
		return nil
	}
}

func sortedKeys(d zspec.Desc) []string {
	ks := make([]string, 0, len(d))
	for k := range d {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
