// Package merge implements layer resolution: given description layers from
// lowest to highest precedence it produces one effective description per
// field, recursing sub-field by sub-field when adjacent layers both describe
// a composite field (deep partial merge), then hands the result to the
// coercer. Precedence is strict and total: call-site overlay > variant
// overlays > base defaults > struct-tag default.
package merge

import (
	"fmt"
	"reflect"

	zspec "github.com/apotema/zspec"
	"github.com/apotema/zspec/internal/coerce"
	"github.com/apotema/zspec/internal/shape"
)

// Build constructs one instance of sh from the given layers.
func Build(env coerce.Env, sh *shape.Shape, layers []zspec.Desc) (reflect.Value, zspec.Issues) {
	if sh.Kind != shape.KindStruct {
		return reflect.Value{}, zspec.Issues{zspec.Issue{
			Path:    "/",
			Code:    zspec.CodeInvalidType,
			Message: fmt.Sprintf("target type %q is not a composite", sh.Type.String()),
			Params:  map[string]any{"type": sh.Type.String()},
		}}
	}
	var merged any = zspec.Desc{}
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		merged = mergeValue(sh, merged, layer)
	}
	return coerce.Coerce(env, sh, merged, zspec.Root())
}

// mergeValue folds high over low for one field value. Recursion happens only
// when both sides are description trees of a composite shape; in every other
// pairing the higher-precedence value replaces the lower one wholesale, so
// an already-typed value short-circuits the merge.
func mergeValue(sh *shape.Shape, low, high any) any {
	hd, highDesc := shape.AsDesc(high)
	ld, lowDesc := shape.AsDesc(low)
	if !highDesc || !lowDesc {
		return high
	}
	switch sh.Kind {
	case shape.KindOptional:
		return mergeValue(sh.Elem, low, high)
	case shape.KindStruct:
		out := make(zspec.Desc, len(ld)+len(hd))
		for k, lv := range ld {
			out[k] = lv
		}
		for k, hv := range hd {
			f, ok := sh.FieldByKey(k)
			if !ok {
				// Unknown keys are the validator's concern; keep the higher value.
				out[k] = hv
				continue
			}
			if lv, both := out[k]; both {
				out[k] = mergeValue(f.Shape, lv, hv)
				continue
			}
			out[k] = hv
		}
		return out
	case shape.KindUnion:
		// Union payloads merge only when both layers agree on the tag;
		// differing tags replace wholesale.
		if len(hd) != 1 || len(ld) != 1 {
			return high
		}
		var tag string
		for k := range hd {
			tag = k
		}
		lv, sameTag := ld[tag]
		if !sameTag {
			return high
		}
		variant, ok := sh.VariantByKey(tag)
		if !ok || !variant.HasPayload {
			return high
		}
		return zspec.Desc{tag: mergeValue(variant.Payload, lv, hd[tag])}
	case shape.KindMap:
		out := make(zspec.Desc, len(ld)+len(hd))
		for k, lv := range ld {
			out[k] = lv
		}
		for k, hv := range hd {
			if lv, both := out[k]; both {
				out[k] = mergeValue(sh.Elem, lv, hv)
				continue
			}
			out[k] = hv
		}
		return out
	default:
		return high
	}
}
