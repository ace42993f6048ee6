package shape

import zspec "github.com/apotema/zspec"

// AsDesc reports whether v is a description tree and returns it normalized.
func AsDesc(v any) (zspec.Desc, bool) {
	switch t := v.(type) {
	case zspec.Desc:
		return t, true
	case map[string]any:
		return zspec.Desc(t), true
	default:
		return nil, false
	}
}

// AsTuple reports whether v is an ordered element list and returns it normalized.
func AsTuple(v any) (zspec.Tuple, bool) {
	switch t := v.(type) {
	case zspec.Tuple:
		return t, true
	case []any:
		return zspec.Tuple(t), true
	default:
		return nil, false
	}
}
