package zspec

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Desc is a sparse description of field values for a target type.
// Keys are field keys (struct case) or exactly one variant tag (union case).
// Values are scalars, nested Desc trees, Tuples for array-shaped fields, or
// Generated markers for dynamically resolved values.
type Desc map[string]any

// Tuple is an ordered list of element descriptions for array- and
// slice-shaped fields. For a fixed array the length must equal the array's
// declared length.
type Tuple []any

// Clone deep-copies the description so that templates never alias
// caller-owned trees. Descriptions are treated as immutable after authoring.
func (d Desc) Clone() Desc {
	if d == nil {
		return nil
	}
	out := make(Desc, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Desc:
		return t.Clone()
	case map[string]any:
		return Desc(t).Clone()
	case Tuple:
		out := make(Tuple, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []any:
		out := make(Tuple, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// DescFromJSON parses data into a Desc. Numbers are preserved as json.Number
// so that integer literals survive into integer-typed fields without a float
// round-trip. The result is still subject to full validation at Define time.
func DescFromJSON(data []byte) (Desc, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, Issues{Issue{Path: "/", Code: CodeParseError, Message: fmt.Sprintf("invalid JSON description: %v", err), Cause: err}}
	}
	return normalizeTree(raw).(Desc), nil
}

// DescFromYAML parses data into a Desc. YAML scalars keep their native Go
// types (int, float64, bool, string).
func DescFromYAML(data []byte) (Desc, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, Issues{Issue{Path: "/", Code: CodeParseError, Message: fmt.Sprintf("invalid YAML description: %v", err), Cause: err}}
	}
	return normalizeTree(raw).(Desc), nil
}

// normalizeTree rewrites decoder output into the Desc/Tuple vocabulary.
func normalizeTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(Desc, len(t))
		for k, e := range t {
			out[k] = normalizeTree(e)
		}
		return out
	case []any:
		out := make(Tuple, len(t))
		for i, e := range t {
			out[i] = normalizeTree(e)
		}
		return out
	default:
		return v
	}
}
