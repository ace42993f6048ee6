package coerce

import (
	"fmt"
	"math"
	"reflect"

	json "github.com/goccy/go-json"

	zspec "github.com/apotema/zspec"
	"github.com/apotema/zspec/i18n"
)

// coerceScalar converts v into the scalar target type t. Conversions stay
// within the same kind family (numeric to numeric, string to string kinds,
// bool to bool); silent lossy truncation is rejected.
func coerceScalar(t reflect.Type, v any, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	if v == nil {
		return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
			fmt.Sprintf("%s: nil value for %q", i18n.T(zspec.CodeInvalidType, nil), t.String()),
			"type", t.String())}
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			v = i
		} else if f, err := n.Float64(); err == nil {
			v = f
		} else {
			return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeParseError,
				fmt.Sprintf("unparseable number literal %q", n.String()),
				"type", t.String())}
		}
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		if rv.Kind() == reflect.Bool {
			return rv.Convert(t), nil
		}
	case reflect.String:
		if rv.Kind() == reflect.String {
			return rv.Convert(t), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return convertToInt(t, rv, at)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return convertToUint(t, rv, at)
	case reflect.Float32, reflect.Float64:
		return convertToFloat(t, rv, at)
	default:
		if rv.Type().AssignableTo(t) {
			return rv, nil
		}
	}
	return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
		fmt.Sprintf("%s: cannot use %T as %q", i18n.T(zspec.CodeInvalidType, nil), v, t.String()),
		"type", t.String(), "got", rv.Type().String())}
}

func convertToInt(t reflect.Type, rv reflect.Value, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	out := reflect.New(t).Elem()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if out.OverflowInt(i) {
			return reflect.Value{}, overflowIssue(t, rv, at)
		}
		out.SetInt(i)
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
			return reflect.Value{}, overflowIssue(t, rv, at)
		}
		out.SetInt(int64(u))
		return out, nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.Trunc(f) != f {
			return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
				fmt.Sprintf("fractional literal %v for integer field of type %q", f, t.String()),
				"type", t.String(), "got", f)}
		}
		if f < math.MinInt64 || f > math.MaxInt64 || out.OverflowInt(int64(f)) {
			return reflect.Value{}, overflowIssue(t, rv, at)
		}
		out.SetInt(int64(f))
		return out, nil
	}
	return reflect.Value{}, notNumeric(t, rv, at)
}

func convertToUint(t reflect.Type, rv reflect.Value, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	out := reflect.New(t).Elem()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < 0 || out.OverflowUint(uint64(i)) {
			return reflect.Value{}, overflowIssue(t, rv, at)
		}
		out.SetUint(uint64(i))
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if out.OverflowUint(u) {
			return reflect.Value{}, overflowIssue(t, rv, at)
		}
		out.SetUint(u)
		return out, nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.Trunc(f) != f {
			return reflect.Value{}, zspec.Issues{at.Issue(zspec.CodeInvalidType,
				fmt.Sprintf("fractional literal %v for integer field of type %q", f, t.String()),
				"type", t.String(), "got", f)}
		}
		if f < 0 || f > math.MaxUint64 || out.OverflowUint(uint64(f)) {
			return reflect.Value{}, overflowIssue(t, rv, at)
		}
		out.SetUint(uint64(f))
		return out, nil
	}
	return reflect.Value{}, notNumeric(t, rv, at)
}

func convertToFloat(t reflect.Type, rv reflect.Value, at zspec.PathRef) (reflect.Value, zspec.Issues) {
	out := reflect.New(t).Elem()
	var f float64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f = rv.Float()
	default:
		return reflect.Value{}, notNumeric(t, rv, at)
	}
	if out.OverflowFloat(f) {
		return reflect.Value{}, overflowIssue(t, rv, at)
	}
	out.SetFloat(f)
	return out, nil
}

func overflowIssue(t reflect.Type, rv reflect.Value, at zspec.PathRef) zspec.Issues {
	return zspec.Issues{at.Issue(zspec.CodeOverflow,
		fmt.Sprintf("%s: %v does not fit in %q", i18n.T(zspec.CodeOverflow, nil), rv.Interface(), t.String()),
		"type", t.String(), "got", rv.Interface())}
}

func notNumeric(t reflect.Type, rv reflect.Value, at zspec.PathRef) zspec.Issues {
	return zspec.Issues{at.Issue(zspec.CodeInvalidType,
		fmt.Sprintf("%s: cannot use %s as %q", i18n.T(zspec.CodeInvalidType, nil), rv.Type().String(), t.String()),
		"type", t.String(), "got", rv.Type().String())}
}
