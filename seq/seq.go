// Package seq provides the stock resolver for Generated markers: an
// auto-incrementing counter per field. Counters are keyed by the target
// type and field path, never by a hash, so two unrelated fields can never
// alias onto the same counter.
package seq

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"

	zspec "github.com/apotema/zspec"
)

// Counter resolves Generated markers to sequence values. The zero value is
// ready to use and safe for concurrent use.
type Counter struct {
	counters sync.Map // request key -> *atomic.Int64
}

// New returns an empty counter set. Tests that need deterministic sequences
// should use their own Counter (or Reset the shared one) per test.
func New() *Counter { return &Counter{} }

// Default is the process-wide counter set used by templates that do not
// inject their own resolver.
var Default = New()

// Next returns the next value for key, starting at 1.
func (c *Counter) Next(key string) int64 {
	n, ok := c.counters.Load(key)
	if !ok {
		n, _ = c.counters.LoadOrStore(key, new(atomic.Int64))
	}
	return n.(*atomic.Int64).Add(1)
}

// Reset drops every counter so sequences restart at 1.
func (c *Counter) Reset() {
	c.counters.Clear()
}

// Resolve implements zspec.Resolver. Integer and float targets receive the
// raw sequence value; string targets receive the decimal text, or the
// request's format applied to the value when one was declared.
func (c *Counter) Resolve(_ context.Context, req zspec.ResolveRequest) (any, error) {
	t := req.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, fmt.Errorf("seq: request carries no target type")
	}
	n := c.Next(req.Key())
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return n, nil
	case reflect.Float32, reflect.Float64:
		return float64(n), nil
	case reflect.String:
		if req.Format != "" {
			return fmt.Sprintf(req.Format, n), nil
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return nil, fmt.Errorf("seq: cannot generate a value of type %q", t.String())
	}
}
