package zspec

import (
	"context"
	"reflect"
)

// Union marks a struct as a tagged union when embedded. Every other exported
// field of the struct must be a pointer to that variant's payload type, and
// construction sets exactly one of them. A payload-less variant uses *Unit.
//
//	type Shape struct {
//		zspec.Union
//		Circle    *Circle
//		Rectangle *Rectangle
//	}
type Union struct{}

// Unit is the payload type for union variants that carry no data.
type Unit struct{}

// Generated is the resolver marker: a description value meaning "compute this
// field dynamically at each construction". The merge engine never treats it as
// literal data; it hands it to the configured Resolver together with the
// field's concrete type and path.
type Generated struct {
	// Format optionally carries a fmt pattern with a single %d verb for
	// string-typed targets (e.g. "user-%d").
	Format string
}

// Auto returns a resolver marker for the enclosing field's type.
func Auto() Generated { return Generated{} }

// AutoFmt returns a resolver marker producing a formatted string.
func AutoFmt(format string) Generated { return Generated{Format: format} }

// ResolveRequest identifies one dynamically resolved field.
type ResolveRequest struct {
	// Type is the concrete Go type the resolved value must coerce into.
	Type reflect.Type
	// Root is the template's target type; Root+Path form a collision-free
	// counter key for sequence-style resolvers.
	Root reflect.Type
	// Path is the JSON Pointer of the field within the root type.
	Path string
	// Format is the marker's format pattern, empty unless AutoFmt was used.
	Format string
}

// Key returns the collision-free identifier for this request, suitable for
// keying per-field counters.
func (r ResolveRequest) Key() string {
	root := "?"
	if r.Root != nil {
		root = r.Root.String()
	}
	return root + "#" + r.Path
}

// Resolver produces concrete values for Generated markers at construction
// time. Implementations must be safe for concurrent use when templates are
// shared across goroutines.
type Resolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (any, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, req ResolveRequest) (any, error)

func (f ResolverFunc) Resolve(ctx context.Context, req ResolveRequest) (any, error) {
	return f(ctx, req)
}
