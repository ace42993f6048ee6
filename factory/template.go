package factory

import (
	"context"
	"reflect"

	zspec "github.com/apotema/zspec"
	"github.com/apotema/zspec/internal/coerce"
	"github.com/apotema/zspec/internal/merge"
	"github.com/apotema/zspec/internal/shape"
	"github.com/apotema/zspec/internal/validate"
	"github.com/apotema/zspec/seq"
)

// Template is a validated stack of description layers bound to a target type.
// Templates are immutable: Variant returns a new template and Create never
// mutates the receiver, so a template is safe to share across goroutines.
type Template[T any] struct {
	sh       *shape.Shape
	layers   []zspec.Desc // lowest precedence first
	resolver zspec.Resolver
}

type options struct {
	resolver zspec.Resolver
}

// Option configures template construction.
type Option func(*options)

// WithResolver injects the resolver invoked for Generated markers. When not
// supplied, templates fall back to the shared seq.Default counter.
func WithResolver(r zspec.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// checkLayer runs both registration-time walks over one description layer:
// the unknown-key report and the structural pass (fixed-array arity, union
// single-tag). Call-site overlays get only the unknown-key walk; their
// structural errors come from the coercer once the layers are merged.
func checkLayer(sh *shape.Shape, d zspec.Desc) zspec.Issues {
	iss := validate.Validate(sh, d, zspec.Root())
	return zspec.AppendIssues(iss, validate.Structure(sh, d, zspec.Root())...)
}

// Define registers a target type with its base defaults. The base description
// is validated against the type's shape here, at definition time; unknown
// fields, wrong-length tuples and malformed union tags never survive to a
// Create call.
func Define[T any](base zspec.Desc, opts ...Option) (*Template[T], error) {
	o := options{resolver: seq.Default}
	for _, opt := range opts {
		opt(&o)
	}
	sh, err := shape.Of(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	if iss := checkLayer(sh, base); len(iss) > 0 {
		return nil, iss
	}
	return &Template[T]{sh: sh, layers: []zspec.Desc{base.Clone()}, resolver: o.resolver}, nil
}

// MustDefine is like Define but panics on error. Intended for package-level
// template variables where a malformed description is a programming error.
func MustDefine[T any](base zspec.Desc, opts ...Option) *Template[T] {
	t, err := Define[T](base, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Variant layers a named overlay on top of the template. The overlay is
// validated immediately; the parent's layers are inherited unchanged, so
// variants chain additively and the most specific layer wins.
func (t *Template[T]) Variant(overlay zspec.Desc) (*Template[T], error) {
	if iss := checkLayer(t.sh, overlay); len(iss) > 0 {
		return nil, iss
	}
	layers := make([]zspec.Desc, 0, len(t.layers)+1)
	layers = append(layers, t.layers...)
	layers = append(layers, overlay.Clone())
	return &Template[T]{sh: t.sh, layers: layers, resolver: t.resolver}, nil
}

// MustVariant is like Variant but panics on error.
func (t *Template[T]) MustVariant(overlay zspec.Desc) *Template[T] {
	v, err := t.Variant(overlay)
	if err != nil {
		panic(err)
	}
	return v
}

// Create builds one instance, applying the optional call-site overlays with
// highest precedence. Every overlay is validated before any field is written.
func (t *Template[T]) Create(overrides ...zspec.Desc) (T, error) {
	return t.CreateCtx(context.Background(), overrides...)
}

// CreateCtx is Create with a caller-supplied context, passed through to the
// resolver for any Generated markers.
func (t *Template[T]) CreateCtx(ctx context.Context, overrides ...zspec.Desc) (T, error) {
	var zero T
	var iss zspec.Issues
	for _, ov := range overrides {
		iss = zspec.AppendIssues(iss, validate.Validate(t.sh, ov, zspec.Root())...)
	}
	if len(iss) > 0 {
		return zero, iss
	}
	layers := make([]zspec.Desc, 0, len(t.layers)+len(overrides))
	layers = append(layers, t.layers...)
	layers = append(layers, overrides...)
	env := coerce.Env{Ctx: ctx, Resolver: t.resolver, Root: t.sh.Type}
	rv, iss := merge.Build(env, t.sh, layers)
	if len(iss) > 0 {
		return zero, iss
	}
	return rv.Interface().(T), nil
}

// MustCreate is like Create but panics on error.
func (t *Template[T]) MustCreate(overrides ...zspec.Desc) T {
	v, err := t.Create(overrides...)
	if err != nil {
		panic(err)
	}
	return v
}
