// Package zspec provides:
//
// - Typed test-data construction from sparse Description trees (Define/Variant/Create)
// - A stable error model via Issues (JSON Pointer, code, message)
// - Eager, registration-time validation of every description layer against the
//   target type's shape (unknown fields and union tags surface before any test runs)
// - Layered defaults with deep partial merge and strict precedence
//   (call-site overlay > variant overlays > base defaults > struct-tag default)
//
// Design policy:
// - Keep only public vocabulary in the root package; put the engine under internal/.
// - Place the generic template API under factory/ and the sequence resolver under seq/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	tpl := factory.MustDefine[User](zspec.Desc{
//		"id":   zspec.Auto(),
//		"name": "default name",
//	})
//	admin := tpl.MustVariant(zspec.Desc{"role": "admin"})
//	u := admin.MustCreate(zspec.Desc{"name": "alice"})
package zspec
