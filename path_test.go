package zspec_test

import (
	"testing"

	zspec "github.com/apotema/zspec"
)

func TestPathRef_PointerBuilding(t *testing.T) {
	p := zspec.Root().Field("enemies").Index(2).Field("pos")
	if got := p.Pointer(); got != "/enemies/2/pos" {
		t.Fatalf("unexpected pointer %q", got)
	}
	if got := zspec.Root().Pointer(); got != "/" {
		t.Fatalf("root pointer should be /, got %q", got)
	}
}

func TestPathRef_EscapesPerRFC6901(t *testing.T) {
	p := zspec.Root().Field("a/b").Field("c~d")
	if got := p.Pointer(); got != "/a~1b/c~0d" {
		t.Fatalf("unexpected escaped pointer %q", got)
	}
}

func TestPathRef_At_RoundTrips(t *testing.T) {
	if got := zspec.At("/user/name").Pointer(); got != "/user/name" {
		t.Fatalf("unexpected pointer %q", got)
	}
	if got := zspec.At("").Pointer(); got != "/" {
		t.Fatalf("empty path should parse to root, got %q", got)
	}
}

func TestPathRef_At_RoundTripsEscapedKeys(t *testing.T) {
	p := zspec.Root().Field("a/b").Field("c~d")
	back := zspec.At(p.Pointer())
	if got := back.Pointer(); got != p.Pointer() {
		t.Fatalf("pointer did not round-trip: %q vs %q", got, p.Pointer())
	}
	// the parsed ref keeps building on the same escaped segments
	if got := back.Field("x").Pointer(); got != "/a~1b/c~0d/x" {
		t.Fatalf("unexpected pointer after extending parsed ref: %q", got)
	}
}

func TestPathRef_IssueCarriesParams(t *testing.T) {
	it := zspec.Root().Field("age").Issue(zspec.CodeOverflow, "too big", "got", 300, "type", "int8")
	if it.Path != "/age" || it.Code != zspec.CodeOverflow {
		t.Fatalf("unexpected issue %+v", it)
	}
	if it.Params["got"] != 300 || it.Params["type"] != "int8" {
		t.Fatalf("params not captured: %+v", it.Params)
	}
}
