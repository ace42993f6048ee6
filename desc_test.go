package zspec_test

import (
	"testing"

	json "github.com/goccy/go-json"

	zspec "github.com/apotema/zspec"
)

func TestDescFromJSON_PreservesIntegersAndNesting(t *testing.T) {
	d, err := zspec.DescFromJSON([]byte(`{"id": 1, "user": {"name": "alice"}, "tags": ["a", "b"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := d["id"].(json.Number); !ok || n.String() != "1" {
		t.Fatalf("expected id to stay a json.Number, got %T %v", d["id"], d["id"])
	}
	nested, ok := d["user"].(zspec.Desc)
	if !ok || nested["name"] != "alice" {
		t.Fatalf("expected nested Desc, got %T %v", d["user"], d["user"])
	}
	tup, ok := d["tags"].(zspec.Tuple)
	if !ok || len(tup) != 2 {
		t.Fatalf("expected Tuple of 2, got %T %v", d["tags"], d["tags"])
	}
}

func TestDescFromJSON_BadInput(t *testing.T) {
	_, err := zspec.DescFromJSON([]byte(`{"id": `))
	iss, ok := zspec.AsIssues(err)
	if !ok || iss[0].Code != zspec.CodeParseError {
		t.Fatalf("expected parse_error issues, got %v", err)
	}
}

func TestDescFromYAML_NativeScalars(t *testing.T) {
	d, err := zspec.DescFromYAML([]byte("id: 1\nactive: true\nuser:\n  name: alice\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d["id"] != 1 || d["active"] != true {
		t.Fatalf("expected native YAML scalars, got %v", d)
	}
	if nested, ok := d["user"].(zspec.Desc); !ok || nested["name"] != "alice" {
		t.Fatalf("expected nested Desc, got %T", d["user"])
	}
}

func TestDesc_CloneDoesNotAlias(t *testing.T) {
	orig := zspec.Desc{
		"user": zspec.Desc{"name": "alice"},
		"tags": zspec.Tuple{"a"},
	}
	cp := orig.Clone()
	cp["user"].(zspec.Desc)["name"] = "bob"
	cp["tags"].(zspec.Tuple)[0] = "z"
	if orig["user"].(zspec.Desc)["name"] != "alice" {
		t.Fatalf("clone aliases nested desc")
	}
	if orig["tags"].(zspec.Tuple)[0] != "a" {
		t.Fatalf("clone aliases nested tuple")
	}
}

func TestDesc_CloneNil(t *testing.T) {
	var d zspec.Desc
	if d.Clone() != nil {
		t.Fatalf("nil desc must clone to nil")
	}
}
