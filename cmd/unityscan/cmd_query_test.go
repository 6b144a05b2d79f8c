package main

import (
	"testing"

	"github.com/unityscan/depgraph/internal/assets"
	"github.com/unityscan/depgraph/internal/graph"
)

func TestResolveTargetAcceptsGUIDOrPath(t *testing.T) {
	store := graph.NewStore()
	store.UpsertNode(&assets.Node{
		GUID:   "11111111111111111111111111111111",
		Path:   "Assets/Foo.prefab",
		Kind:   assets.KindPrefab,
		Active: true,
	})
	a := &app{store: store}

	guid, err := resolveTarget(a, "Assets/Foo.prefab")
	if err != nil {
		t.Fatalf("resolveTarget(path) error: %v", err)
	}
	if guid != "11111111111111111111111111111111" {
		t.Errorf("resolveTarget(path) = %s, want the upserted guid", guid)
	}

	guid2, err := resolveTarget(a, guid)
	if err != nil {
		t.Fatalf("resolveTarget(guid) error: %v", err)
	}
	if guid2 != guid {
		t.Errorf("resolveTarget(guid) = %s, want %s", guid2, guid)
	}

	if _, err := resolveTarget(a, "Assets/Missing.prefab"); err == nil {
		t.Error("resolveTarget(unknown path) should have failed")
	}
	if _, err := resolveTarget(a, "deadbeefdeadbeefdeadbeefdeadbeef"); err == nil {
		t.Error("resolveTarget(unknown guid) should have failed")
	}
}
