package main

import (
	"errors"
	"testing"

	"github.com/unityscan/depgraph/internal/assets"
)

func TestExitCodeForWrappedCLIError(t *testing.T) {
	base := errors.New("boom")
	err := newCLIError(exitNotFound, base)

	if got := exitCodeFor(err); got != exitNotFound {
		t.Fatalf("exitCodeFor() = %d, want %d", got, exitNotFound)
	}
	if got := exitCodeFor(base); got != exitIO {
		t.Fatalf("exitCodeFor(plain error) = %d, want default %d", got, exitIO)
	}
	if got := exitCodeFor(nil); got != exitIO {
		t.Fatalf("exitCodeFor(nil) = %d, want default %d", got, exitIO)
	}
}

func TestNewCLIErrorNilPassthrough(t *testing.T) {
	if err := newCLIError(exitNotFound, nil); err != nil {
		t.Fatalf("newCLIError(code, nil) = %v, want nil", err)
	}
}

func TestGroupEdgesBySource(t *testing.T) {
	edges := []assets.Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "c"},
		{Source: "b", Target: "c"},
	}
	grouped := groupEdgesBySource(edges)

	if len(grouped["a"]) != 2 {
		t.Errorf("grouped[a] has %d edges, want 2", len(grouped["a"]))
	}
	if len(grouped["b"]) != 1 {
		t.Errorf("grouped[b] has %d edges, want 1", len(grouped["b"]))
	}
}
