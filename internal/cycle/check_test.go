package cycle

import (
	"testing"

	"github.com/unityscan/depgraph/internal/assets"
)

func TestReachabilityCheckerRejectsSelfLoop(t *testing.T) {
	g := newFakeGraph()
	checker := NewReachabilityChecker(g)

	introduces, err := checker([]assets.Edge{{Source: "a", Target: "a"}})
	if err != nil {
		t.Fatalf("checker: %v", err)
	}
	if !introduces {
		t.Error("expected a self-loop edge to be reported as cycle-introducing")
	}
}

func TestReachabilityCheckerRejectsBackEdge(t *testing.T) {
	g := newFakeGraph()
	g.addEdge("a", "b", assets.StrengthStrong)
	g.addEdge("b", "c", assets.StrengthStrong)
	checker := NewReachabilityChecker(g)

	introduces, err := checker([]assets.Edge{{Source: "c", Target: "a"}})
	if err != nil {
		t.Fatalf("checker: %v", err)
	}
	if !introduces {
		t.Error("expected c->a to be reported as cycle-introducing since a already reaches c")
	}
}

func TestReachabilityCheckerAllowsAcyclicAddition(t *testing.T) {
	g := newFakeGraph()
	g.addEdge("a", "b", assets.StrengthStrong)
	checker := NewReachabilityChecker(g)

	introduces, err := checker([]assets.Edge{{Source: "a", Target: "c"}})
	if err != nil {
		t.Fatalf("checker: %v", err)
	}
	if introduces {
		t.Error("expected a->c to be allowed; it introduces no cycle")
	}
}
