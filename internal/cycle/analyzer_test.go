package cycle

import (
	"testing"

	"github.com/unityscan/depgraph/internal/assets"
)

// fakeGraph is a plain adjacency-list Graph for testing, independent of
// graph.Store.
type fakeGraph struct {
	adj   map[string][]assets.Edge
	kinds map[string]assets.Kind
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{adj: make(map[string][]assets.Edge), kinds: make(map[string]assets.Kind)}
}

func (g *fakeGraph) setKind(guid string, kind assets.Kind) {
	g.kinds[guid] = kind
}

func (g *fakeGraph) NodeKind(guid string) (assets.Kind, bool) {
	k, ok := g.kinds[guid]
	return k, ok
}

func (g *fakeGraph) addEdge(src, dst string, strength assets.Strength) {
	g.adj[src] = append(g.adj[src], assets.Edge{Source: src, Target: dst, Strength: strength, DepKind: assets.DepKindIndirect, Active: true})
	if _, ok := g.adj[dst]; !ok {
		g.adj[dst] = nil
	}
}

func (g *fakeGraph) AllNodeGUIDs() []string {
	out := make([]string, 0, len(g.adj))
	for n := range g.adj {
		out = append(out, n)
	}
	return out
}

func (g *fakeGraph) OutNeighbors(guid string) []assets.Edge {
	return g.adj[guid]
}

func TestAnalyzeFindsThreeNodeCycle(t *testing.T) {
	g := newFakeGraph()
	g.addEdge("a", "b", assets.StrengthStrong)
	g.addEdge("b", "c", assets.StrengthStrong)
	g.addEdge("c", "a", assets.StrengthStrong)

	analyzer := NewAnalyzer(g, 20)
	report := analyzer.Analyze()

	if len(report.Cycles) != 1 {
		t.Fatalf("expected exactly one cycle, got %+v", report.Cycles)
	}
	if report.Cycles[0].Kind != KindSimple {
		t.Errorf("expected a simple_cycle classification, got %s", report.Cycles[0].Kind)
	}
	if len(report.Cycles[0].Nodes) != 4 { // a, b, c, a
		t.Errorf("expected the cycle to close back on its start node, got %v", report.Cycles[0].Nodes)
	}
}

func TestAnalyzeFindsSelfLoop(t *testing.T) {
	g := newFakeGraph()
	g.addEdge("a", "a", assets.StrengthCritical)

	analyzer := NewAnalyzer(g, 20)
	report := analyzer.Analyze()

	if len(report.Cycles) != 1 || report.Cycles[0].Kind != KindSelfLoop {
		t.Fatalf("expected a single self_loop cycle, got %+v", report.Cycles)
	}
	if report.Cycles[0].Severity != SeverityMedium {
		t.Errorf("expected a critical-strength self loop (base LOW, +1 for the critical edge) to score MEDIUM, got %s", report.Cycles[0].Severity)
	}
}

func TestSeverityEscalatesForCriticalEdgeAndLoadBearingKind(t *testing.T) {
	g := newFakeGraph()
	g.addEdge("a", "b", assets.StrengthMedium)
	g.addEdge("b", "c", assets.StrengthMedium)
	g.addEdge("c", "a", assets.StrengthMedium)
	g.setKind("b", assets.KindScene)

	analyzer := NewAnalyzer(g, 20)
	report := analyzer.Analyze()

	if len(report.Cycles) != 1 {
		t.Fatalf("expected exactly one cycle, got %+v", report.Cycles)
	}
	// base MEDIUM (length 3) + 1 for the scene node in the cycle = HIGH.
	if report.Cycles[0].Severity != SeverityHigh {
		t.Errorf("expected scene-node escalation to raise severity to HIGH, got %s", report.Cycles[0].Severity)
	}
}

func TestAnalyzeThreeNodeCycleSeverityIsMedium(t *testing.T) {
	g := newFakeGraph()
	g.addEdge("a", "b", assets.StrengthStrong)
	g.addEdge("b", "c", assets.StrengthStrong)
	g.addEdge("c", "a", assets.StrengthStrong)

	analyzer := NewAnalyzer(g, 20)
	report := analyzer.Analyze()

	if len(report.Cycles) != 1 {
		t.Fatalf("expected exactly one cycle, got %+v", report.Cycles)
	}
	if report.Cycles[0].Severity != SeverityMedium {
		t.Errorf("expected a length-3 cycle with no critical edge to score MEDIUM, got %s", report.Cycles[0].Severity)
	}
}

func TestAnalyzeRespectsMaxCycleLengthBoundary(t *testing.T) {
	// A cycle of exactly maxCycleLength nodes should be reported in full;
	// one node longer should trip truncation for that SCC.
	build := func(n int) *fakeGraph {
		g := newFakeGraph()
		for i := 0; i < n; i++ {
			from := nodeName(i)
			to := nodeName((i + 1) % n)
			g.addEdge(from, to, assets.StrengthMedium)
		}
		return g
	}

	atLimit := NewAnalyzer(build(20), 20).Analyze()
	if atLimit.Truncated {
		t.Errorf("expected a cycle of exactly max_cycle_length to be fully enumerated, got truncated=true")
	}

	overLimit := NewAnalyzer(build(21), 20).Analyze()
	if !overLimit.Truncated {
		t.Errorf("expected a cycle one node past max_cycle_length to be reported as truncated/complex")
	}
}

func nodeName(i int) string {
	return string(rune('a' + i))
}

func TestAnalyzeReportsSummaryFields(t *testing.T) {
	g := newFakeGraph()
	g.addEdge("a", "b", assets.StrengthStrong)
	g.addEdge("b", "c", assets.StrengthStrong)
	g.addEdge("c", "a", assets.StrengthStrong)
	g.addEdge("b", "d", assets.StrengthStrong)
	g.addEdge("d", "b", assets.StrengthStrong)

	report := NewAnalyzer(g, 20).Analyze()

	if len(report.Cycles) != 2 {
		t.Fatalf("expected two distinct cycles (a-b-c and b-d), got %+v", report.Cycles)
	}
	if report.CountsByType[string(KindSimple)] != 2 {
		t.Errorf("expected both cycles to count as simple_cycle, got %+v", report.CountsByType)
	}
	if report.Algorithm != analysisAlgorithm {
		t.Errorf("expected algorithm %q, got %q", analysisAlgorithm, report.Algorithm)
	}
	if report.AnalyzedAt.IsZero() {
		t.Error("expected analyzed_at to be set")
	}
	if report.LargestCycle == nil || report.MostCriticalCycle == nil {
		t.Fatal("expected largest_cycle and most_critical_cycle to be populated")
	}

	var foundB bool
	for _, h := range report.HotspotNodes {
		if h.GUID == "b" {
			foundB = true
			if h.Count != 2 {
				t.Errorf("expected b to appear in 2 cycles, got %d", h.Count)
			}
		}
	}
	if !foundB {
		t.Errorf("expected b (shared by both cycles) to be a hotspot node, got %+v", report.HotspotNodes)
	}
}

func TestAnalyzeIncrementalSkipsUnaffectedSCCs(t *testing.T) {
	g := newFakeGraph()
	g.addEdge("a", "b", assets.StrengthStrong)
	g.addEdge("b", "a", assets.StrengthStrong)
	g.addEdge("x", "y", assets.StrengthStrong)
	g.addEdge("y", "x", assets.StrengthStrong)
	// Pad the graph with an acyclic chain so the x-y region (2 nodes) stays
	// within the 10% incremental threshold.
	for i := 0; i < 16; i++ {
		g.addEdge("n"+nodeName(i), "n"+nodeName(i+1), assets.StrengthStrong)
	}

	analyzer := NewAnalyzer(g, 20)
	report := analyzer.AnalyzeIncremental([]string{"x"})

	if len(report.Cycles) != 1 {
		t.Fatalf("expected only the x-y cycle to be re-analyzed, got %+v", report.Cycles)
	}
	for _, n := range report.Cycles[0].Nodes {
		if n == "a" || n == "b" {
			t.Fatalf("expected the unaffected a-b cycle to be skipped, got %+v", report.Cycles)
		}
	}
}

func TestAnalyzeIncrementalFallsBackToFullAnalysisOverThreshold(t *testing.T) {
	g := newFakeGraph()
	g.addEdge("a", "b", assets.StrengthStrong)
	g.addEdge("b", "a", assets.StrengthStrong)
	g.addEdge("x", "y", assets.StrengthStrong)
	g.addEdge("y", "x", assets.StrengthStrong)

	analyzer := NewAnalyzer(g, 20)
	// All four nodes changed: the affected region is the whole graph, well
	// past the 10% incremental threshold, so both cycles must come back.
	report := analyzer.AnalyzeIncremental([]string{"a", "b", "x", "y"})

	if len(report.Cycles) != 2 {
		t.Fatalf("expected a full fallback analysis to find both cycles, got %+v", report.Cycles)
	}
}
