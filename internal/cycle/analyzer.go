// Package cycle implements CycleAnalyzer (spec §4.7): Tarjan's strongly
// connected components algorithm to locate cyclic regions of the
// dependency graph, followed by Johnson's algorithm to enumerate their
// simple cycles, classification, and severity scoring.
//
// Grounded in the teacher's graph-theoretic style of traversal found in
// recera-onyx-coding-agent's analyzer package (iterative, explicit-stack
// DFS rather than recursive, to avoid stack depth issues on large graphs);
// the SCC/Johnson algorithms themselves are standard graph theory with no
// direct teacher analog, implemented idiomatically in Go.
package cycle

import (
	"fmt"
	"sort"
	"time"

	"github.com/unityscan/depgraph/internal/assets"
)

// analysisAlgorithm names the algorithm combination Report.Algorithm
// records, for diffing reports produced by future alternate strategies.
const analysisAlgorithm = "tarjan+johnson"

// incrementalAffectedThreshold is the fraction of the graph's nodes past
// which AnalyzeIncremental gives up on a targeted re-analysis and falls
// back to a full Analyze (spec §4.7's incremental mode).
const incrementalAffectedThreshold = 0.10

// Kind classifies a discovered cycle by its length (the number of distinct
// nodes it passes through), per spec §4.7.
type Kind string

const (
	KindSelfLoop Kind = "self_loop"     // length 1
	KindSimple   Kind = "simple_cycle"  // length 2-3
	KindComplex  Kind = "complex_cycle" // length 4-8, or an SCC too big to enumerate in full
	KindNested   Kind = "nested_cycle"  // length >= 9
)

// classifyKind buckets a cycle by its node count, per spec §4.7's
// self_loop/simple_cycle/complex_cycle/nested_cycle length ranges.
func classifyKind(length int) Kind {
	switch {
	case length <= 1:
		return KindSelfLoop
	case length <= 3:
		return KindSimple
	case length <= 8:
		return KindComplex
	default:
		return KindNested
	}
}

// Severity is the ordered escalation level spec §4.7 assigns a cycle, from
// its base length bucket plus strength/node-kind escalations.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String renders the severity using the uppercase names the spec and CLI
// output use.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "LOW"
	}
}

// MarshalJSON renders Severity as its string name rather than its ordinal.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func baseSeverity(length int) Severity {
	switch {
	case length <= 1:
		return SeverityLow
	case length <= 3:
		return SeverityMedium
	case length <= 7:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

func (s Severity) escalate(levels int) Severity {
	s += Severity(levels)
	if s > SeverityCritical {
		return SeverityCritical
	}
	return s
}

// Cycle is one reported cyclic path through the graph.
type Cycle struct {
	Nodes    []string `json:"nodes"` // in order, Nodes[0] repeats as the closing node; a truncated SCC lists its members in SCC order
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
}

// length is the number of distinct nodes in the cycle (Nodes minus its
// repeated closing node).
func (c Cycle) length() int {
	if len(c.Nodes) == 0 {
		return 0
	}
	return len(c.Nodes) - 1
}

// distinctNodes returns c's nodes with the repeated closing node (and any
// other duplicates) collapsed, preserving first-seen order.
func (c Cycle) distinctNodes() []string {
	seen := make(map[string]bool, len(c.Nodes))
	out := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// HotspotNode is an asset appearing in two or more reported cycles, per
// spec §4.7's report structure.
type HotspotNode struct {
	GUID  string `json:"guid"`
	Count int    `json:"count"`
}

// Report is the outcome of a full or incremental cycle analysis. Field
// order is fixed and every field has a json tag so Report.Cycles and its
// derived summary fields serialize in a stable key order, per spec §4.7
// ("must be serializable to JSON in a stable key order for diffing across
// runs").
type Report struct {
	Cycles            []Cycle        `json:"cycles"`
	CountsByType      map[string]int `json:"counts_by_type"`
	CountsBySeverity  map[string]int `json:"counts_by_severity"`
	AffectedNodes     []string       `json:"affected_nodes"`
	HotspotNodes      []HotspotNode  `json:"hotspot_nodes"`
	LargestCycle      *Cycle         `json:"largest_cycle,omitempty"`
	MostCriticalCycle *Cycle         `json:"most_critical_cycle,omitempty"`
	AnalysisTime      time.Duration  `json:"analysis_time"`
	Algorithm         string         `json:"algorithm"`
	AnalyzedAt        time.Time      `json:"analyzed_at"`
	Truncated         bool           `json:"truncated"` // true if some SCC exceeded MaxCycleLength's enumeration budget
}

// Graph is the minimal read view CycleAnalyzer needs; graph.Store
// satisfies it via the adapter in adapter.go.
type Graph interface {
	AllNodeGUIDs() []string
	OutNeighbors(guid string) []assets.Edge
	NodeKind(guid string) (assets.Kind, bool)
}

// Analyzer runs SCC decomposition and simple-cycle enumeration over a
// Graph.
type Analyzer struct {
	g              Graph
	maxCycleLength int
}

// NewAnalyzer builds an Analyzer. maxCycleLength caps how long an
// individual simple cycle may be before enumeration for its SCC is
// abandoned in favor of reporting it as one KindComplex cycle (spec §4.7,
// default 20).
func NewAnalyzer(g Graph, maxCycleLength int) *Analyzer {
	if maxCycleLength <= 0 {
		maxCycleLength = 20
	}
	return &Analyzer{g: g, maxCycleLength: maxCycleLength}
}

// Analyze runs a full analysis over the entire graph.
func (a *Analyzer) Analyze() Report {
	start := time.Now()
	sccs := a.tarjanSCCs()
	return a.finishReport(a.reportFromSCCs(sccs), start)
}

// AnalyzeIncremental re-analyzes only the SCCs touched by changedGUIDs
// since the last full analysis, per spec §4.7's incremental mode: the
// affected region is the union of changedGUIDs and their one-hop
// successors, widened to whichever full SCCs they fall in. If that region
// covers more than incrementalAffectedThreshold of the graph, it falls
// back to a full Analyze instead.
func (a *Analyzer) AnalyzeIncremental(changedGUIDs []string) Report {
	start := time.Now()
	sccs := a.tarjanSCCs()

	allGUIDs := a.g.AllNodeGUIDs()
	if len(allGUIDs) == 0 || len(changedGUIDs) == 0 {
		return a.finishReport(a.reportFromSCCs(sccs), start)
	}

	affected := a.oneHopExpansion(changedGUIDs)
	region := make(map[string]bool, len(affected))
	for guid := range affected {
		region[guid] = true
	}
	var relevant [][]string
	for _, scc := range sccs {
		if sccIntersects(scc, affected) {
			relevant = append(relevant, scc)
			for _, n := range scc {
				region[n] = true
			}
		}
	}
	if float64(len(region))/float64(len(allGUIDs)) > incrementalAffectedThreshold {
		return a.finishReport(a.reportFromSCCs(sccs), start)
	}
	return a.finishReport(a.reportFromSCCs(relevant), start)
}

// oneHopExpansion returns changed plus every node directly reachable from
// it in one hop — the "changes plus a one-hop expansion" region spec
// §4.7's incremental mode scopes re-analysis to.
func (a *Analyzer) oneHopExpansion(changed []string) map[string]bool {
	affected := make(map[string]bool, len(changed)*2)
	for _, guid := range changed {
		affected[guid] = true
	}
	for _, guid := range changed {
		for _, e := range a.g.OutNeighbors(guid) {
			affected[e.Target] = true
		}
	}
	return affected
}

func sccIntersects(scc []string, affected map[string]bool) bool {
	for _, n := range scc {
		if affected[n] {
			return true
		}
	}
	return false
}

// finishReport computes Report's summary fields (counts, hotspots,
// largest/most-critical cycle, timing) over the cycles reportFromSCCs
// already found.
func (a *Analyzer) finishReport(report Report, start time.Time) Report {
	report.AnalysisTime = time.Since(start)
	report.Algorithm = analysisAlgorithm
	report.AnalyzedAt = time.Now()

	report.CountsByType = map[string]int{}
	report.CountsBySeverity = map[string]int{}
	nodeCounts := map[string]int{}
	affectedSet := map[string]bool{}

	for i := range report.Cycles {
		c := &report.Cycles[i]
		report.CountsByType[string(c.Kind)]++
		report.CountsBySeverity[c.Severity.String()]++
		for _, n := range c.distinctNodes() {
			affectedSet[n] = true
			nodeCounts[n]++
		}

		if report.LargestCycle == nil || c.length() > report.LargestCycle.length() {
			cc := *c
			report.LargestCycle = &cc
		}
		if report.MostCriticalCycle == nil ||
			c.Severity > report.MostCriticalCycle.Severity ||
			(c.Severity == report.MostCriticalCycle.Severity && c.length() > report.MostCriticalCycle.length()) {
			cc := *c
			report.MostCriticalCycle = &cc
		}
	}

	for _, guid := range a.g.AllNodeGUIDs() {
		if affectedSet[guid] {
			report.AffectedNodes = append(report.AffectedNodes, guid)
		}
	}
	sort.Strings(report.AffectedNodes)

	for guid, count := range nodeCounts {
		if count >= 2 {
			report.HotspotNodes = append(report.HotspotNodes, HotspotNode{GUID: guid, Count: count})
		}
	}
	sort.Slice(report.HotspotNodes, func(i, j int) bool {
		if report.HotspotNodes[i].Count != report.HotspotNodes[j].Count {
			return report.HotspotNodes[i].Count > report.HotspotNodes[j].Count
		}
		return report.HotspotNodes[i].GUID < report.HotspotNodes[j].GUID
	})

	return report
}

func (a *Analyzer) reportFromSCCs(sccs [][]string) Report {
	var report Report
	for _, scc := range sccs {
		if len(scc) == 1 {
			node := scc[0]
			if a.hasSelfLoop(node) {
				report.Cycles = append(report.Cycles, Cycle{
					Nodes:    []string{node, node},
					Kind:     KindSelfLoop,
					Severity: a.severity([]string{node, node}),
				})
			}
			continue
		}

		cycles, truncated := a.johnsonSimpleCycles(scc)
		if truncated {
			closed := append(append([]string(nil), scc...), scc[0])
			report.Truncated = true
			report.Cycles = append(report.Cycles, Cycle{
				Nodes:    closed,
				Kind:     KindComplex,
				Severity: a.severity(closed),
			})
			continue
		}

		for _, c := range cycles {
			report.Cycles = append(report.Cycles, Cycle{
				Nodes:    c,
				Kind:     classifyKind(len(c) - 1),
				Severity: a.severity(c),
			})
		}
	}

	sort.Slice(report.Cycles, func(i, j int) bool {
		return report.Cycles[i].Severity > report.Cycles[j].Severity
	})
	return report
}

func (a *Analyzer) hasSelfLoop(guid string) bool {
	for _, e := range a.g.OutNeighbors(guid) {
		if e.Target == guid {
			return true
		}
	}
	return false
}

// severity scores a cycle per spec §4.7: a base level from its length, with
// a +1 escalation for any critical-or-above edge and a further +1 for any
// scene/prefab/script node in the cycle, capped at CRITICAL.
func (a *Analyzer) severity(nodes []string) Severity {
	length := len(nodes) - 1
	if length < 0 {
		length = 0
	}
	sev := baseSeverity(length)

	hasCriticalEdge := false
	for i := 0; i+1 < len(nodes); i++ {
		for _, e := range a.g.OutNeighbors(nodes[i]) {
			if e.Target == nodes[i+1] && e.Strength >= assets.StrengthCritical {
				hasCriticalEdge = true
			}
		}
	}
	if hasCriticalEdge {
		sev = sev.escalate(1)
	}

	hasLoadBearingNode := false
	for _, n := range nodes {
		kind, ok := a.g.NodeKind(n)
		if !ok {
			continue
		}
		if kind == assets.KindScene || kind == assets.KindPrefab || kind == assets.KindScript {
			hasLoadBearingNode = true
			break
		}
	}
	if hasLoadBearingNode {
		sev = sev.escalate(1)
	}

	return sev
}

// SuggestBreakEdge picks the weakest edge in the cycle as the recommended
// edge to remove to break it, per spec §4.7.
func (a *Analyzer) SuggestBreakEdge(c Cycle) (assets.Edge, bool) {
	var weakest assets.Edge
	found := false
	for i := 0; i+1 < len(c.Nodes); i++ {
		for _, e := range a.g.OutNeighbors(c.Nodes[i]) {
			if e.Target != c.Nodes[i+1] {
				continue
			}
			if !found || e.Strength < weakest.Strength {
				weakest = e
				found = true
			}
		}
	}
	return weakest, found
}

// String renders a cycle as "a -> b -> c -> a" for CLI and log output.
func (c Cycle) String() string {
	s := ""
	for i, n := range c.Nodes {
		if i > 0 {
			s += " -> "
		}
		s += n
	}
	return fmt.Sprintf("%s [%s, severity=%s]", s, c.Kind, c.Severity)
}
