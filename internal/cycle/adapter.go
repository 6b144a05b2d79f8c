package cycle

import "github.com/unityscan/depgraph/internal/assets"

// StoreView is the subset of graph.Store's API CycleAnalyzer depends on.
// Defined here (rather than importing graph directly) so internal/graph
// can depend on cycle for reject_new_cycles checks without an import cycle.
type StoreView interface {
	AllNodes() []*assets.Node
	OutEdges(guid string) []assets.Edge
	Node(guid string) *assets.Node
}

// storeAdapter adapts a StoreView to the Graph interface Analyzer expects.
type storeAdapter struct {
	store StoreView
}

// NewStoreAdapter wraps store for use with NewAnalyzer.
func NewStoreAdapter(store StoreView) Graph {
	return &storeAdapter{store: store}
}

func (a *storeAdapter) AllNodeGUIDs() []string {
	nodes := a.store.AllNodes()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.GUID
	}
	return out
}

func (a *storeAdapter) OutNeighbors(guid string) []assets.Edge {
	return a.store.OutEdges(guid)
}

// NodeKind reports guid's asset Kind, for CycleAnalyzer's node-kind
// severity escalation (scene/prefab/script).
func (a *storeAdapter) NodeKind(guid string) (assets.Kind, bool) {
	n := a.store.Node(guid)
	if n == nil {
		return "", false
	}
	return n.Kind, true
}
