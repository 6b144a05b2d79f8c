package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/unityscan/depgraph/internal/assets"
)

// QueryOptions parameterizes the traversal queries below. Zero-value
// MaxDepth means unbounded.
type QueryOptions struct {
	MaxDepth    int
	MinStrength assets.Strength
	DepKinds    []assets.DepKind // empty means all kinds
}

func (o QueryOptions) cacheKey(op, guid string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%s|%d|%d|", op, guid, o.MaxDepth, o.MinStrength)
	kinds := append([]assets.DepKind(nil), o.DepKinds...)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		sb.WriteString(string(k))
		sb.WriteByte(',')
	}
	return sb.String()
}

func (o QueryOptions) allows(e assets.Edge) bool {
	if e.Strength < o.MinStrength {
		return false
	}
	if len(o.DepKinds) == 0 {
		return true
	}
	for _, k := range o.DepKinds {
		if k == e.DepKind {
			return true
		}
	}
	return false
}

// Engine answers the read-only traversal and validation queries of spec
// §4.6, backed by a small LRU result cache keyed on (operation, guid,
// normalized options). Any mutation to the Store must call Invalidate.
type Engine struct {
	store *Store
	cache *lru.Cache[string, any]
	mu    sync.Mutex
}

// NewEngine builds a QueryEngine over store with a cache holding up to
// cacheSize entries.
func NewEngine(store *Store, cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	c, err := lru.New[string, any](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to construct query cache: %w", err)
	}
	return &Engine{store: store, cache: c}, nil
}

// Invalidate drops every cached result. Called after any Store mutation,
// per spec §4.6 ("wholesale invalidation on graph mutation", see
// DESIGN.md Open Question decisions).
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Purge()
}

func (e *Engine) cached(key string, compute func() any) any {
	e.mu.Lock()
	if v, ok := e.cache.Get(key); ok {
		e.mu.Unlock()
		return v
	}
	e.mu.Unlock()

	v := compute()

	e.mu.Lock()
	e.cache.Add(key, v)
	e.mu.Unlock()
	return v
}

// DirectDeps returns guid's immediate outgoing, filtered dependencies.
func (e *Engine) DirectDeps(guid string, opts QueryOptions) []assets.Edge {
	key := opts.cacheKey("direct_deps", guid)
	return e.cached(key, func() any {
		return filterEdges(e.store.OutEdges(guid), opts)
	}).([]assets.Edge)
}

// DirectRefs returns guid's immediate incoming, filtered references — the
// dual of DirectDeps (spec §8's duality invariant).
func (e *Engine) DirectRefs(guid string, opts QueryOptions) []assets.Edge {
	key := opts.cacheKey("direct_refs", guid)
	return e.cached(key, func() any {
		return filterEdges(e.store.InEdges(guid), opts)
	}).([]assets.Edge)
}

// AllDeps performs a bounded BFS over outgoing edges, returning every guid
// reachable from guid (excluding guid itself).
func (e *Engine) AllDeps(guid string, opts QueryOptions) []string {
	key := opts.cacheKey("all_deps", guid)
	return e.cached(key, func() any {
		return e.bfs(guid, opts, e.store.OutEdges)
	}).([]string)
}

// AllRefs is AllDeps' dual over incoming edges.
func (e *Engine) AllRefs(guid string, opts QueryOptions) []string {
	key := opts.cacheKey("all_refs", guid)
	return e.cached(key, func() any {
		return e.bfs(guid, opts, e.store.InEdges)
	}).([]string)
}

func (e *Engine) bfs(start string, opts QueryOptions, neighbors func(string) []assets.Edge) []string {
	visited := map[string]int{start: 0}
	queue := []string{start}
	var out []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := visited[cur]
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			continue
		}
		for _, edge := range filterEdges(neighbors(cur), opts) {
			next := otherEnd(edge, cur)
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = depth + 1
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	sort.Strings(out)
	return out
}

func otherEnd(e assets.Edge, known string) string {
	if e.Source == known {
		return e.Target
	}
	return e.Source
}

// Path finds one shortest dependency path from `from` to `to` following
// outgoing edges, or false if none exists.
func (e *Engine) Path(from, to string, opts QueryOptions) ([]string, bool) {
	if from == to {
		return []string{from}, true
	}
	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edge := range filterEdges(e.store.OutEdges(cur), opts) {
			if _, seen := parent[edge.Target]; seen {
				continue
			}
			parent[edge.Target] = cur
			if edge.Target == to {
				return reconstructPath(parent, from, to), true
			}
			queue = append(queue, edge.Target)
		}
	}
	return nil, false
}

func reconstructPath(parent map[string]string, from, to string) []string {
	var path []string
	for cur := to; ; cur = parent[cur] {
		path = append([]string{cur}, path...)
		if cur == from {
			break
		}
	}
	return path
}

// ImpactOp names the operation whose blast radius Impact computes, each
// with its own reverse-closure filter per spec §4.6.
type ImpactOp string

const (
	ImpactDelete ImpactOp = "delete" // every transitive referrer
	ImpactModify ImpactOp = "modify" // referrers holding an edge strength >= strong
	ImpactMove   ImpactOp = "move"   // referrers holding a path_reference edge
)

// ImpactSeverity grades how many nodes an Impact call affects.
type ImpactSeverity string

const (
	ImpactHigh   ImpactSeverity = "HIGH"
	ImpactMedium ImpactSeverity = "MEDIUM"
	ImpactLow    ImpactSeverity = "LOW"
)

// ImpactResult is impact(g, op)'s output.
type ImpactResult struct {
	Affected []string
	Severity ImpactSeverity
}

// Impact reports every node whose correctness depends (transitively) on
// guid, filtered by what op would actually disturb: delete breaks any
// referrer, modify only breaks referrers holding a strength >= strong
// edge, move only breaks referrers holding a path_reference edge (spec
// §4.6). opts.MaxDepth still bounds the traversal; its MinStrength/DepKinds
// are overridden by op's own filter.
func (e *Engine) Impact(guid string, op ImpactOp, opts QueryOptions) ImpactResult {
	filtered := opts
	switch op {
	case ImpactModify:
		filtered.MinStrength = assets.StrengthStrong
		filtered.DepKinds = nil
	case ImpactMove:
		filtered.MinStrength = assets.StrengthWeak
		filtered.DepKinds = []assets.DepKind{assets.DepKindPathReference}
	default: // ImpactDelete, or an unrecognized op: treat as the full closure
		filtered.MinStrength = assets.StrengthWeak
		filtered.DepKinds = nil
	}

	key := filtered.cacheKey("impact:"+string(op), guid)
	affected := e.cached(key, func() any {
		return e.bfs(guid, filtered, e.store.InEdges)
	}).([]string)

	return ImpactResult{Affected: affected, Severity: impactSeverity(len(affected))}
}

// impactSeverity grades an Impact result's blast radius: HIGH at 10 or more
// affected nodes, MEDIUM for 1-9, LOW for none, per spec §4.6.
func impactSeverity(affected int) ImpactSeverity {
	switch {
	case affected >= 10:
		return ImpactHigh
	case affected >= 1:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// TreeNode is one node of a dep_tree/ref_tree result: a recursive
// descent over the forward (or, for ref_tree, reverse) graph with Circular
// marking a node that closes a cycle back to one of its own ancestors on
// the current path — its own Children are never expanded further.
type TreeNode struct {
	GUID     string
	Children []*TreeNode
	Circular bool
}

// DepTree builds guid's forward dependency tree (spec §4.6 dep_tree),
// truncating at any cycle and at opts.MaxDepth.
func (e *Engine) DepTree(guid string, opts QueryOptions) *TreeNode {
	key := opts.cacheKey("dep_tree", guid)
	return e.cached(key, func() any {
		return e.buildTree(guid, opts, e.store.OutEdges)
	}).(*TreeNode)
}

// RefTree builds guid's reverse reference tree (spec §4.6 ref_tree), the
// mirror of DepTree over incoming edges.
func (e *Engine) RefTree(guid string, opts QueryOptions) *TreeNode {
	key := opts.cacheKey("ref_tree", guid)
	return e.cached(key, func() any {
		return e.buildTree(guid, opts, e.store.InEdges)
	}).(*TreeNode)
}

func (e *Engine) buildTree(start string, opts QueryOptions, neighbors func(string) []assets.Edge) *TreeNode {
	onPath := map[string]bool{}

	var walk func(guid string, depth int) *TreeNode
	walk = func(guid string, depth int) *TreeNode {
		node := &TreeNode{GUID: guid}
		if onPath[guid] {
			node.Circular = true
			return node
		}
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return node
		}

		onPath[guid] = true
		defer delete(onPath, guid)

		edges := filterEdges(neighbors(guid), opts)
		sort.Slice(edges, func(i, j int) bool {
			return otherEnd(edges[i], guid) < otherEnd(edges[j], guid)
		})
		for _, edge := range edges {
			node.Children = append(node.Children, walk(otherEnd(edge, guid), depth+1))
		}
		return node
	}

	return walk(start, 0)
}

// Unused returns every active node with zero incoming active edges and
// that is not itself an entry point (kind Scene), per spec §4.6.
func (e *Engine) Unused() []*assets.Node {
	var out []*assets.Node
	for _, n := range e.store.AllNodes() {
		if !n.Active || n.Kind == assets.KindScene {
			continue
		}
		if len(e.store.InEdges(n.GUID)) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// ValidateRefs returns every active edge whose target node is missing or
// inactive — dangling references per spec §4.6.
func (e *Engine) ValidateRefs() []assets.Edge {
	var out []assets.Edge
	for _, edge := range e.store.AllEdges() {
		if edge.Target == "" {
			continue
		}
		target := e.store.Node(edge.Target)
		if target == nil || !target.Active {
			out = append(out, edge)
		}
	}
	return out
}

func filterEdges(edges []assets.Edge, opts QueryOptions) []assets.Edge {
	out := make([]assets.Edge, 0, len(edges))
	for _, e := range edges {
		if opts.allows(e) {
			out = append(out, e)
		}
	}
	return out
}
