// Package graph implements the in-memory asset dependency graph: GraphStore
// (spec §4.4), QueryEngine (spec §4.6) and GraphUpdater (spec §4.5).
//
// GraphStore's index layout is grounded on recera-onyx-coding-agent's
// EntityRegistry (internal/entities/registry.go): multiple purpose-built
// indexes guarded by one sync.RWMutex, with a stats counter struct sitting
// alongside the data. Generalized from Entity/Relationship to the domain's
// Node/Edge and from name/type/file indexes to guid/path indexes.
package graph

import (
	"sort"
	"sync"

	"github.com/unityscan/depgraph/internal/assets"
)

// Stats mirrors the counters a caller might want after a batch of
// mutations, in the spirit of the teacher's RegistryStats.
type Stats struct {
	TotalNodes  int
	ActiveNodes int
	TotalEdges  int
	ActiveEdges int
	MutationOps int64
}

// Store is the in-memory asset dependency graph. All public methods are
// safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	nodes    map[string]*assets.Node // guid -> node
	pathIdx  map[string]string       // path -> guid
	outEdges map[string][]assets.Edge
	inEdges  map[string][]assets.Edge

	stats Stats
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		nodes:    make(map[string]*assets.Node),
		pathIdx:  make(map[string]string),
		outEdges: make(map[string][]assets.Edge),
		inEdges:  make(map[string][]assets.Edge),
	}
}

// UpsertNode inserts or replaces the node for n.GUID. If the node previously
// lived at a different path, the old path index entry is removed.
func (s *Store) UpsertNode(n *assets.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.nodes[n.GUID]; ok && existing.Path != n.Path {
		delete(s.pathIdx, existing.Path)
	}
	if _, existed := s.nodes[n.GUID]; !existed {
		s.stats.TotalNodes++
	}

	s.nodes[n.GUID] = n.Clone()
	s.pathIdx[n.Path] = n.GUID
	s.stats.MutationOps++
	s.recomputeActiveLocked()
}

// DeactivateNode marks a node inactive without removing it, preserving
// history for the "deleted asset" edge case in spec §4.4. Its incoming and
// outgoing edges cascade to active=false along with it, rather than being
// removed.
func (s *Store) DeactivateNode(guid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[guid]
	if !ok {
		return false
	}
	n.Active = false
	for _, e := range s.outEdges[guid] {
		e.Active = false
		s.setEdgeActiveLocked(e)
	}
	for _, e := range s.inEdges[guid] {
		e.Active = false
		s.setEdgeActiveLocked(e)
	}
	s.stats.MutationOps++
	s.recomputeActiveLocked()
	return true
}

// setEdgeActiveLocked overwrites both the outEdges and inEdges copy of e
// (identified by its Key) with e.Active, keeping the two indexes in sync.
func (s *Store) setEdgeActiveLocked(e assets.Edge) {
	key := e.Key()
	for i, cur := range s.outEdges[e.Source] {
		if cur.Key() == key {
			s.outEdges[e.Source][i].Active = e.Active
		}
	}
	for i, cur := range s.inEdges[e.Target] {
		if cur.Key() == key {
			s.inEdges[e.Target][i].Active = e.Active
		}
	}
}

// Node returns the node for guid, or nil if unknown.
func (s *Store) Node(guid string) *assets.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[guid]
	if !ok {
		return nil
	}
	return n.Clone()
}

// ResolvePath returns the guid for a node at path, if any.
func (s *Store) ResolvePath(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	guid, ok := s.pathIdx[path]
	return guid, ok
}

// ReplaceEdgesFrom atomically replaces every outgoing edge with Source ==
// source with newEdges, diffing by assets.Edge.Key so unchanged edges are
// left untouched (spec §4.4's replace_edges_from operation). It returns the
// counts of edges added, updated and removed.
func (s *Store) ReplaceEdgesFrom(source string, newEdges []assets.Edge) (added, updated, removed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[assets.Key]assets.Edge, len(s.outEdges[source]))
	for _, e := range s.outEdges[source] {
		existing[e.Key()] = e
	}

	wanted := make(map[assets.Key]assets.Edge, len(newEdges))
	for _, e := range newEdges {
		wanted[e.Key()] = e
	}

	for k, e := range wanted {
		if old, ok := existing[k]; !ok {
			added++
			s.addEdgeLocked(e)
		} else if !old.SameAttrs(e) {
			updated++
			s.removeEdgeLocked(old)
			s.addEdgeLocked(e)
		}
	}
	for k, old := range existing {
		if _, ok := wanted[k]; !ok {
			removed++
			s.removeEdgeLocked(old)
		}
	}

	s.stats.MutationOps++
	s.recomputeActiveLocked()
	return added, updated, removed
}

func (s *Store) addEdgeLocked(e assets.Edge) {
	s.outEdges[e.Source] = append(s.outEdges[e.Source], e)
	s.inEdges[e.Target] = append(s.inEdges[e.Target], e)
}

func (s *Store) removeEdgeLocked(e assets.Edge) {
	s.outEdges[e.Source] = removeEdge(s.outEdges[e.Source], e)
	s.inEdges[e.Target] = removeEdge(s.inEdges[e.Target], e)
}

func removeEdge(edges []assets.Edge, target assets.Edge) []assets.Edge {
	out := edges[:0]
	for _, e := range edges {
		if e.Key() != target.Key() {
			out = append(out, e)
		}
	}
	return out
}

// OutEdges returns a's active outgoing edges, sorted by target guid for
// stable output.
func (s *Store) OutEdges(guid string) []assets.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeSortedCopy(s.outEdges[guid])
}

// InEdges returns a's active incoming edges, sorted by source guid.
func (s *Store) InEdges(guid string) []assets.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeSortedCopy(s.inEdges[guid])
}

func activeSortedCopy(edges []assets.Edge) []assets.Edge {
	out := make([]assets.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Active {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// AllNodes returns every node currently stored, sorted by guid.
func (s *Store) AllNodes() []*assets.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*assets.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GUID < out[j].GUID })
	return out
}

// AllEdges returns every active edge, sorted by (source, target, dep_kind).
func (s *Store) AllEdges() []assets.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []assets.Edge
	for _, edges := range s.outEdges {
		for _, e := range edges {
			if e.Active {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].DepKind < out[j].DepKind
	})
	return out
}

// Stats returns a snapshot of the store's counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Store) recomputeActiveLocked() {
	active := 0
	for _, n := range s.nodes {
		if n.Active {
			active++
		}
	}
	s.stats.TotalNodes = len(s.nodes)
	s.stats.ActiveNodes = active

	totalEdges, activeEdges := 0, 0
	for _, edges := range s.outEdges {
		totalEdges += len(edges)
		for _, e := range edges {
			if e.Active {
				activeEdges++
			}
		}
	}
	s.stats.TotalEdges = totalEdges
	s.stats.ActiveEdges = activeEdges
}
