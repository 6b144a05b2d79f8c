package cycle

import "github.com/unityscan/depgraph/internal/assets"

// NewReachabilityChecker builds a cycle-introduction predicate suitable for
// graph.NewUpdater's cycleChecker parameter. Rather than re-running the full
// Tarjan/Johnson analysis on every transaction, it asks the narrower
// question a single Apply actually needs: does adding this batch of edges
// create a path back to any of their own sources? An edge source->target
// introduces a new cycle iff target can reach source, through existing
// edges or the batch's other edges.
func NewReachabilityChecker(g Graph) func([]assets.Edge) (bool, error) {
	return func(adds []assets.Edge) (bool, error) {
		batch := make(map[string][]string, len(adds))
		for _, e := range adds {
			batch[e.Source] = append(batch[e.Source], e.Target)
		}
		for _, e := range adds {
			if e.Source == e.Target {
				return true, nil
			}
			if reaches(g, batch, e.Target, e.Source) {
				return true, nil
			}
		}
		return false, nil
	}
}

// reaches reports whether to is reachable from start by following outgoing
// edges of the Graph adapter plus the batch's proposed edges, via plain BFS.
func reaches(g Graph, batch map[string][]string, start, to string) bool {
	if start == to {
		return true
	}
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.OutNeighbors(cur) {
			if e.Target == to {
				return true
			}
			if !visited[e.Target] {
				visited[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
		for _, next := range batch[cur] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
