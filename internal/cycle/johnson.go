package cycle

import "sort"

// johnsonSimpleCycles enumerates every simple cycle within the subgraph
// induced by scc, using Johnson's algorithm restricted to that SCC (since
// a simple cycle can only exist within a single SCC). Enumeration is
// capped: if it examines more than max(maxCycleLength*len(scc)*4, 1000)
// edges, or closes a cycle longer than maxCycleLength, it aborts and
// reports truncated=true so the caller can fall back to a single
// KindComplex cycle instead.
func (a *Analyzer) johnsonSimpleCycles(scc []string) (cycles [][]string, truncated bool) {
	inSCC := make(map[string]bool, len(scc))
	for _, n := range scc {
		inSCC[n] = true
	}
	neighbors := func(n string) []string {
		var out []string
		for _, e := range a.g.OutNeighbors(n) {
			if inSCC[e.Target] {
				out = append(out, e.Target)
			}
		}
		sort.Strings(out)
		return out
	}

	sorted := append([]string(nil), scc...)
	sort.Strings(sorted)

	blocked := make(map[string]bool)
	blockMap := make(map[string]map[string]bool)
	var stack []string

	budget := a.maxCycleLength * len(scc) * 4
	if budget < 1000 {
		budget = 1000
	}
	explored := 0

	unblock := func(n string) {
		var rec func(string)
		rec = func(u string) {
			blocked[u] = false
			for w := range blockMap[u] {
				delete(blockMap[u], w)
				if blocked[w] {
					rec(w)
				}
			}
		}
		rec(n)
	}

	for si, start := range sorted {
		subset := sorted[si:]
		subsetSet := make(map[string]bool, len(subset))
		for _, n := range subset {
			subsetSet[n] = true
		}

		blocked = make(map[string]bool)
		blockMap = make(map[string]map[string]bool)
		stack = nil

		var circuit func(v string) bool
		circuit = func(v string) bool {
			found := false
			stack = append(stack, v)
			blocked[v] = true

			for _, w := range neighbors(v) {
				if !subsetSet[w] {
					continue
				}
				explored++
				if explored > budget {
					truncated = true
					return false
				}
				if w == start {
					if len(stack) > a.maxCycleLength {
						truncated = true
						continue
					}
					cyc := append(append([]string(nil), stack...), start)
					cycles = append(cycles, cyc)
					found = true
				} else if !blocked[w] {
					if circuit(w) {
						found = true
					}
					if truncated {
						return found
					}
				}
			}

			if found {
				unblock(v)
			} else {
				for _, w := range neighbors(v) {
					if !subsetSet[w] {
						continue
					}
					if blockMap[w] == nil {
						blockMap[w] = make(map[string]bool)
					}
					blockMap[w][v] = true
				}
			}

			stack = stack[:len(stack)-1]
			return found
		}

		circuit(start)
		if truncated {
			return nil, true
		}
	}

	return cycles, false
}
