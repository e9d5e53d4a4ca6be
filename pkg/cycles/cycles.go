// Package cycles enumerates simple cycles in a CallGraph using Tarjan's
// strongly-connected-component decomposition followed by Johnson's
// algorithm within each non-trivial component, per spec §4.5. This
// supersedes the naive BFS-based cycle search the original implementation
// used: Tarjan's decomposition first narrows the search to the parts of
// the graph that can possibly contain a cycle, and Johnson's algorithm
// then enumerates every simple cycle within each such component exactly
// once, in polynomial-delay time.
package cycles

import (
	"sort"

	"github.com/trackast/trackast/pkg/functionid"
	"github.com/trackast/trackast/pkg/graph"
)

// Cycle is a non-empty, ordered sequence of FunctionIds forming a simple
// cycle, canonicalized to start at its lexicographically smallest member.
type Cycle struct {
	Nodes []functionid.FunctionId
}

// adjacency is a deterministic (sorted) adjacency list.
type adjacency map[functionid.FunctionId][]functionid.FunctionId

// buildAdjacency collapses parallel edges: spec §3 permits multiple
// edges between the same (from, to) pair at distinct lines (e.g. a
// function calling itself twice on different lines), but a simple
// cycle is defined over the node sequence alone, so each distinct
// successor is recorded once regardless of how many edges reach it.
func buildAdjacency(g *graph.CallGraph) adjacency {
	seen := make(map[functionid.FunctionId]map[functionid.FunctionId]bool)
	for _, e := range g.Edges {
		if seen[e.From] == nil {
			seen[e.From] = make(map[functionid.FunctionId]bool)
		}
		seen[e.From][e.To] = true
	}
	adj := make(adjacency, len(seen))
	for from, tos := range seen {
		for to := range tos {
			adj[from] = append(adj[from], to)
		}
		sort.Slice(adj[from], func(i, j int) bool { return adj[from][i] < adj[from][j] })
	}
	return adj
}

func sortedVertices(g *graph.CallGraph) []functionid.FunctionId {
	out := make([]functionid.FunctionId, 0, len(g.Nodes))
	for id := range g.Nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// tarjanSCCs returns the graph's strongly connected components, each as
// a slice of FunctionIds, using the standard recursive algorithm. The
// order components are discovered in, and the order vertices appear
// within a component, are both deterministic given a deterministic
// vertex/adjacency iteration order.
func tarjanSCCs(vertices []functionid.FunctionId, adj adjacency) [][]functionid.FunctionId {
	index := 0
	indices := make(map[functionid.FunctionId]int)
	lowlink := make(map[functionid.FunctionId]int)
	onStack := make(map[functionid.FunctionId]bool)
	var stack []functionid.FunctionId
	var sccs [][]functionid.FunctionId

	var strongconnect func(v functionid.FunctionId)
	strongconnect = func(v functionid.FunctionId) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var scc []functionid.FunctionId
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, v := range vertices {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}
	return sccs
}

// hasSelfLoop reports whether adj contains an edge v->v.
func hasSelfLoop(v functionid.FunctionId, adj adjacency) bool {
	for _, w := range adj[v] {
		if w == v {
			return true
		}
	}
	return false
}

// johnsonInSCC enumerates every simple cycle within the vertex set comp,
// restricted to edges of adj with both endpoints in comp, using Johnson's
// algorithm. comp must already be a single strongly connected component
// (or a singleton with a self-loop).
func johnsonInSCC(comp []functionid.FunctionId, adj adjacency) [][]functionid.FunctionId {
	sorted := make([]functionid.FunctionId, len(comp))
	copy(sorted, comp)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	inComp := make(map[functionid.FunctionId]bool, len(sorted))
	for _, v := range sorted {
		inComp[v] = true
	}

	var results [][]functionid.FunctionId

	for i, s := range sorted {
		remaining := make(map[functionid.FunctionId]bool)
		for _, v := range sorted[i:] {
			remaining[v] = true
		}

		localAdj := make(adjacency)
		for _, v := range sorted[i:] {
			for _, w := range adj[v] {
				if inComp[w] && remaining[w] {
					localAdj[v] = append(localAdj[v], w)
				}
			}
		}

		blocked := make(map[functionid.FunctionId]bool)
		B := make(map[functionid.FunctionId]map[functionid.FunctionId]bool)
		var stack []functionid.FunctionId

		var unblock func(v functionid.FunctionId)
		unblock = func(v functionid.FunctionId) {
			blocked[v] = false
			for w := range B[v] {
				delete(B[v], w)
				if blocked[w] {
					unblock(w)
				}
			}
		}

		var circuit func(v functionid.FunctionId) bool
		circuit = func(v functionid.FunctionId) bool {
			found := false
			stack = append(stack, v)
			blocked[v] = true

			for _, w := range localAdj[v] {
				if w == s {
					cycle := make([]functionid.FunctionId, len(stack))
					copy(cycle, stack)
					results = append(results, cycle)
					found = true
				} else if !blocked[w] {
					if circuit(w) {
						found = true
					}
				}
			}

			if found {
				unblock(v)
			} else {
				for _, w := range localAdj[v] {
					if B[w] == nil {
						B[w] = make(map[functionid.FunctionId]bool)
					}
					B[w][v] = true
				}
			}

			stack = stack[:len(stack)-1]
			return found
		}

		circuit(s)
	}

	return results
}

// FindCycles enumerates every simple cycle in g. Returns nil for a DAG.
func FindCycles(g *graph.CallGraph) []Cycle {
	vertices := sortedVertices(g)
	adj := buildAdjacency(g)
	sccs := tarjanSCCs(vertices, adj)

	var cycles []Cycle
	for _, scc := range sccs {
		nonTrivial := len(scc) >= 2
		if len(scc) == 1 && hasSelfLoop(scc[0], adj) {
			nonTrivial = true
		}
		if !nonTrivial {
			continue
		}
		for _, raw := range johnsonInSCC(scc, adj) {
			cycles = append(cycles, Cycle{Nodes: raw})
		}
	}

	// Distinct SCCs never share a cycle and adjacency is already
	// deduplicated, so Johnson's algorithm should not produce the same
	// simple cycle twice; dedupe defensively anyway per spec §4.5's
	// explicit "deduplicating" requirement, keyed on the canonical
	// (smallest-vertex-first) node sequence.
	seenKeys := make(map[string]bool, len(cycles))
	deduped := cycles[:0]
	for _, c := range cycles {
		k := cycleKey(c)
		if seenKeys[k] {
			continue
		}
		seenKeys[k] = true
		deduped = append(deduped, c)
	}
	cycles = deduped

	sort.Slice(cycles, func(i, j int) bool {
		return cycleKey(cycles[i]) < cycleKey(cycles[j])
	})
	return cycles
}

func cycleKey(c Cycle) string {
	s := ""
	for _, n := range c.Nodes {
		s += string(n) + "\x00"
	}
	return s
}

// HasCycles reports whether g contains at least one simple cycle.
func HasCycles(g *graph.CallGraph) bool {
	return len(FindCycles(g)) > 0
}
