// Package query implements the read-only query surface over a CallGraph:
// reachability, caller/callee lookups, external calls, and stats, per
// spec §4.5.
package query

import (
	"github.com/trackast/trackast/pkg/functionid"
	"github.com/trackast/trackast/pkg/graph"
	"github.com/trackast/trackast/pkg/traversal"
)

// ReachableFrom returns the set of FunctionIds reachable from id
// (including id itself), or UnknownFunction if id isn't a node.
func ReachableFrom(g *graph.CallGraph, id functionid.FunctionId) (map[functionid.FunctionId]struct{}, error) {
	r, err := traversal.DFS(g, id)
	if err != nil {
		return nil, err
	}
	return r.Reachable, nil
}

// DirectCallees returns the FunctionIds that are the to-endpoint of some
// edge from id, deduplicated, in stable first-appearance order.
func DirectCallees(g *graph.CallGraph, id functionid.FunctionId) []functionid.FunctionId {
	seen := make(map[functionid.FunctionId]struct{})
	var out []functionid.FunctionId
	for _, e := range g.Edges {
		if e.From != id {
			continue
		}
		if _, ok := seen[e.To]; ok {
			continue
		}
		seen[e.To] = struct{}{}
		out = append(out, e.To)
	}
	return out
}

// DirectCallers returns the FunctionIds that are the from-endpoint of
// some edge whose to-endpoint is id, deduplicated, stable order.
func DirectCallers(g *graph.CallGraph, id functionid.FunctionId) []functionid.FunctionId {
	seen := make(map[functionid.FunctionId]struct{})
	var out []functionid.FunctionId
	for _, e := range g.Edges {
		if e.To != id {
			continue
		}
		if _, ok := seen[e.From]; ok {
			continue
		}
		seen[e.From] = struct{}{}
		out = append(out, e.From)
	}
	return out
}

// ExternalCalls returns every edge whose to-endpoint is an external node.
func ExternalCalls(g *graph.CallGraph) []graph.Edge {
	var out []graph.Edge
	for _, e := range g.Edges {
		if n, ok := g.GetNode(e.To); ok && n.IsExternal {
			out = append(out, e)
		}
	}
	return out
}

// Stats summarizes a graph's size.
type Stats struct {
	NodeCount     int `json:"node_count"`
	EdgeCount     int `json:"edge_count"`
	ExternalCount int `json:"external_count"`
	CycleCount    int `json:"cycle_count"`
}

// CountStats computes node/edge/external counts. CycleCount is left at
// its zero value; callers that also need it should fill it in from
// pkg/cycles, which depends on this package's peers but not vice versa.
func CountStats(g *graph.CallGraph) Stats {
	s := Stats{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()}
	for _, n := range g.Nodes {
		if n.IsExternal {
			s.ExternalCount++
		}
	}
	return s
}
