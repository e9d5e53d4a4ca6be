// Package export implements the JSON and Graphviz DOT encoders over a
// CallGraph, per spec §4.6.
package export

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/trackast/trackast/pkg/graph"
)

// jsonGraph mirrors the wire shape spec §4.6 mandates: an object with
// "nodes" and "edges" arrays. Field order in the struct controls
// marshaled key order; ToJSON fills Nodes via SortedNodes, so the node
// array is ordered by FunctionId.
type jsonGraph struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// ToJSON encodes g as the JSON wire format from spec §4.6. Nodes are
// emitted sorted by FunctionId so that identical input files produce
// byte-identical output (spec §8 invariant 5), independent of Go's
// randomized map iteration order. Edges retain insertion order, which is
// already stable (spec §6: "Order of edges is insertion order").
func ToJSON(g *graph.CallGraph, w io.Writer) error {
	jg := jsonGraph{
		Nodes: SortedNodes(g),
		Edges: g.Edges,
	}
	if jg.Edges == nil {
		jg.Edges = []graph.Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jg)
}

// SortedNodes returns every node in g, ordered by FunctionId.
func SortedNodes(g *graph.CallGraph) []graph.Node {
	out := make([]graph.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FromJSON decodes a graph previously produced by ToJSON. Round-tripping
// decode(encode(g)) is lossless modulo node ordering (spec §4.6, §8
// invariant 6).
func FromJSON(r io.Reader) (*graph.CallGraph, error) {
	var jg jsonGraph
	if err := json.NewDecoder(r).Decode(&jg); err != nil {
		return nil, err
	}
	g := graph.New()
	for _, n := range jg.Nodes {
		if err := g.InsertNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range jg.Edges {
		if err := g.InsertEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}
