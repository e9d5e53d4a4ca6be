// Package graph defines the call graph's node/edge data model: a
// FunctionId-keyed node map paired with an ordered edge list, per spec §3.
package graph

import (
	"fmt"

	"github.com/trackast/trackast/pkg/ast"
	"github.com/trackast/trackast/pkg/functionid"
)

// Node is a FunctionId plus an external flag and a copy of the
// originating FunctionDef metadata (zero value when external).
type Node struct {
	ID         functionid.FunctionId `json:"id"`
	IsExternal bool                  `json:"is_external"`
	Metadata   ast.FunctionDef       `json:"metadata"`
}

// Edge is a (from, to, line) triple. Multiple edges between the same
// endpoints are permitted at distinct lines; identical triples are not
// deduplicated automatically.
type Edge struct {
	From functionid.FunctionId `json:"from"`
	To   functionid.FunctionId `json:"to"`
	Line int                   `json:"line"`
}

// CallGraph is a FunctionId->Node mapping paired with an ordered edge
// sequence. Logically immutable once Build returns; the query and
// traversal packages only ever read it.
type CallGraph struct {
	Nodes map[functionid.FunctionId]Node
	Edges []Edge
}

// New returns an empty CallGraph ready for node/edge insertion.
func New() *CallGraph {
	return &CallGraph{Nodes: make(map[functionid.FunctionId]Node)}
}

// InsertNode adds a node, failing if its id is already present.
func (g *CallGraph) InsertNode(n Node) error {
	if _, exists := g.Nodes[n.ID]; exists {
		return fmt.Errorf("insert node: id %s already present", n.ID)
	}
	g.Nodes[n.ID] = n
	return nil
}

// InsertEdge appends an edge, failing if either endpoint is missing.
func (g *CallGraph) InsertEdge(e Edge) error {
	if _, ok := g.Nodes[e.From]; !ok {
		return fmt.Errorf("insert edge: unknown from-node %s", e.From)
	}
	if _, ok := g.Nodes[e.To]; !ok {
		return fmt.Errorf("insert edge: unknown to-node %s", e.To)
	}
	g.Edges = append(g.Edges, e)
	return nil
}

// GetNode returns the node for id, if present.
func (g *CallGraph) GetNode(id functionid.FunctionId) (Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// NodeCount returns the number of nodes.
func (g *CallGraph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *CallGraph) EdgeCount() int { return len(g.Edges) }

// Validate checks the three CallGraph invariants from spec §3: every
// edge's endpoints exist, external nodes have no outgoing edges, and
// (trivially, by map construction) node ids are unique.
func (g *CallGraph) Validate() error {
	for _, e := range g.Edges {
		from, ok := g.Nodes[e.From]
		if !ok {
			return fmt.Errorf("dangling edge: from-node %s does not exist", e.From)
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return fmt.Errorf("dangling edge: to-node %s does not exist", e.To)
		}
		if from.IsExternal {
			return fmt.Errorf("external node %s has an outgoing edge to %s", e.From, e.To)
		}
	}
	return nil
}
