// Package traversal implements DFS-based reachability over a CallGraph,
// per spec §4.5.
package traversal

import (
	"github.com/trackast/trackast/pkg/errs"
	"github.com/trackast/trackast/pkg/functionid"
	"github.com/trackast/trackast/pkg/graph"
)

// Result holds a reachable set plus the order nodes were first visited
// in, mirroring the original design's TraversalResult.
type Result struct {
	Reachable  map[functionid.FunctionId]struct{}
	VisitOrder []functionid.FunctionId
}

func newResult() *Result {
	return &Result{Reachable: make(map[functionid.FunctionId]struct{})}
}

func (r *Result) add(id functionid.FunctionId) bool {
	if _, seen := r.Reachable[id]; seen {
		return false
	}
	r.Reachable[id] = struct{}{}
	r.VisitOrder = append(r.VisitOrder, id)
	return true
}

// Merge folds other's visited nodes into r, preserving r's own
// first-appearance order and only appending genuinely new ids from other.
func (r *Result) Merge(other *Result) {
	for _, id := range other.VisitOrder {
		r.add(id)
	}
}

// DFS performs a stack-based depth-first traversal from id, following
// outgoing edges, guarded by a visited set against cycles. Returns
// UnknownFunction if id is not a node in g.
func DFS(g *graph.CallGraph, id functionid.FunctionId) (*Result, error) {
	if _, ok := g.GetNode(id); !ok {
		return nil, &errs.UnknownFunction{ID: string(id)}
	}

	out := newResult()
	stack := []functionid.FunctionId{id}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		if !out.add(cur) {
			continue
		}
		for _, e := range g.Edges {
			if e.From == cur {
				if _, seen := out.Reachable[e.To]; !seen {
					stack = append(stack, e.To)
				}
			}
		}
	}
	return out, nil
}

// FromEntries merges the DFS reachable sets of every entry point.
func FromEntries(g *graph.CallGraph, entries []functionid.FunctionId) (*Result, error) {
	out := newResult()
	for _, e := range entries {
		r, err := DFS(g, e)
		if err != nil {
			return nil, err
		}
		out.Merge(r)
	}
	return out, nil
}
