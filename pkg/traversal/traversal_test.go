package traversal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackast/trackast/pkg/errs"
	"github.com/trackast/trackast/pkg/functionid"
	"github.com/trackast/trackast/pkg/graph"
)

func buildChain(t *testing.T) *graph.CallGraph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.InsertNode(graph.Node{ID: "a"}))
	require.NoError(t, g.InsertNode(graph.Node{ID: "b"}))
	require.NoError(t, g.InsertNode(graph.Node{ID: "c"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "b"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "b", To: "c"}))
	return g
}

func TestDFSReachability(t *testing.T) {
	g := buildChain(t)
	r, err := DFS(g, "a")
	require.NoError(t, err)
	assert.Len(t, r.Reachable, 3)
	_, ok := r.Reachable["c"]
	assert.True(t, ok)
}

func TestDFSUnknownFunction(t *testing.T) {
	g := buildChain(t)
	_, err := DFS(g, "missing")
	var unk *errs.UnknownFunction
	assert.ErrorAs(t, err, &unk)
}

func TestDFSCycleGuard(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.InsertNode(graph.Node{ID: "a"}))
	require.NoError(t, g.InsertNode(graph.Node{ID: "b"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "b"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "b", To: "a"}))

	r, err := DFS(g, "a")
	require.NoError(t, err)
	assert.Len(t, r.Reachable, 2)
}

func TestFromEntriesMerges(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.InsertNode(graph.Node{ID: "a"}))
	require.NoError(t, g.InsertNode(graph.Node{ID: "b"}))
	require.NoError(t, g.InsertNode(graph.Node{ID: "c"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "b"}))

	r, err := FromEntries(g, []functionid.FunctionId{"a", "c"})
	require.NoError(t, err)
	assert.Len(t, r.Reachable, 3)
}
