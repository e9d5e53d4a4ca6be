package cycles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackast/trackast/pkg/functionid"
	"github.com/trackast/trackast/pkg/graph"
)

func TestFindCyclesDAG(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.InsertNode(graph.Node{ID: "a"}))
	require.NoError(t, g.InsertNode(graph.Node{ID: "b"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "b"}))

	assert.Empty(t, FindCycles(g))
	assert.False(t, HasCycles(g))
}

func TestFindCyclesSelfLoop(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.InsertNode(graph.Node{ID: "a"}))
	require.NoError(t, g.InsertNode(graph.Node{ID: "b"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "a", Line: 1}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "b", Line: 1}))

	cs := FindCycles(g)
	require.Len(t, cs, 1)
	assert.ElementsMatch(t, []string{"a"}, idsToStrings(cs[0].Nodes))
}

func TestFindCyclesMutualRecursion(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.InsertNode(graph.Node{ID: "a"}))
	require.NoError(t, g.InsertNode(graph.Node{ID: "b"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "b", Line: 1}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "b", To: "a", Line: 1}))

	cs := FindCycles(g)
	require.Len(t, cs, 1)
	assert.Equal(t, "a", string(cs[0].Nodes[0]))
	assert.ElementsMatch(t, []string{"a", "b"}, idsToStrings(cs[0].Nodes))
}

func TestFindCyclesParallelSelfLoopEdgesDeduplicated(t *testing.T) {
	// spec §3 permits a function calling itself on two different lines;
	// that must still surface as exactly one cycle, not two.
	g := graph.New()
	require.NoError(t, g.InsertNode(graph.Node{ID: "a"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "a", Line: 1}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "a", Line: 5}))

	cs := FindCycles(g)
	require.Len(t, cs, 1)
	assert.Equal(t, []string{"a"}, idsToStrings(cs[0].Nodes))
}

func TestFindCyclesParallelMutualRecursionEdgesDeduplicated(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.InsertNode(graph.Node{ID: "a"}))
	require.NoError(t, g.InsertNode(graph.Node{ID: "b"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "b", Line: 1}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "b", Line: 9}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "b", To: "a", Line: 2}))

	cs := FindCycles(g)
	require.Len(t, cs, 1)
	assert.Equal(t, "a", string(cs[0].Nodes[0]))
	assert.ElementsMatch(t, []string{"a", "b"}, idsToStrings(cs[0].Nodes))
}

func TestFindCyclesThreeCycle(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, g.InsertNode(graph.Node{ID: functionid.FunctionId(id)}))
	}
	require.NoError(t, g.InsertEdge(graph.Edge{From: "a", To: "b"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "b", To: "c"}))
	require.NoError(t, g.InsertEdge(graph.Edge{From: "c", To: "a"}))

	cs := FindCycles(g)
	require.Len(t, cs, 1)
	assert.Equal(t, "a", string(cs[0].Nodes[0]))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, idsToStrings(cs[0].Nodes))
}

func idsToStrings(ids []functionid.FunctionId) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
