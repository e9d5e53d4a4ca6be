package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackast/trackast/pkg/functionid"
)

func TestInsertNodeDuplicate(t *testing.T) {
	g := New()
	require.NoError(t, g.InsertNode(Node{ID: "a"}))
	err := g.InsertNode(Node{ID: "a"})
	assert.Error(t, err)
}

func TestInsertEdgeMissingEndpoint(t *testing.T) {
	g := New()
	require.NoError(t, g.InsertNode(Node{ID: "a"}))
	err := g.InsertEdge(Edge{From: "a", To: "b"})
	assert.Error(t, err)
}

func TestInsertEdgeOK(t *testing.T) {
	g := New()
	require.NoError(t, g.InsertNode(Node{ID: "a"}))
	require.NoError(t, g.InsertNode(Node{ID: "b"}))
	require.NoError(t, g.InsertEdge(Edge{From: "a", To: "b", Line: 3}))
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 2, g.NodeCount())
}

func TestValidateDanglingEdge(t *testing.T) {
	g := New()
	require.NoError(t, g.InsertNode(Node{ID: "a"}))
	g.Nodes["a"] = Node{ID: "a"}
	g.Edges = append(g.Edges, Edge{From: "a", To: functionid.FunctionId("missing")})
	assert.Error(t, g.Validate())
}

func TestValidateExternalOutgoingEdge(t *testing.T) {
	g := New()
	require.NoError(t, g.InsertNode(Node{ID: "ext", IsExternal: true}))
	require.NoError(t, g.InsertNode(Node{ID: "b"}))
	g.Edges = append(g.Edges, Edge{From: "ext", To: "b"})
	assert.Error(t, g.Validate())
}

func TestValidateOK(t *testing.T) {
	g := New()
	require.NoError(t, g.InsertNode(Node{ID: "a"}))
	require.NoError(t, g.InsertNode(Node{ID: "b", IsExternal: true}))
	require.NoError(t, g.InsertEdge(Edge{From: "a", To: "b"}))
	assert.NoError(t, g.Validate())
}
