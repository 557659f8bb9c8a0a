package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/crewflow/types"
)

func testWorkflow() *types.Workflow {
	return &types.Workflow{
		ID:   "wf-1",
		Name: "review pipeline",
		Nodes: []types.WorkflowNode{
			{ID: "n1", Type: "agent", Data: types.NodeData{Label: "draft", AgentID: "a1"}},
			{ID: "n2", Type: "note", Data: types.NodeData{Label: "annotation"}},
			{ID: "n3", Type: "agent", Data: types.NodeData{Label: "review", AgentID: "a2"}},
		},
		Edges: []types.WorkflowEdge{
			{ID: "e1", Source: "n1", Target: "n3"},
		},
	}
}

func TestGraph_Lookups(t *testing.T) {
	g := NewGraph(testWorkflow())

	assert.Len(t, g.Nodes(), 3)
	assert.Len(t, g.Edges(), 1)
	assert.True(t, g.HasEdges())

	n, ok := g.Node("n3")
	require.True(t, ok)
	assert.Equal(t, "a2", n.Data.AgentID)

	_, ok = g.Node("missing")
	assert.False(t, ok)

	out := g.Outgoing("n1")
	require.Len(t, out, 1)
	assert.Equal(t, "n3", out[0].Target)

	in := g.Incoming("n3")
	require.Len(t, in, 1)
	assert.Equal(t, "n1", in[0].Source)

	assert.Empty(t, g.Outgoing("n3"))
	assert.Empty(t, g.Incoming("n1"))
}

func TestGraph_ToleratesDanglingEdges(t *testing.T) {
	wf := testWorkflow()
	wf.Edges = append(wf.Edges, types.WorkflowEdge{ID: "e2", Source: "n3", Target: "ghost"})

	g := NewGraph(wf)
	assert.Len(t, g.Outgoing("n3"), 1)
	_, ok := g.Node("ghost")
	assert.False(t, ok)
}
