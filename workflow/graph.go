package workflow

import "github.com/BaSui01/crewflow/types"

// Graph is a structural view over a workflow's nodes and edges. It performs
// no validation: duplicate node ids resolve to the last occurrence, and edges
// may reference missing nodes. The Planner is responsible for rejecting
// malformed graphs.
type Graph struct {
	nodes    []types.WorkflowNode
	edges    []types.WorkflowEdge
	byID     map[string]int
	outgoing map[string][]types.WorkflowEdge
	incoming map[string][]types.WorkflowEdge
}

// NewGraph builds a Graph from a workflow. The workflow's node insertion
// order is preserved.
func NewGraph(wf *types.Workflow) *Graph {
	g := &Graph{
		nodes:    wf.Nodes,
		edges:    wf.Edges,
		byID:     make(map[string]int, len(wf.Nodes)),
		outgoing: make(map[string][]types.WorkflowEdge),
		incoming: make(map[string][]types.WorkflowEdge),
	}
	for i, n := range wf.Nodes {
		g.byID[n.ID] = i
	}
	for _, e := range wf.Edges {
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
		g.incoming[e.Target] = append(g.incoming[e.Target], e)
	}
	return g
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []types.WorkflowNode {
	return g.nodes
}

// Edges returns all edges.
func (g *Graph) Edges() []types.WorkflowEdge {
	return g.edges
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (types.WorkflowNode, bool) {
	i, ok := g.byID[id]
	if !ok {
		return types.WorkflowNode{}, false
	}
	return g.nodes[i], true
}

// Outgoing returns the edges leaving the given node.
func (g *Graph) Outgoing(id string) []types.WorkflowEdge {
	return g.outgoing[id]
}

// Incoming returns the edges entering the given node.
func (g *Graph) Incoming(id string) []types.WorkflowEdge {
	return g.incoming[id]
}

// HasEdges reports whether the graph encodes any dependencies.
func (g *Graph) HasEdges() bool {
	return len(g.edges) > 0
}
