package workflow

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/crewflow/types"
)

// Step is one executable unit of a plan: a node bound to an agent.
type Step struct {
	NodeID   string `json:"node_id"`
	AgentID  string `json:"agent_id"`
	NodeType string `json:"node_type"`
}

// Plan is the ordered outcome of planning a workflow. Steps are grouped into
// stages: steps within a stage have no ordering dependency between them and
// are parallel-eligible, stages execute strictly in order. Baseline plans
// (no edges) carry exactly one step per stage.
type Plan struct {
	Stages [][]Step
}

// Steps flattens the plan into a single ordered sequence.
func (p *Plan) Steps() []Step {
	var out []Step
	for _, stage := range p.Stages {
		out = append(out, stage...)
	}
	return out
}

// Len returns the total number of steps.
func (p *Plan) Len() int {
	n := 0
	for _, stage := range p.Stages {
		n += len(stage)
	}
	return n
}

// GraphCycleError reports that the workflow's edges form a cycle. Planning
// fails fast with this error before any provider call is made.
type GraphCycleError struct {
	WorkflowID string
	Nodes      []string
}

func (e *GraphCycleError) Error() string {
	return fmt.Sprintf("workflow %s contains a cycle involving nodes [%s]", e.WorkflowID, strings.Join(e.Nodes, ", "))
}

// DanglingEdgeError reports an edge whose endpoint references no node.
type DanglingEdgeError struct {
	WorkflowID string
	EdgeID     string
	NodeID     string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("workflow %s: edge %s references unknown node %s", e.WorkflowID, e.EdgeID, e.NodeID)
}

// Planner converts workflows into execution plans.
type Planner struct {
	logger *zap.Logger
}

// NewPlanner creates a planner. A nil logger is replaced with a no-op logger.
func NewPlanner(logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{logger: logger.With(zap.String("component", "planner"))}
}

// Plan derives the execution order for a workflow.
//
// When the workflow carries no edges, the plan is the subset of nodes with a
// non-empty agent id, in node insertion order, one step per stage. This is
// the only order the baseline guarantees.
//
// When edges are present, the plan is a level-order topological sort: each
// stage holds the nodes whose dependencies are all satisfied by earlier
// stages, in node insertion order. Structural nodes (no agent id)
// participate in ordering but emit no steps. A cycle yields a
// *GraphCycleError, an edge endpoint with no matching node a
// *DanglingEdgeError.
func (p *Planner) Plan(wf *types.Workflow) (*Plan, error) {
	g := NewGraph(wf)

	if !g.HasEdges() {
		plan := p.sequentialPlan(g)
		p.logger.Debug("planned workflow in node order",
			zap.String("workflow_id", wf.ID),
			zap.Int("steps", plan.Len()),
		)
		return plan, nil
	}

	plan, err := p.topologicalPlan(wf, g)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("planned workflow topologically",
		zap.String("workflow_id", wf.ID),
		zap.Int("steps", plan.Len()),
		zap.Int("stages", len(plan.Stages)),
	)
	return plan, nil
}

func (p *Planner) sequentialPlan(g *Graph) *Plan {
	plan := &Plan{}
	for _, n := range g.Nodes() {
		if n.Data.AgentID == "" {
			continue
		}
		plan.Stages = append(plan.Stages, []Step{{
			NodeID:   n.ID,
			AgentID:  n.Data.AgentID,
			NodeType: n.Type,
		}})
	}
	return plan
}

func (p *Planner) topologicalPlan(wf *types.Workflow, g *Graph) (*Plan, error) {
	for _, e := range g.Edges() {
		if _, ok := g.Node(e.Source); !ok {
			return nil, &DanglingEdgeError{WorkflowID: wf.ID, EdgeID: e.ID, NodeID: e.Source}
		}
		if _, ok := g.Node(e.Target); !ok {
			return nil, &DanglingEdgeError{WorkflowID: wf.ID, EdgeID: e.ID, NodeID: e.Target}
		}
	}

	// Kahn's algorithm by levels. Insertion order within a level keeps the
	// plan deterministic.
	order := make(map[string]int, len(g.Nodes()))
	indegree := make(map[string]int, len(g.Nodes()))
	for i, n := range g.Nodes() {
		order[n.ID] = i
		indegree[n.ID] = len(g.Incoming(n.ID))
	}

	var ready []string
	seen := make(map[string]bool, len(g.Nodes()))
	for _, n := range g.Nodes() {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if indegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	plan := &Plan{}
	placed := 0
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return order[ready[i]] < order[ready[j]] })

		var stage []Step
		var next []string
		for _, id := range ready {
			placed++
			node, _ := g.Node(id)
			if node.Data.AgentID != "" {
				stage = append(stage, Step{
					NodeID:   node.ID,
					AgentID:  node.Data.AgentID,
					NodeType: node.Type,
				})
			}
			for _, e := range g.Outgoing(id) {
				indegree[e.Target]--
				if indegree[e.Target] == 0 {
					next = append(next, e.Target)
				}
			}
		}
		if len(stage) > 0 {
			plan.Stages = append(plan.Stages, stage)
		}
		ready = next
	}

	if placed != len(order) {
		var remaining []string
		for _, n := range g.Nodes() {
			if indegree[n.ID] > 0 {
				remaining = append(remaining, n.ID)
			}
		}
		return nil, &GraphCycleError{WorkflowID: wf.ID, Nodes: remaining}
	}

	return plan, nil
}
