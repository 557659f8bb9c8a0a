package types

import "time"

// WorkflowStatus represents the lifecycle state of a workflow record.
type WorkflowStatus string

const (
	WorkflowDraft     WorkflowStatus = "draft"
	WorkflowActive    WorkflowStatus = "active"
	WorkflowPaused    WorkflowStatus = "paused"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowError     WorkflowStatus = "error"
)

// Position is the 2-D canvas position of a node. It is carried for the
// visual editor and is irrelevant to execution.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData is the payload attached to a workflow node. A node with an empty
// AgentID is a structural/annotation node and produces no execution step.
type NodeData struct {
	Label   string         `json:"label" yaml:"label"`
	AgentID string         `json:"agent_id,omitempty" yaml:"agent_id,omitempty"`
	Config  map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ConfigString reads a string value from the node's free-form config.
func (d NodeData) ConfigString(key string) (string, bool) {
	v, ok := d.Config[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ConfigInt reads an integer value from the node's free-form config.
// JSON-decoded numbers arrive as float64 and are accepted.
func (d NodeData) ConfigInt(key string) (int, bool) {
	v, ok := d.Config[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// ConfigBool reads a boolean value from the node's free-form config.
func (d NodeData) ConfigBool(key string) (bool, bool) {
	v, ok := d.Config[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// WorkflowNode is a single node in a workflow graph.
type WorkflowNode struct {
	ID       string   `json:"id" yaml:"id"`
	Type     string   `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// WorkflowEdge is a directed edge between two workflow nodes.
type WorkflowEdge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Workflow is a directed graph of nodes and edges. It is a pure data
// structure handed to the engine per execution; the engine neither owns nor
// persists it.
type Workflow struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Nodes       []WorkflowNode `json:"nodes" yaml:"nodes"`
	Edges       []WorkflowEdge `json:"edges" yaml:"edges"`
	Status      WorkflowStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time      `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}
