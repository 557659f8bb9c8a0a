package types

import "time"

// LogLevel classifies an execution log entry.
type LogLevel string

const (
	LogDebug   LogLevel = "debug"
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// ExecutionLog is one immutable entry in the audit trail of a workflow
// execution. Entries are never mutated after creation; ordering within a
// workflow is creation order.
type ExecutionLog struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	AgentID    string         `json:"agent_id,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Level      LogLevel       `json:"level"`
	Message    string         `json:"message"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ExecutionStatus is the state of one workflow execution. The transition
// running -> {completed|error} happens exactly once and never reverses.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionError     ExecutionStatus = "error"
)

// ExecutionResult is the aggregated outcome of one workflow execution.
// On success Results maps agent id to that agent's raw response and
// FinalOutput carries the last chained output. On failure only Error is set
// alongside the id and status; no partial results are returned.
type ExecutionResult struct {
	ExecutionID string            `json:"execution_id"`
	Status      ExecutionStatus   `json:"status"`
	Results     map[string]string `json:"results,omitempty"`
	Duration    time.Duration     `json:"duration,omitempty"`
	FinalOutput string            `json:"final_output,omitempty"`
	Error       string            `json:"error,omitempty"`
}
