package sandbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Type identifies an isolation strategy.
type Type string

const (
	TypeNone    Type = "none"
	TypeProcess Type = "process"
	TypeDocker  Type = "docker"
)

// Status is the outcome classification of a sandboxed task.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// DefaultTimeout bounds a task when its own timeout is unset.
const DefaultTimeout = 300 * time.Second

// TimeoutOutput is the envelope output for a task that exceeded its
// wall-clock budget.
const TimeoutOutput = "Execution timeout"

// TaskFunc is an in-process task. Implementations must honor ctx
// cancellation at their blocking points.
type TaskFunc func(ctx context.Context) (string, error)

// Task is one unit of agent-triggered work. Exactly one of Run or Command
// should be set; Command tasks get OS-level isolation where the strategy
// supports it.
type Task struct {
	AgentID string
	// Payload describes the task (free text, carried into results for audit).
	Payload string
	// Context carries task-scoped data for the runner, such as the
	// originating node's free-form config.
	Context map[string]any
	// Run is the in-process task body.
	Run TaskFunc
	// Command is an argv vector executed under OS isolation.
	Command []string
	// Timeout bounds wall-clock execution. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Result is the uniform envelope every strategy returns.
type Result struct {
	Status      Status        `json:"status"`
	Output      string        `json:"output"`
	AgentID     string        `json:"agent_id"`
	SandboxType Type          `json:"sandbox_type"`
	Warning     string        `json:"warning,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// Strategy runs tasks under one isolation level. Faults never escape
// Execute; they are folded into the result envelope.
type Strategy interface {
	// Execute runs the task within its timeout and returns the envelope.
	Execute(ctx context.Context, task *Task) *Result
	// Type identifies the isolation level.
	Type() Type
	// Limits returns the resource-limit policy attached to this strategy.
	Limits() ResourceLimits
	// CheckLimits reports whether the current process is within the policy.
	CheckLimits() bool
}

// New constructs the strategy for the given type.
func New(t Type, limits ResourceLimits, logger *zap.Logger) (Strategy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch t {
	case TypeNone:
		return NewNoneStrategy(limits, logger), nil
	case TypeProcess:
		return NewProcessStrategy(limits, logger), nil
	case TypeDocker:
		return NewDockerStrategy(limits, logger), nil
	default:
		return nil, fmt.Errorf("unknown sandbox type: %s", t)
	}
}

func taskTimeout(task *Task) time.Duration {
	if task.Timeout > 0 {
		return task.Timeout
	}
	return DefaultTimeout
}
