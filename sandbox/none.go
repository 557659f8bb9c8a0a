package sandbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// NoWarning is attached to every result produced without isolation.
const NoWarning = "No sandboxing applied"

// NoneStrategy runs tasks inline with no isolation and no timeout. Every
// result reports success and carries a warning so downstream consumers can
// tell no isolation was applied. Intended for trusted/dev contexts only.
type NoneStrategy struct {
	limits ResourceLimits
	logger *zap.Logger
}

// NewNoneStrategy creates the no-isolation strategy.
func NewNoneStrategy(limits ResourceLimits, logger *zap.Logger) *NoneStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoneStrategy{
		limits: limits,
		logger: logger.With(zap.String("component", "sandbox"), zap.String("sandbox_type", string(TypeNone))),
	}
}

func (s *NoneStrategy) Type() Type             { return TypeNone }
func (s *NoneStrategy) Limits() ResourceLimits { return s.limits }
func (s *NoneStrategy) CheckLimits() bool      { return s.limits.withinLimits() }

// Execute runs the task body inline. The contract reports success
// unconditionally; a task error is folded into the output text.
func (s *NoneStrategy) Execute(ctx context.Context, task *Task) *Result {
	start := time.Now()

	output := fmt.Sprintf("Direct execution of task for agent %s", task.AgentID)
	if task.Run != nil {
		out, err := task.Run(ctx)
		if err != nil {
			output = err.Error()
		} else {
			output = out
		}
	}

	return &Result{
		Status:      StatusSuccess,
		Output:      output,
		AgentID:     task.AgentID,
		SandboxType: TypeNone,
		Warning:     NoWarning,
		Duration:    time.Since(start),
	}
}
