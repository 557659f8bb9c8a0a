package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// ProcessStrategy enforces a wall-clock timeout per task. In-process tasks
// run under a cancelled context; the strategy stops waiting at the deadline
// even if the task body ignores cancellation. Command tasks run as a child
// process that is killed at the deadline.
type ProcessStrategy struct {
	limits ResourceLimits
	logger *zap.Logger
}

// NewProcessStrategy creates the process-isolation strategy.
func NewProcessStrategy(limits ResourceLimits, logger *zap.Logger) *ProcessStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessStrategy{
		limits: limits,
		logger: logger.With(zap.String("component", "sandbox"), zap.String("sandbox_type", string(TypeProcess))),
	}
}

func (s *ProcessStrategy) Type() Type             { return TypeProcess }
func (s *ProcessStrategy) Limits() ResourceLimits { return s.limits }
func (s *ProcessStrategy) CheckLimits() bool      { return s.limits.withinLimits() }

// Execute runs the task within its timeout. A timeout yields
// {error, "Execution timeout"}; any other fault yields {error, <message>}.
func (s *ProcessStrategy) Execute(ctx context.Context, task *Task) *Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, taskTimeout(task))
	defer cancel()

	var output string
	var err error
	if len(task.Command) > 0 {
		output, err = runCommand(ctx, task.Command)
	} else {
		output, err = runFunc(ctx, task)
	}

	res := &Result{
		AgentID:     task.AgentID,
		SandboxType: s.Type(),
		Duration:    time.Since(start),
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		res.Status = StatusError
		res.Output = TimeoutOutput
		s.logger.Warn("task timed out",
			zap.String("agent_id", task.AgentID),
			zap.Duration("timeout", taskTimeout(task)),
		)
	case err != nil:
		res.Status = StatusError
		res.Output = err.Error()
	default:
		res.Status = StatusSuccess
		res.Output = output
	}
	return res
}

// runFunc drives an in-process task body in its own goroutine so the
// strategy can abandon it at the deadline even when the body ignores ctx.
func runFunc(ctx context.Context, task *Task) (string, error) {
	if task.Run == nil {
		return "", errors.New("task has no body")
	}

	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := task.Run(ctx)
		done <- outcome{out, err}
	}()

	select {
	case o := <-done:
		if o.err != nil && ctx.Err() != nil {
			// The body surfaced the cancellation itself.
			return "", ctx.Err()
		}
		return o.out, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// runCommand executes an argv vector; CommandContext kills the child at the
// deadline.
func runCommand(ctx context.Context, argv []string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		if stderr.Len() > 0 {
			return "", errors.New(stderr.String())
		}
		return "", err
	}
	return stdout.String(), nil
}
