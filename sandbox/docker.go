package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DockerStrategy runs command tasks in a throwaway container constrained by
// the configured resource limits. In-process tasks have no container to run
// in, so they fall back to deadline execution while keeping the docker tag
// on the result.
type DockerStrategy struct {
	limits ResourceLimits
	image  string
	logger *zap.Logger
}

// DefaultImage is the container image used when none is configured.
const DefaultImage = "python:3.11-slim"

// NewDockerStrategy creates the container-isolation strategy.
func NewDockerStrategy(limits ResourceLimits, logger *zap.Logger) *DockerStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DockerStrategy{
		limits: limits,
		image:  DefaultImage,
		logger: logger.With(zap.String("component", "sandbox"), zap.String("sandbox_type", string(TypeDocker))),
	}
}

// WithImage overrides the container image.
func (s *DockerStrategy) WithImage(image string) *DockerStrategy {
	if image != "" {
		s.image = image
	}
	return s
}

func (s *DockerStrategy) Type() Type             { return TypeDocker }
func (s *DockerStrategy) Limits() ResourceLimits { return s.limits }
func (s *DockerStrategy) CheckLimits() bool      { return s.limits.withinLimits() }

// Execute runs the task within its timeout under container isolation.
func (s *DockerStrategy) Execute(ctx context.Context, task *Task) *Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, taskTimeout(task))
	defer cancel()

	var output string
	var err error
	var warning string
	if len(task.Command) > 0 {
		output, err = runCommand(ctx, s.containerArgv(task.Command))
	} else {
		output, err = runFunc(ctx, task)
		warning = "Task body runs in-process; container isolation applies to command tasks only"
	}

	res := &Result{
		AgentID:     task.AgentID,
		SandboxType: s.Type(),
		Warning:     warning,
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

// containerArgv wraps the task argv in a docker run invocation carrying the
// memory and CPU limits.
func (s *DockerStrategy) containerArgv(argv []string) []string {
	out := []string{
		"docker", "run", "--rm",
		"--network", "none",
		fmt.Sprintf("--memory=%dm", s.limits.MaxMemoryMB),
		fmt.Sprintf("--cpus=%.2f", float64(s.limits.MaxCPUPercent)/100),
		s.image,
	}
	return append(out, argv...)
}
