package sandbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFactory(t *testing.T) {
	tests := []struct {
		name     string
		typ      Type
		wantType Type
		wantErr  bool
	}{
		{name: "none", typ: TypeNone, wantType: TypeNone},
		{name: "process", typ: TypeProcess, wantType: TypeProcess},
		{name: "docker", typ: TypeDocker, wantType: TypeDocker},
		{name: "unknown", typ: Type("vm"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.typ, DefaultResourceLimits(), zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, s.Type())
		})
	}
}

func TestNoneStrategyAlwaysSucceeds(t *testing.T) {
	s := NewNoneStrategy(DefaultResourceLimits(), nil)

	t.Run("with task body", func(t *testing.T) {
		res := s.Execute(context.Background(), &Task{
			AgentID: "agent-1",
			Run: func(ctx context.Context) (string, error) {
				return "done", nil
			},
		})
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, "done", res.Output)
		assert.Equal(t, "agent-1", res.AgentID)
		assert.Equal(t, TypeNone, res.SandboxType)
		assert.Equal(t, NoWarning, res.Warning)
	})

	t.Run("task error still reports success", func(t *testing.T) {
		res := s.Execute(context.Background(), &Task{
			AgentID: "agent-1",
			Run: func(ctx context.Context) (string, error) {
				return "", errors.New("boom")
			},
		})
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, "boom", res.Output)
	})

	t.Run("no body", func(t *testing.T) {
		res := s.Execute(context.Background(), &Task{AgentID: "agent-2"})
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, "Direct execution of task for agent agent-2", res.Output)
	})
}

func TestProcessStrategyTimeout(t *testing.T) {
	s := NewProcessStrategy(DefaultResourceLimits(), zap.NewNop())

	res := s.Execute(context.Background(), &Task{
		AgentID: "agent-slow",
		Timeout: 50 * time.Millisecond,
		Run: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	})

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "Execution timeout", res.Output)
	assert.Equal(t, "agent-slow", res.AgentID)
	assert.Equal(t, TypeProcess, res.SandboxType)
}

func TestProcessStrategyAbandonsStuckTask(t *testing.T) {
	s := NewProcessStrategy(DefaultResourceLimits(), zap.NewNop())

	block := make(chan struct{})
	defer close(block)

	start := time.Now()
	res := s.Execute(context.Background(), &Task{
		AgentID: "agent-stuck",
		Timeout: 50 * time.Millisecond,
		Run: func(ctx context.Context) (string, error) {
			<-block
			return "never", nil
		},
	})

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, TimeoutOutput, res.Output)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestProcessStrategySuccess(t *testing.T) {
	s := NewProcessStrategy(DefaultResourceLimits(), zap.NewNop())

	res := s.Execute(context.Background(), &Task{
		AgentID: "agent-ok",
		Run: func(ctx context.Context) (string, error) {
			return "result", nil
		},
	})

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "result", res.Output)
	assert.Equal(t, TypeProcess, res.SandboxType)
	assert.Empty(t, res.Warning)
}

func TestProcessStrategyTaskError(t *testing.T) {
	s := NewProcessStrategy(DefaultResourceLimits(), zap.NewNop())

	res := s.Execute(context.Background(), &Task{
		AgentID: "agent-err",
		Run: func(ctx context.Context) (string, error) {
			return "", errors.New("script exploded")
		},
	})

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "script exploded", res.Output)
}

func TestProcessStrategyNoBody(t *testing.T) {
	s := NewProcessStrategy(DefaultResourceLimits(), zap.NewNop())

	res := s.Execute(context.Background(), &Task{AgentID: "agent-empty"})
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "task has no body", res.Output)
}

func TestDockerStrategyFallbackForFuncTasks(t *testing.T) {
	s := NewDockerStrategy(DefaultResourceLimits(), zap.NewNop())

	res := s.Execute(context.Background(), &Task{
		AgentID: "agent-1",
		Run: func(ctx context.Context) (string, error) {
			return "in-process", nil
		},
	})

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "in-process", res.Output)
	assert.Equal(t, TypeDocker, res.SandboxType)
	assert.NotEmpty(t, res.Warning)
}

func TestDockerContainerArgv(t *testing.T) {
	s := NewDockerStrategy(ResourceLimits{MaxMemoryMB: 256, MaxCPUPercent: 25}, zap.NewNop()).
		WithImage("alpine:3.20")

	argv := s.containerArgv([]string{"echo", "hi"})
	assert.Equal(t, []string{
		"docker", "run", "--rm",
		"--network", "none",
		"--memory=256m",
		"--cpus=0.25",
		"alpine:3.20",
		"echo", "hi",
	}, argv)
}

func TestResourceLimits(t *testing.T) {
	assert.Equal(t, ResourceLimits{MaxMemoryMB: 512, MaxCPUPercent: 50}, DefaultResourceLimits())

	t.Run("zero bound always within", func(t *testing.T) {
		assert.True(t, ResourceLimits{}.withinLimits())
	})

	t.Run("strategies expose limits", func(t *testing.T) {
		limits := ResourceLimits{MaxMemoryMB: 128, MaxCPUPercent: 10}
		s := NewProcessStrategy(limits, nil)
		assert.Equal(t, limits, s.Limits())
	})
}
