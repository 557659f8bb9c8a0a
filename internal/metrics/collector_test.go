package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("crewflow", reg, zap.NewNop())
	require.NotNil(t, c)

	c.RecordExecution("completed", 2*time.Second)
	c.RecordExecution("completed", 3*time.Second)
	c.RecordExecution("error", time.Second)
	c.RecordAgentStep("ollama", "success")
	c.RecordLLMRequest("openai", "gpt-4o", "success", 500*time.Millisecond)
	c.RecordSandboxTask("process", "error", 300*time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.executionsTotal.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.executionsTotal.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.agentStepsTotal.WithLabelValues("ollama", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.llmRequestsTotal.WithLabelValues("openai", "gpt-4o", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.sandboxTasksTotal.WithLabelValues("process", "error")))
}

func TestCollectorIsolatedRegistries(t *testing.T) {
	// Two collectors with the same namespace must not collide when each has
	// its own registry.
	a := NewCollector("crewflow", prometheus.NewRegistry(), nil)
	b := NewCollector("crewflow", prometheus.NewRegistry(), nil)
	assert.NotNil(t, a)
	assert.NotNil(t, b)
}
