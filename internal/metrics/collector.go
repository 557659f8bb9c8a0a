package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates the instrumentation for workflow executions, gateway
// calls, and sandboxed tasks.
type Collector struct {
	executionsTotal   *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
	agentStepsTotal   *prometheus.CounterVec

	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec

	sandboxTasksTotal   *prometheus.CounterVec
	sandboxTaskDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates a collector registered against reg. Pass a fresh
// prometheus.NewRegistry() in tests to keep registrations isolated; pass
// prometheus.DefaultRegisterer in production.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.executionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_executions_total",
			Help:      "Total number of workflow executions",
		},
		[]string{"status"},
	)

	c.executionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_execution_duration_seconds",
			Help:      "Workflow execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"status"},
	)

	c.agentStepsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_steps_total",
			Help:      "Total number of executed agent steps",
		},
		[]string{"provider", "status"},
	)

	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "model", "status"},
	)

	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	c.sandboxTasksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sandbox_tasks_total",
			Help:      "Total number of sandboxed tasks",
		},
		[]string{"sandbox_type", "status"},
	)

	c.sandboxTaskDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sandbox_task_duration_seconds",
			Help:      "Sandboxed task duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 30, 120, 300},
		},
		[]string{"sandbox_type"},
	)

	return c
}

// RecordExecution records one finished workflow execution.
func (c *Collector) RecordExecution(status string, duration time.Duration) {
	c.executionsTotal.WithLabelValues(status).Inc()
	c.executionDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordAgentStep records one executed agent step.
func (c *Collector) RecordAgentStep(provider, status string) {
	c.agentStepsTotal.WithLabelValues(provider, status).Inc()
}

// RecordLLMRequest records one provider generation call.
func (c *Collector) RecordLLMRequest(provider, model, status string, duration time.Duration) {
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordSandboxTask records one sandboxed task.
func (c *Collector) RecordSandboxTask(sandboxType, status string, duration time.Duration) {
	c.sandboxTasksTotal.WithLabelValues(sandboxType, status).Inc()
	c.sandboxTaskDuration.WithLabelValues(sandboxType).Observe(duration.Seconds())
}
