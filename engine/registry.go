package engine

import (
	"sync"
	"time"

	"github.com/BaSui01/crewflow/types"
)

// Entry is the registry's record of one execution.
type Entry struct {
	ExecutionID string                `json:"execution_id"`
	WorkflowID  string                `json:"workflow_id"`
	Status      types.ExecutionStatus `json:"status"`
	StartTime   time.Time             `json:"start_time"`
	EndTime     time.Time             `json:"end_time,omitempty"`
}

// Registry tracks executions for their full lifetime. Entries are never
// evicted; the terminal transition happens at most once per execution and
// later transition attempts are ignored. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Begin records a new running execution.
func (r *Registry) Begin(executionID, workflowID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[executionID] = &Entry{
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		Status:      types.ExecutionRunning,
		StartTime:   time.Now().UTC(),
	}
}

// Complete marks the execution completed. A no-op if the execution is
// unknown or already terminal.
func (r *Registry) Complete(executionID string) {
	r.finish(executionID, types.ExecutionCompleted)
}

// Fail marks the execution failed. A no-op if the execution is unknown or
// already terminal.
func (r *Registry) Fail(executionID string) {
	r.finish(executionID, types.ExecutionError)
}

func (r *Registry) finish(executionID string, status types.ExecutionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[executionID]
	if !ok || e.Status != types.ExecutionRunning {
		return
	}
	e.Status = status
	e.EndTime = time.Now().UTC()
}

// Get returns the entry for an execution id. The returned copy is safe to
// retain.
func (r *Registry) Get(executionID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[executionID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Active returns the executions still running.
func (r *Registry) Active() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Entry
	for _, e := range r.entries {
		if e.Status == types.ExecutionRunning {
			out = append(out, *e)
		}
	}
	return out
}
