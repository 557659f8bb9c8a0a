package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/crewflow/types"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	r.Begin("ex-1", "wf-1")

	entry, ok := r.Get("ex-1")
	require.True(t, ok)
	assert.Equal(t, types.ExecutionRunning, entry.Status)
	assert.Equal(t, "wf-1", entry.WorkflowID)
	assert.False(t, entry.StartTime.IsZero())
	assert.True(t, entry.EndTime.IsZero())

	r.Complete("ex-1")
	entry, _ = r.Get("ex-1")
	assert.Equal(t, types.ExecutionCompleted, entry.Status)
	assert.False(t, entry.EndTime.IsZero())
}

func TestRegistryTerminalTransitionIsFinal(t *testing.T) {
	r := NewRegistry()
	r.Begin("ex-1", "wf-1")
	r.Complete("ex-1")

	// A later failure attempt must not overwrite the terminal state.
	r.Fail("ex-1")
	entry, _ := r.Get("ex-1")
	assert.Equal(t, types.ExecutionCompleted, entry.Status)

	r.Begin("ex-2", "wf-1")
	r.Fail("ex-2")
	r.Complete("ex-2")
	entry, _ = r.Get("ex-2")
	assert.Equal(t, types.ExecutionError, entry.Status)
}

func TestRegistryUnknownIDsAreNoOps(t *testing.T) {
	r := NewRegistry()
	r.Complete("missing")
	r.Fail("missing")

	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestRegistryActive(t *testing.T) {
	r := NewRegistry()
	r.Begin("ex-1", "wf-1")
	r.Begin("ex-2", "wf-2")
	r.Begin("ex-3", "wf-1")
	r.Complete("ex-2")
	r.Fail("ex-3")

	active := r.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "ex-1", active[0].ExecutionID)

	// Terminal entries stay queryable.
	_, ok := r.Get("ex-2")
	assert.True(t, ok)
	_, ok = r.Get("ex-3")
	assert.True(t, ok)
}
