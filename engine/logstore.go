package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BaSui01/crewflow/types"
)

// LogStore is an append-only in-memory audit trail of execution log entries.
// Entries get server-assigned ids and timestamps on append and are immutable
// afterwards. Safe for concurrent use.
type LogStore struct {
	mu sync.RWMutex
	// MaxEntries, when positive, bounds the store; the oldest entries are
	// dropped first. Zero means unbounded.
	maxEntries int
	entries    []types.ExecutionLog
}

// NewLogStore creates an unbounded store.
func NewLogStore() *LogStore {
	return &LogStore{}
}

// NewBoundedLogStore creates a store that retains at most maxEntries entries.
func NewBoundedLogStore(maxEntries int) *LogStore {
	return &LogStore{maxEntries: maxEntries}
}

// Append records one entry, assigning its id and timestamp. The stored entry
// is returned.
func (s *LogStore) Append(workflowID, agentID string, level types.LogLevel, message string, metadata map[string]any) types.ExecutionLog {
	entry := types.ExecutionLog{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		AgentID:    agentID,
		Timestamp:  time.Now().UTC(),
		Level:      level,
		Message:    message,
		Metadata:   metadata,
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		overflow := len(s.entries) - s.maxEntries
		s.entries = append(s.entries[:0:0], s.entries[overflow:]...)
	}
	s.mu.Unlock()

	return entry
}

// Logs returns the retained entries for one workflow in append order.
func (s *LogStore) Logs(workflowID string) []types.ExecutionLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.ExecutionLog
	for _, e := range s.entries {
		if e.WorkflowID == workflowID {
			out = append(out, e)
		}
	}
	return out
}

// All returns every retained entry in append order.
func (s *LogStore) All() []types.ExecutionLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.ExecutionLog(nil), s.entries...)
}

// Len returns the number of retained entries.
func (s *LogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
