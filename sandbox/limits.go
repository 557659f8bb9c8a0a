package sandbox

import "runtime"

// ResourceLimits is the resource-limit policy attached to a strategy
// instance. Enforcement is platform-specific: the docker strategy passes the
// limits to the container runtime, the process and none strategies only
// expose them for querying.
type ResourceLimits struct {
	MaxMemoryMB   int `json:"max_memory_mb" yaml:"max_memory_mb"`
	MaxCPUPercent int `json:"max_cpu_percent" yaml:"max_cpu_percent"`
}

// DefaultResourceLimits returns the baseline policy.
func DefaultResourceLimits() ResourceLimits {
	return ResourceLimits{
		MaxMemoryMB:   512,
		MaxCPUPercent: 50,
	}
}

// withinLimits compares the Go runtime's current heap footprint against the
// memory bound. CPU share is not sampled in-process; it is enforced only by
// strategies that delegate to an OS-level runtime.
func (l ResourceLimits) withinLimits() bool {
	if l.MaxMemoryMB <= 0 {
		return true
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc <= uint64(l.MaxMemoryMB)*1024*1024
}
