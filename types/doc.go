// Package types defines the core domain model shared by every CrewFlow
// package: agents, workflow graphs, execution records, and the unified
// structured error type.
//
// The types package is the lowest-level package with no internal dependencies,
// so placing the shared contracts here avoids circular imports.
package types
