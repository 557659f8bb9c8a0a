// Package workflow turns a workflow's node/edge graph into an ordered
// execution plan.
//
// The Graph type is a pure structural view over a types.Workflow: node and
// edge iteration plus id lookups, with no validation. Duplicate node ids,
// dangling edge endpoints and cycles are tolerated at that layer and handled
// by the Planner.
//
// The Planner produces a staged plan. Workflows without edges fall back to
// node insertion order, one step per stage. Workflows that encode
// dependencies via edges are topologically sorted; nodes with no ordering
// dependency between them share a stage and are parallel-eligible. Cycles and
// edges referencing missing nodes fail the plan before any provider call is
// made.
package workflow
