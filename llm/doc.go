// Package llm defines the uniform text-generation capability the execution
// engine drives: one Generate call abstracting over every supported model
// provider.
//
// Ordinary provider failures (network faults, non-success statuses, missing
// credentials) never surface as Go errors. They are folded into the
// GenerateResult as a human-readable error string so a single agent's
// provider outage degrades the chain's content, not its control flow. The
// typed Fault field keeps such failures distinguishable downstream.
package llm
