// Package sandbox isolates agent-triggered work behind pluggable strategies.
//
// All strategies are polymorphic over one capability: run a task under
// isolation level L within timeout T and return a uniform result envelope.
// The execution engine never branches on sandbox type.
//
// Three strategies ship: none (inline, trusted/dev contexts only), process
// (per-task deadline with cooperative cancellation for in-process tasks and a
// killed subprocess for command tasks), and docker (command tasks in a
// disposable container with the resource limits applied).
package sandbox
