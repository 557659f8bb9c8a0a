// Package engine runs workflows end to end: it plans the graph, chains
// agent outputs through the LLM gateway stage by stage, records an audit
// trail, and tracks live executions in a registry. Engines are explicit
// instances; construct one per deployment and share it across goroutines.
package engine
