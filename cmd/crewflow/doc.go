// Command crewflow executes agent workflows from the command line.
//
// Usage:
//
//	crewflow run --workflow wf.yaml --agents agents.yaml --input "text"
//	crewflow run --config config.yaml --workflow wf.yaml --agents agents.yaml
//	crewflow version
package main
