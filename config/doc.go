// Package config loads runtime configuration for the workflow engine.
// Precedence is defaults, then an optional YAML file, then environment
// variables. Components receive only their own configuration section;
// provider credentials are read through an explicit access grant so secrets
// do not leak into logs or unrelated code paths.
package config
