// Package tools defines the tools a model can call: a Definition with its input schema and handler,
// typed tools built from Go structs, and the Registry used by the orchestrator.
package tools
