// Package llmfactory loads the YAML configuration of an orchestrator,
// and creates the model endpoint, the transcript store and the orchestrator from it.
package llmfactory
