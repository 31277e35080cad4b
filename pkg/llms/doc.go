// Package llms defines the conversation model shared by the orchestrator and
// the model endpoints: roles, content blocks, messages, requests and responses.
//
// Each subpackage implements the Endpoint interface for one provider.
// The wire protocol is the Anthropic Messages API: a request carries the model,
// max_tokens, optional system prompt, tool schemas and the conversation,
// and a response carries content blocks and a stop reason.
//
// The `generatecontent.go` file contains the message and content block types.
//
// The `options.go` file contains the request, tool schema and response types.
package llms
