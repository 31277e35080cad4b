package llms

import (
	"github.com/invopop/jsonschema"
)

// ToolSchema is the description of a tool advertised to the model.
type ToolSchema struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *jsonschema.Schema `json:"input_schema"`
}

// Request is a single call to the model endpoint.
type Request struct {
	// Model is the identifier of the model.
	Model string `json:"model"`
	// MaxTokens is the response token budget.
	MaxTokens int64 `json:"max_tokens"`
	// System is the optional system prompt.
	System string `json:"system,omitempty"`
	// Tools are all tools available to the model.
	Tools []ToolSchema `json:"tools,omitempty"`
	// Messages is the full conversation history.
	Messages []Message `json:"messages"`
}

// StopReason is the reason the model stopped generating.
type StopReason string

const (
	// StopReasonEndTurn is the natural end of the model turn.
	StopReasonEndTurn StopReason = "end_turn"
	// StopReasonToolUse means the model requests one or more tool invocations.
	StopReasonToolUse StopReason = "tool_use"
	// StopReasonMaxTokens means the response hit the token budget.
	StopReasonMaxTokens StopReason = "max_tokens"
	// StopReasonStopSequence means a stop sequence was generated.
	StopReasonStopSequence StopReason = "stop_sequence"
	// StopReasonPauseTurn means a long running turn was paused.
	StopReasonPauseTurn StopReason = "pause_turn"
	// StopReasonRefusal means the model declined to answer.
	StopReasonRefusal StopReason = "refusal"
)

// IsFinal returns true for every stop reason other than tool_use.
// A missing stop reason is not final.
func (s StopReason) IsFinal() bool {
	return s != "" && s != StopReasonToolUse
}

// Usage is the token accounting of a response.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Total returns the sum of input and output tokens.
func (u Usage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// Response is the model's reply to a Request.
type Response struct {
	ID         string         `json:"id,omitempty"`
	Model      string         `json:"model,omitempty"`
	StopReason StopReason     `json:"stop_reason"`
	Content    []ContentBlock `json:"content"`
	Usage      Usage          `json:"usage"`
}

// Text returns the concatenation of the text blocks.
func (r *Response) Text() string {
	return joinText(r.Content)
}

// ToolUses returns the tool invocation blocks in order.
func (r *Response) ToolUses() []ToolUseBlock {
	return toolUses(r.Content)
}

// Message returns the response as an assistant turn.
func (r *Response) Message() Message {
	return NewAssistantMessage(r.Content...)
}
