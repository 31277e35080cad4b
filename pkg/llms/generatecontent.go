package llms

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnexpectedRole is returned when a message role is of an unexpected type.
var ErrUnexpectedRole = errors.New("unexpected role")

// Role is the author of a conversation turn.
type Role string

const (
	// RoleUser is a turn sent by the caller, including tool results.
	RoleUser Role = "user"
	// RoleAssistant is a turn produced by the model.
	RoleAssistant Role = "assistant"
)

// Validate returns ErrUnexpectedRole if the role is not user or assistant.
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return errors.WithMessagef(ErrUnexpectedRole, "%q", string(r))
	}
}

// Content block types, as named on the wire.
const (
	BlockTypeText       = "text"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
)

// ContentBlock is an interface all blocks of a message have to implement.
type ContentBlock interface {
	// BlockType returns the wire name of the block.
	BlockType() string
	isBlock()
}

// TextBlock is content with some text.
type TextBlock struct {
	Text string `json:"text"`
}

func (tb TextBlock) String() string {
	return tb.Text
}

// BlockType implements ContentBlock.
func (TextBlock) BlockType() string { return BlockTypeText }

func (TextBlock) isBlock() {}

// ToolUseBlock is a tool invocation requested by the model.
type ToolUseBlock struct {
	// ID is the opaque identifier assigned by the endpoint,
	// it must be echoed back in the matching ToolResultBlock.
	ID string `json:"id"`
	// Name is the name of the tool to invoke.
	Name string `json:"name"`
	// Input is the JSON object with the tool arguments.
	Input json.RawMessage `json:"input"`
}

// BlockType implements ContentBlock.
func (ToolUseBlock) BlockType() string { return BlockTypeToolUse }

func (ToolUseBlock) isBlock() {}

// ToolResultBlock is the output of a tool invocation, sent in a user turn.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

// BlockType implements ContentBlock.
func (ToolResultBlock) BlockType() string { return BlockTypeToolResult }

func (ToolResultBlock) isBlock() {}

// Message is one turn of the conversation.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// NewUserMessage returns a user turn with a single text block.
func NewUserMessage(text string) Message {
	return Message{
		Role:    RoleUser,
		Content: []ContentBlock{TextBlock{Text: text}},
	}
}

// NewAssistantMessage returns an assistant turn with the given blocks.
func NewAssistantMessage(blocks ...ContentBlock) Message {
	return Message{
		Role:    RoleAssistant,
		Content: blocks,
	}
}

// NewToolResultMessage returns a user turn carrying the result of the tool invocation with the given ID.
func NewToolResultMessage(toolUseID, content string) Message {
	return Message{
		Role: RoleUser,
		Content: []ContentBlock{
			ToolResultBlock{ToolUseID: toolUseID, Content: content},
		},
	}
}

// Text returns the concatenation of the text blocks.
func (m Message) Text() string {
	return joinText(m.Content)
}

// ToolUses returns the tool invocation blocks in order.
func (m Message) ToolUses() []ToolUseBlock {
	return toolUses(m.Content)
}

// ToolResults returns the tool result blocks in order.
func (m Message) ToolResults() []ToolResultBlock {
	var res []ToolResultBlock
	for _, b := range m.Content {
		if tr, ok := b.(ToolResultBlock); ok {
			res = append(res, tr)
		}
	}
	return res
}

// HasToolResults returns true if the message carries at least one tool result.
func (m Message) HasToolResults() bool {
	for _, b := range m.Content {
		if _, ok := b.(ToolResultBlock); ok {
			return true
		}
	}
	return false
}

func joinText(blocks []ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		if tb, ok := b.(TextBlock); ok {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(tb.Text)
		}
	}
	return sb.String()
}

func toolUses(blocks []ContentBlock) []ToolUseBlock {
	var res []ToolUseBlock
	for _, b := range blocks {
		if tu, ok := b.(ToolUseBlock); ok {
			res = append(res, tu)
		}
	}
	return res
}
