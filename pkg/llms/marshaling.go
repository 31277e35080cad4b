package llms

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// JSON models following the Anthropic Messages schema

// ContentBlockJSON represents the JSON structure for content blocks
type ContentBlockJSON struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// MessageJSON represents the JSON structure for Message.
// Content is either a string or an array of blocks.
type MessageJSON struct {
	Role    Role            `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ResponseJSON represents the JSON structure for Response
type ResponseJSON struct {
	ID         string             `json:"id,omitempty"`
	Model      string             `json:"model,omitempty"`
	StopReason StopReason         `json:"stop_reason"`
	Content    []ContentBlockJSON `json:"content"`
	Usage      Usage              `json:"usage"`
}

// MarshalJSON implements json.Marshaler for TextBlock
func (tb TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{
		Type: BlockTypeText,
		Text: tb.Text,
	})
}

// MarshalJSON implements json.Marshaler for ToolUseBlock
func (tu ToolUseBlock) MarshalJSON() ([]byte, error) {
	input := tu.Input
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	return json.Marshal(ContentBlockJSON{
		Type:  BlockTypeToolUse,
		ID:    tu.ID,
		Name:  tu.Name,
		Input: input,
	})
}

// MarshalJSON implements json.Marshaler for ToolResultBlock
func (tr ToolResultBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		ToolUseID string `json:"tool_use_id"`
		Content   string `json:"content"`
		IsError   bool   `json:"is_error,omitempty"`
	}{
		Type:      BlockTypeToolResult,
		ToolUseID: tr.ToolUseID,
		Content:   tr.Content,
		IsError:   tr.IsError,
	})
}

// UnmarshalJSON implements json.Unmarshaler for Message
func (m *Message) UnmarshalJSON(data []byte) error {
	var msgJSON MessageJSON
	if err := json.Unmarshal(data, &msgJSON); err != nil {
		return err
	}

	m.Role = msgJSON.Role
	m.Content = nil

	raw := bytes.TrimSpace(msgJSON.Content)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	// Handle special case: content as a plain string
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		m.Content = []ContentBlock{TextBlock{Text: text}}
		return nil
	}

	var blocks []ContentBlockJSON
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return errors.Wrap(err, "content field must be a string or an array")
	}

	content, err := UnmarshalContentBlocks(blocks)
	if err != nil {
		return err
	}
	m.Content = content
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Response
func (r *Response) UnmarshalJSON(data []byte) error {
	var respJSON ResponseJSON
	if err := json.Unmarshal(data, &respJSON); err != nil {
		return err
	}

	content, err := UnmarshalContentBlocks(respJSON.Content)
	if err != nil {
		return err
	}

	*r = Response{
		ID:         respJSON.ID,
		Model:      respJSON.Model,
		StopReason: respJSON.StopReason,
		Content:    content,
		Usage:      respJSON.Usage,
	}
	return nil
}

// UnmarshalContentBlocks converts ContentBlockJSON to ContentBlock
func UnmarshalContentBlocks(blocks []ContentBlockJSON) ([]ContentBlock, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	res := make([]ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		block, err := unmarshalContentBlock(b)
		if err != nil {
			return nil, err
		}
		res = append(res, block)
	}
	return res, nil
}

func unmarshalContentBlock(b ContentBlockJSON) (ContentBlock, error) {
	switch b.Type {
	case BlockTypeText, "":
		return TextBlock{Text: b.Text}, nil
	case BlockTypeToolUse:
		if b.ID == "" {
			return nil, errors.New("id field is required for tool_use type")
		}
		if b.Name == "" {
			return nil, errors.New("name field is required for tool_use type")
		}
		return ToolUseBlock{
			ID:    b.ID,
			Name:  b.Name,
			Input: b.Input,
		}, nil
	case BlockTypeToolResult:
		if b.ToolUseID == "" {
			return nil, errors.New("tool_use_id field is required for tool_result type")
		}
		return ToolResultBlock{
			ToolUseID: b.ToolUseID,
			Content:   b.Content,
			IsError:   b.IsError,
		}, nil
	default:
		return nil, errors.Newf("unknown content type: '%s'", b.Type)
	}
}
