package bedrockclient

import (
	"context"
	"encoding/json"
	"maps"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/schema"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Ref: https://docs.aws.amazon.com/bedrock/latest/userguide/model-parameters-anthropic-claude-messages.html
// Also: https://docs.anthropic.com/claude/reference/messages_post

// anthropicTool represents a tool that can be used by the model
type anthropicTool struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	InputSchema anthropicInputSchema `json:"input_schema"`
}

// anthropicInputSchema represents the JSON schema for tool input
type anthropicInputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
	// Extra keywords such as additionalProperties
	Extra map[string]any `json:"-"`
}

func (s anthropicInputSchema) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s.Extra)+3)
	maps.Copy(m, s.Extra)
	m["type"] = s.Type
	if len(s.Properties) > 0 {
		m["properties"] = s.Properties
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return json.Marshal(m)
}

// anthropicMessagesInput is the input to the model.
type anthropicMessagesInput struct {
	// The version of the Messages format. Required
	AnthropicVersion string `json:"anthropic_version"`
	// The maximum number of tokens to generate per result. Required
	MaxTokens int64 `json:"max_tokens"`
	// The system prompt to use. Optional
	System string `json:"system,omitempty"`
	// The messages to use. Required
	// Content blocks are encoded with their `type` discriminator.
	Messages []llms.Message `json:"messages"`
	// Tools to use. Optional
	Tools []anthropicTool `json:"tools,omitempty"`
}

// The latest version of the Messages format on Bedrock.
const (
	AnthropicLatestVersion = "bedrock-2023-05-31"
)

// DefaultMaxTokens is used when the request does not set a token budget.
const DefaultMaxTokens = 2048

func toAnthropicTools(tools []llms.ToolSchema) []anthropicTool {
	if len(tools) == 0 {
		return nil
	}
	list := make([]anthropicTool, len(tools))
	for i, tool := range tools {
		list[i] = anthropicTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: anthropicInputSchema{Type: "object"},
		}
		s := tool.InputSchema
		if s == nil {
			continue
		}
		if s.Properties != nil {
			properties := make(map[string]any, s.Properties.Len())
			for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
				properties[pair.Key] = pair.Value
			}
			list[i].InputSchema.Properties = properties
		}
		list[i].InputSchema.Required = s.Required
		list[i].InputSchema.Extra = schema.ExtraKeywords(s)
	}
	return list
}

// mergeMessages combines consecutive turns of the same role.
func mergeMessages(messages []llms.Message) []llms.Message {
	merged := make([]llms.Message, 0, len(messages))
	for _, msg := range messages {
		if n := len(merged); n > 0 && merged[n-1].Role == msg.Role {
			merged[n-1].Content = append(append([]llms.ContentBlock(nil), merged[n-1].Content...), msg.Content...)
			continue
		}
		merged = append(merged, msg)
	}
	return merged
}

func (c *Client) anthropicBody(req *llms.Request) ([]byte, error) {
	for i, msg := range req.Messages {
		if err := msg.Role.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "bedrock: message %d", i)
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	input := anthropicMessagesInput{
		AnthropicVersion: c.anthropicVersion,
		MaxTokens:        maxTokens,
		System:           req.System,
		Messages:         mergeMessages(req.Messages),
		Tools:            toAnthropicTools(req.Tools),
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, errors.Wrap(err, "bedrock: failed to encode request")
	}
	return body, nil
}

func (c *Client) createAnthropicMessage(ctx context.Context, modelID string, req *llms.Request) (*llms.Response, error) {
	body, err := c.anthropicBody(req)
	if err != nil {
		return nil, err
	}

	modelInput := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Accept:      aws.String("*/*"),
		ContentType: aws.String("application/json"),
		Body:        body,
	}
	resp, err := c.client.InvokeModel(ctx, modelInput)
	if err != nil {
		return nil, llms.WrapEndpointError(err, "bedrock: failed to invoke model")
	}

	return parseAnthropicOutput(resp.Body)
}

func parseAnthropicOutput(body []byte) (*llms.Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, llms.NewEndpointError("bedrock: invalid response body")
	}
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return nil, llms.NewEndpointError("bedrock: %s", msg.String())
	}
	if sr := gjson.GetBytes(body, "stop_reason"); sr.Type != gjson.String || sr.Str == "" {
		return nil, llms.NewEndpointError("bedrock: missing stop reason")
	}

	var output llms.Response
	if err := json.Unmarshal(body, &output); err != nil {
		return nil, llms.WrapEndpointError(err, "bedrock: failed to decode response")
	}
	return &output, nil
}
