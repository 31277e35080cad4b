package anthropic

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/schema"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
)

var (
	ErrMissingToken           = errors.New("anthropic: missing API key")
	ErrMissingModel           = errors.New("anthropic: model is required")
	ErrEmptyMessage           = errors.New("anthropic: message has no content")
	ErrUnsupportedContentType = errors.New("anthropic: unsupported content type")
)

// DefaultMaxTokens is used when the request does not set a token budget.
const DefaultMaxTokens = 4096

// LLM is the Anthropic Messages API endpoint.
type LLM struct {
	Client  *anthropic.Client
	Options *Options
}

var _ llms.Endpoint = (*LLM)(nil)

// New creates a new Anthropic endpoint using the official Anthropic SDK.
// The API key is never read from the environment, it must be provided with WithToken.
//
// Example usage:
//
//	llm, err := anthropic.New(
//	    anthropic.WithToken(cfg.Token),
//	    anthropic.WithModel("claude-sonnet-4-5"),
//	)
func New(opts ...Option) (*LLM, error) {
	options := &Options{
		BaseURL:    DefaultBaseURL,
		APIVersion: DefaultAPIVersion,
		HttpClient: http.DefaultClient,
		Timeout:    DefaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(options)
	}

	if len(options.Token) == 0 {
		return nil, ErrMissingToken
	}

	c := newClient(options)
	return &LLM{
		Client:  c,
		Options: options,
	}, nil
}

func newClient(options *Options) *anthropic.Client {
	sdkOpts := []option.RequestOption{
		option.WithAPIKey(options.Token),
		option.WithMaxRetries(options.MaxRetries),
	}

	if options.Timeout > 0 {
		sdkOpts = append(sdkOpts, option.WithRequestTimeout(options.Timeout))
	}
	if options.BaseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(options.BaseURL))
	}
	if options.HttpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(options.HttpClient))
	}
	if options.APIVersion != "" {
		sdkOpts = append(sdkOpts, option.WithHeader("anthropic-version", options.APIVersion))
	}
	if options.AnthropicBetaHeader != "" {
		sdkOpts = append(sdkOpts, option.WithHeader("anthropic-beta", options.AnthropicBetaHeader))
	}

	client := anthropic.NewClient(sdkOpts...)
	return &client
}

// GetProviderType implements the Endpoint interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderAnthropic
}

// CreateMessage implements the Endpoint interface.
// The request is sent once, retries on transient failures are controlled by WithMaxRetries.
func (o *LLM) CreateMessage(ctx context.Context, req *llms.Request) (*llms.Response, error) {
	params, err := ToParams(req, o.Options.Model)
	if err != nil {
		return nil, err
	}

	result, err := o.Client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, llms.WrapEndpointError(err, "anthropic: status %d", apiErr.StatusCode)
		}
		return nil, llms.WrapEndpointError(err, "anthropic: failed to create message")
	}

	return FromMessage(result)
}

// ToParams converts the request to Anthropic SDK parameters.
// The model defaults to defaultModel, and MaxTokens to DefaultMaxTokens.
func ToParams(req *llms.Request, defaultModel string) (anthropic.MessageNewParams, error) {
	model := values.StringsCoalesce(req.Model, defaultModel)
	if model == "" {
		return anthropic.MessageNewParams{}, ErrMissingModel
	}

	messages, err := ToMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  messages,
		MaxTokens: values.NumbersCoalesce(req.MaxTokens, DefaultMaxTokens),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: req.System,
			},
		}
	}

	if tools := ToTools(req.Tools); len(tools) > 0 {
		params.Tools = tools
	}
	return params, nil
}

// ToTools converts tool schemas to Anthropic SDK tool parameters.
// Returns nil if no tools are provided, which is handled gracefully by the API.
func ToTools(tools []llms.ToolSchema) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	sdkTools := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: "object",
		}

		if s := tool.InputSchema; s != nil {
			// Convert Properties from orderedmap to regular map for Anthropic SDK
			if s.Properties != nil {
				properties := make(map[string]any, s.Properties.Len())
				for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
					properties[pair.Key] = pair.Value
				}
				inputSchema.Properties = properties
			}
			if len(s.Required) > 0 {
				inputSchema.Required = s.Required
			}
			inputSchema.ExtraFields = schema.ExtraKeywords(s)
		}

		sdkTools[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: inputSchema,
			},
		}
	}
	return sdkTools
}

// ToMessages converts the history to Anthropic SDK message parameters.
// Consecutive messages with the same role are sent as one message.
func ToMessages(messages []llms.Message) ([]anthropic.MessageParam, error) {
	merged := MergeMessages(messages)

	chatMessages := make([]anthropic.MessageParam, 0, len(merged))
	for i, msg := range merged {
		if err := msg.Role.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "anthropic: message %d", i)
		}

		contents := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
		for _, block := range msg.Content {
			switch b := block.(type) {
			case llms.TextBlock:
				contents = append(contents, anthropic.NewTextBlock(b.Text))
			case llms.ToolUseBlock:
				input := b.Input
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				contents = append(contents, anthropic.NewToolUseBlock(b.ID, input, b.Name))
			case llms.ToolResultBlock:
				contents = append(contents, anthropic.NewToolResultBlock(b.ToolUseID, b.Content, b.IsError))
			default:
				return nil, errors.WithMessagef(ErrUnsupportedContentType, "%T", block)
			}
		}
		if len(contents) == 0 {
			return nil, errors.WithMessagef(ErrEmptyMessage, "message %d", i)
		}

		if msg.Role == llms.RoleAssistant {
			chatMessages = append(chatMessages, anthropic.NewAssistantMessage(contents...))
		} else {
			chatMessages = append(chatMessages, anthropic.NewUserMessage(contents...))
		}
	}
	return chatMessages, nil
}

// MergeMessages returns the messages with consecutive turns of the same role combined.
func MergeMessages(messages []llms.Message) []llms.Message {
	merged := make([]llms.Message, 0, len(messages))
	for _, msg := range messages {
		if n := len(merged); n > 0 && merged[n-1].Role == msg.Role {
			last := &merged[n-1]
			last.Content = append(append([]llms.ContentBlock(nil), last.Content...), msg.Content...)
			continue
		}
		merged = append(merged, msg)
	}
	return merged
}

// FromMessage converts the Anthropic SDK response.
func FromMessage(result *anthropic.Message) (*llms.Response, error) {
	if result == nil {
		return nil, llms.NewEndpointError("anthropic: no response")
	}

	resp := &llms.Response{
		ID:         result.ID,
		Model:      string(result.Model),
		StopReason: llms.StopReason(result.StopReason),
		Usage: llms.Usage{
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
		},
	}
	if resp.StopReason == "" {
		return nil, llms.NewEndpointError("anthropic: missing stop reason")
	}

	for _, contentBlock := range result.Content {
		switch content := contentBlock.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Content = append(resp.Content, llms.TextBlock{Text: content.Text})
		case anthropic.ToolUseBlock:
			argumentsJSON, err := json.Marshal(content.Input)
			if err != nil {
				return nil, llms.WrapEndpointError(err, "anthropic: failed to marshal tool use arguments")
			}
			resp.Content = append(resp.Content, llms.ToolUseBlock{
				ID:    content.ID,
				Name:  content.Name,
				Input: argumentsJSON,
			})
		default:
			return nil, errors.Mark(errors.WithMessagef(ErrUnsupportedContentType, "%T", content), llms.ErrEndpoint)
		}
	}
	return resp, nil
}
