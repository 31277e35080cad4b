package bedrockclient

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/schema"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestGetProvider(t *testing.T) {
	tests := []struct {
		name     string
		modelID  string
		expected string
	}{
		{
			name:     "Direct Anthropic model ID",
			modelID:  "anthropic.claude-3-sonnet-20240229-v1:0",
			expected: "anthropic",
		},
		{
			name:     "Inference Profile with US region",
			modelID:  "us.anthropic.claude-3-5-sonnet-20241022-v2:0",
			expected: "anthropic",
		},
		{
			name:     "Inference Profile with EU region",
			modelID:  "eu.anthropic.claude-3-haiku-20240307-v1:0",
			expected: "anthropic",
		},
		{
			name:     "Direct Amazon model ID",
			modelID:  "amazon.titan-text-premier-v1:0",
			expected: "amazon",
		},
		{
			name:     "Inference Profile with Amazon",
			modelID:  "us.amazon.nova-micro-v1:0",
			expected: "amazon",
		},
		{
			name:     "Direct Meta model ID",
			modelID:  "meta.llama3-2-1b-instruct-v1:0",
			expected: "meta",
		},
		{
			name:     "Inference Profile with Meta",
			modelID:  "us.meta.llama3-2-11b-instruct-v1:0",
			expected: "meta",
		},
		{
			name:     "Single part model ID",
			modelID:  "anthropic",
			expected: "anthropic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getProvider(tt.modelID)
			assert.Equal(t, tt.expected, result)
		})
	}
}

type fakeInvoker struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeInvoker) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

type weatherInput struct {
	Location string `json:"location"`
}

func TestCreateMessage(t *testing.T) {
	fake := &fakeInvoker{body: `{
		"id": "msg_bdrk_01",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5",
		"content": [{"type": "tool_use", "id": "toolu_01", "name": "get_weather", "input": {"location": "Paris"}}],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 50, "output_tokens": 20}
	}`}
	c := NewClient(fake, "")

	sc, err := schema.For[weatherInput]()
	require.NoError(t, err)

	modelID := "us.anthropic.claude-sonnet-4-5-v1:0"
	resp, err := c.CreateMessage(context.Background(), modelID, &llms.Request{
		System: "Be brief.",
		Tools:  []llms.ToolSchema{{Name: "get_weather", Description: "Get the weather", InputSchema: sc.Input}},
		Messages: []llms.Message{
			llms.NewUserMessage("What is the weather?"),
			llms.NewToolResultMessage("toolu_00", "unknown"),
		},
	})
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	assert.Equal(t, modelID, aws.ToString(fake.input.ModelId))
	assert.Equal(t, "application/json", aws.ToString(fake.input.ContentType))

	body := fake.input.Body
	assert.True(t, json.Valid(body))
	assert.Equal(t, AnthropicLatestVersion, gjson.GetBytes(body, "anthropic_version").String())
	assert.Equal(t, int64(DefaultMaxTokens), gjson.GetBytes(body, "max_tokens").Int())
	assert.Equal(t, "Be brief.", gjson.GetBytes(body, "system").String())
	assert.Equal(t, int64(1), gjson.GetBytes(body, "messages.#").Int())
	assert.Equal(t, "text", gjson.GetBytes(body, "messages.0.content.0.type").String())
	assert.Equal(t, "tool_result", gjson.GetBytes(body, "messages.0.content.1.type").String())
	assert.Equal(t, "toolu_00", gjson.GetBytes(body, "messages.0.content.1.tool_use_id").String())
	assert.Equal(t, "get_weather", gjson.GetBytes(body, "tools.0.name").String())
	assert.Equal(t, "object", gjson.GetBytes(body, "tools.0.input_schema.type").String())
	assert.Equal(t, "location", gjson.GetBytes(body, "tools.0.input_schema.required.0").String())

	assert.Equal(t, llms.StopReasonToolUse, resp.StopReason)
	assert.Equal(t, llms.Usage{InputTokens: 50, OutputTokens: 20}, resp.Usage)
	uses := resp.ToolUses()
	require.Len(t, uses, 1)
	assert.Equal(t, "toolu_01", uses[0].ID)
	assert.JSONEq(t, `{"location":"Paris"}`, string(uses[0].Input))
}

func TestCreateMessage_Errors(t *testing.T) {
	ctx := context.Background()
	req := &llms.Request{Messages: []llms.Message{llms.NewUserMessage("hi")}}
	modelID := "anthropic.claude-3-haiku-20240307-v1:0"

	_, err := NewClient(&fakeInvoker{}, "").CreateMessage(ctx, "amazon.titan-text-premier-v1:0", req)
	assert.True(t, errors.Is(err, ErrUnsupportedProvider))

	_, err = NewClient(&fakeInvoker{err: errors.New("throttled")}, "").CreateMessage(ctx, modelID, req)
	require.Error(t, err)
	assert.True(t, llms.IsEndpointError(err))
	assert.Contains(t, err.Error(), "throttled")

	tcases := []struct {
		body string
		err  string
	}{
		{body: `not json`, err: "bedrock: invalid response body"},
		{body: `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, err: "bedrock: Overloaded"},
		{body: `{"type":"message","content":[]}`, err: "bedrock: missing stop reason"},
		{body: `{"type":"message","stop_reason":null,"content":[{"type":"tool_use","id":"toolu_1","name":"t","input":{}}]}`, err: "bedrock: missing stop reason"},
		{body: `{"type":"message","stop_reason":"","content":[]}`, err: "bedrock: missing stop reason"},
		{body: `{"stop_reason":"end_turn","content":[{"type":"image"}]}`, err: "bedrock: failed to decode response: unknown content type: 'image'"},
	}
	for _, tc := range tcases {
		_, err = NewClient(&fakeInvoker{body: tc.body}, "").CreateMessage(ctx, modelID, req)
		require.Error(t, err, tc.body)
		assert.True(t, llms.IsEndpointError(err), tc.body)
		assert.EqualError(t, err, tc.err)
	}

	_, err = NewClient(&fakeInvoker{}, "").CreateMessage(ctx, modelID, &llms.Request{
		Messages: []llms.Message{{Role: "system", Content: []llms.ContentBlock{llms.TextBlock{Text: "x"}}}},
	})
	assert.True(t, errors.Is(err, llms.ErrUnexpectedRole))
}

func TestToAnthropicTools(t *testing.T) {
	assert.Nil(t, toAnthropicTools(nil))

	list := toAnthropicTools([]llms.ToolSchema{
		{
			Name: "lookup",
			InputSchema: schema.MustFromAny(map[string]any{
				"type":                 "object",
				"description":          "Lookup request",
				"additionalProperties": false,
				"properties": map[string]any{
					"id": map[string]any{"type": "string"},
				},
				"required": []string{"id"},
			}),
		},
		{Name: "no_schema"},
	})
	require.Len(t, list, 2)

	js, err := json.Marshal(list)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{
			"name": "lookup",
			"description": "",
			"input_schema": {
				"type": "object",
				"description": "Lookup request",
				"additionalProperties": false,
				"properties": {"id": {"type": "string"}},
				"required": ["id"]
			}
		},
		{"name": "no_schema", "description": "", "input_schema": {"type": "object"}}
	]`, string(js))
}
