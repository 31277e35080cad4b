package llms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestMessage_UnmarshalJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    Message
		wantErr string
	}{
		{
			name:  "string content",
			input: `{"role":"user","content":"Hello, world!"}`,
			want: Message{
				Role:    RoleUser,
				Content: []ContentBlock{TextBlock{Text: "Hello, world!"}},
			},
		},
		{
			name: "blocks",
			input: `{"role":"assistant","content":[
				{"type":"text","text":"Let me check."},
				{"type":"tool_use","id":"toolu_1","name":"getWeather","input":{"location":"Paris"}}
			]}`,
			want: Message{
				Role: RoleAssistant,
				Content: []ContentBlock{
					TextBlock{Text: "Let me check."},
					ToolUseBlock{ID: "toolu_1", Name: "getWeather", Input: json.RawMessage(`{"location":"Paris"}`)},
				},
			},
		},
		{
			name:  "tool result",
			input: `{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_1","content":"sunny","is_error":true}]}`,
			want: Message{
				Role:    RoleUser,
				Content: []ContentBlock{ToolResultBlock{ToolUseID: "toolu_1", Content: "sunny", IsError: true}},
			},
		},
		{
			name:  "null content",
			input: `{"role":"user","content":null}`,
			want:  Message{Role: RoleUser},
		},
		{
			name:    "unknown type",
			input:   `{"role":"user","content":[{"type":"image"}]}`,
			wantErr: "unknown content type: 'image'",
		},
		{
			name:    "tool_use without id",
			input:   `{"role":"assistant","content":[{"type":"tool_use","name":"x"}]}`,
			wantErr: "id field is required for tool_use type",
		},
		{
			name:    "tool_result without id",
			input:   `{"role":"user","content":[{"type":"tool_result","content":"x"}]}`,
			wantErr: "tool_use_id field is required for tool_result type",
		},
		{
			name:    "content is object",
			input:   `{"role":"user","content":{}}`,
			wantErr: "content field must be a string or an array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got Message
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessage_MarshalJSON(t *testing.T) {
	t.Parallel()

	msg := Message{
		Role: RoleAssistant,
		Content: []ContentBlock{
			TextBlock{Text: "Let me check."},
			ToolUseBlock{ID: "toolu_1", Name: "getWeather"},
		},
	}
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"assistant","content":[
		{"type":"text","text":"Let me check."},
		{"type":"tool_use","id":"toolu_1","name":"getWeather","input":{}}
	]}`, string(b))

	res := NewToolResultMessage("toolu_1", "")
	b, err = json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_1","content":""}]}`, string(b))
}

func TestResponse_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	input := `{
		"id": "msg_01",
		"model": "claude-sonnet-4-5",
		"stop_reason": "tool_use",
		"content": [
			{"type":"text","text":"Checking both cities."},
			{"type":"tool_use","id":"a","name":"getWeather","input":{"location":"Paris"}},
			{"type":"tool_use","id":"b","name":"getWeather","input":{"location":"Rome"}}
		],
		"usage": {"input_tokens": 100, "output_tokens": 20}
	}`

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(input), &resp))
	assert.Equal(t, "msg_01", resp.ID)
	assert.Equal(t, StopReasonToolUse, resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 100, OutputTokens: 20}, resp.Usage)
	require.Len(t, resp.ToolUses(), 2)
	assert.JSONEq(t, `{"location":"Rome"}`, string(resp.ToolUses()[1].Input))

	// marshal back and read again
	b, err := json.Marshal(&resp)
	require.NoError(t, err)
	var resp2 Response
	require.NoError(t, json.Unmarshal(b, &resp2))
	assert.Equal(t, resp.StopReason, resp2.StopReason)
	assert.Len(t, resp2.Content, 3)

	err = json.Unmarshal([]byte(`{"stop_reason":"end_turn","content":[{"type":"bogus"}]}`), &resp2)
	assert.EqualError(t, err, "unknown content type: 'bogus'")
}

func TestMessage_YAML(t *testing.T) {
	t.Parallel()

	transcript := []Message{
		NewUserMessage("What is the weather in Paris?"),
		NewAssistantMessage(
			TextBlock{Text: "Let me check."},
			ToolUseBlock{ID: "toolu_1", Name: "get_weather", Input: json.RawMessage(`{"location":"Paris"}`)},
		),
		NewToolResultMessage("toolu_1", "sunny"),
	}

	b, err := yaml.Marshal(transcript)
	require.NoError(t, err)
	assert.Contains(t, string(b), "type: tool_use")
	assert.Contains(t, string(b), "tool_use_id: toolu_1")

	var got []Message
	require.NoError(t, yaml.Unmarshal(b, &got))
	assert.Equal(t, transcript, got)
}
