package llmutils_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/llmutils"
	"github.com/stretchr/testify/assert"
)

func Test_CleanJSON(t *testing.T) {
	llmOutput := "\n```json\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"
	clean := llmutils.CleanJSON([]byte(llmOutput))
	assert.Equal(t, "{\"city\": \"Paris\", \"country\": \"France\"}", string(clean))

	llmOutput = "Here you go:\n```json\n\n[{\"city\": \"Paris\"}]\n```\n\n"
	clean = llmutils.CleanJSON([]byte(llmOutput))
	assert.Equal(t, "[{\"city\": \"Paris\"}]", string(clean))

	assert.Equal(t, "no json", string(llmutils.CleanJSON([]byte("no json"))))
	assert.Equal(t, "{ broken", string(llmutils.CleanJSON([]byte("x { broken"))))
}

func Test_TrimBackticks(t *testing.T) {
	expected := "{\"city\": \"Paris\", \"country\": \"France\"}"

	assert.Equal(t, expected, llmutils.TrimBackticks("\n```json\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))
	assert.Equal(t, expected, llmutils.TrimBackticks(expected))
	assert.Equal(t, expected, llmutils.TrimBackticks("\n```\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))
	assert.Equal(t, expected, llmutils.TrimBackticks("\n```{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))
}

func Test_ToJSON(t *testing.T) {
	v := map[string]any{"temp": 21}
	assert.Equal(t, `{"temp":21}`, llmutils.ToJSON(v))
	assert.Equal(t, "{\n\t\"temp\": 21\n}", llmutils.ToJSONIndent(v))
	assert.Equal(t, "temp: 21\n", llmutils.ToYAML(v))
}

func Test_Truncate(t *testing.T) {
	assert.Equal(t, "hello", llmutils.Truncate("hello", 0))
	assert.Equal(t, "hello", llmutils.Truncate("hello", 5))
	assert.Equal(t, "hel...", llmutils.Truncate("hello", 3))
}

func Test_CountContentSize(t *testing.T) {
	msgs := []llms.Message{
		llms.NewUserMessage("Hello"),
		llms.NewAssistantMessage(llms.ToolUseBlock{ID: "1", Name: "ab", Input: json.RawMessage(`{}`)}),
		llms.NewToolResultMessage("1", "xyz"),
	}
	// user(4)+5 + assistant(9)+1+2+2 + user(4)+1+3
	assert.Equal(t, uint64(31), llmutils.CountMessagesContentSize(msgs))

	resp := &llms.Response{Content: []llms.ContentBlock{llms.TextBlock{Text: "Hello world"}}}
	assert.Equal(t, uint64(11), llmutils.CountResponseContentSize(resp))
	assert.Equal(t, uint64(0), llmutils.CountResponseContentSize(nil))
}

func TestPrintMessages(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		messages []llms.Message
		expected string
	}{
		{
			name:     "No messages",
			messages: []llms.Message{},
			expected: "",
		},
		{
			name: "Mixed messages",
			messages: []llms.Message{
				llms.NewUserMessage("What's the weather in Paris?"),
				llms.NewAssistantMessage(
					llms.TextBlock{Text: "Let me check."},
					llms.ToolUseBlock{ID: "1", Name: "getWeather", Input: json.RawMessage(`{"location":"Paris"}`)},
				),
				llms.NewToolResultMessage("1", "sunny"),
			},
			expected: `USER: What's the weather in Paris?
ASSISTANT: Let me check.
ASSISTANT: ToolUse ID=1, Name=getWeather, Input={"location":"Paris"}
USER: ToolResult ID=1, IsError=false, Content=sunny
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf strings.Builder
			llmutils.PrintMessages(&buf, tc.messages)
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}
