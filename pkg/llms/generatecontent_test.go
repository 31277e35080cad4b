package llms_test

import (
	"encoding/json"
	"testing"

	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Validate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, llms.RoleUser.Validate())
	assert.NoError(t, llms.RoleAssistant.Validate())

	err := llms.Role("system").Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, llms.ErrUnexpectedRole))
	assert.Contains(t, err.Error(), `"system"`)
}

func TestMessage_Constructors(t *testing.T) {
	t.Parallel()

	m := llms.NewUserMessage("What's the weather in Paris?")
	assert.Equal(t, llms.RoleUser, m.Role)
	assert.Equal(t, "What's the weather in Paris?", m.Text())
	assert.False(t, m.HasToolResults())
	assert.Empty(t, m.ToolUses())

	tr := llms.NewToolResultMessage("toolu_1", "sunny")
	assert.Equal(t, llms.RoleUser, tr.Role)
	assert.True(t, tr.HasToolResults())
	assert.Equal(t, []llms.ToolResultBlock{{ToolUseID: "toolu_1", Content: "sunny"}}, tr.ToolResults())
	assert.Empty(t, tr.Text())

	am := llms.NewAssistantMessage(
		llms.TextBlock{Text: "Let me check."},
		llms.ToolUseBlock{ID: "toolu_1", Name: "getWeather", Input: json.RawMessage(`{"location":"Paris"}`)},
		llms.TextBlock{Text: "One moment."},
	)
	assert.Equal(t, llms.RoleAssistant, am.Role)
	assert.Equal(t, "Let me check.\nOne moment.", am.Text())
	require.Len(t, am.ToolUses(), 1)
	assert.Equal(t, "getWeather", am.ToolUses()[0].Name)
}

func TestBlockType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		block llms.ContentBlock
		exp   string
	}{
		{llms.TextBlock{}, "text"},
		{llms.ToolUseBlock{}, "tool_use"},
		{llms.ToolResultBlock{}, "tool_result"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.exp, tc.block.BlockType())
	}
}

func TestResponse(t *testing.T) {
	t.Parallel()

	resp := &llms.Response{
		StopReason: llms.StopReasonToolUse,
		Content: []llms.ContentBlock{
			llms.ToolUseBlock{ID: "a", Name: "x"},
			llms.TextBlock{Text: "thinking"},
			llms.ToolUseBlock{ID: "b", Name: "y"},
		},
		Usage: llms.Usage{InputTokens: 10, OutputTokens: 5},
	}
	uses := resp.ToolUses()
	require.Len(t, uses, 2)
	assert.Equal(t, "a", uses[0].ID)
	assert.Equal(t, "b", uses[1].ID)
	assert.Equal(t, "thinking", resp.Text())
	assert.Equal(t, int64(15), resp.Usage.Total())

	msg := resp.Message()
	assert.Equal(t, llms.RoleAssistant, msg.Role)
	assert.Len(t, msg.Content, 3)
}

func TestStopReason_IsFinal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		reason llms.StopReason
		final  bool
	}{
		{llms.StopReasonToolUse, false},
		{llms.StopReasonEndTurn, true},
		{llms.StopReasonMaxTokens, true},
		{llms.StopReasonStopSequence, true},
		{llms.StopReasonPauseTurn, true},
		{llms.StopReasonRefusal, true},
		{"", false},
		{"something_new", true},
	}
	for _, tc := range tests {
		t.Run(string(tc.reason), func(t *testing.T) {
			assert.Equal(t, tc.final, tc.reason.IsFinal())
		})
	}
}

func TestEndpointErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := llms.WrapEndpointError(cause, "failed to call %s", "anthropic")
	require.Error(t, err)
	assert.True(t, llms.IsEndpointError(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to call anthropic: connection refused", err.Error())

	assert.NoError(t, llms.WrapEndpointError(nil, "ignored"))

	err = llms.NewEndpointError("tool_use response without tool invocations")
	assert.True(t, errors.Is(err, llms.ErrEndpoint))
	assert.False(t, llms.IsEndpointError(cause))
}
