package llmutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"gopkg.in/yaml.v3"
)

// CleanJSON returns the JSON object or array embedded in bs,
// dropping any prose or code fences the model put around it,
// for example "Here you go: {json}".
func CleanJSON(bs []byte) []byte {
	start := firstIndex(bytes.IndexByte(bs, '{'), bytes.IndexByte(bs, '['))
	if start < 0 {
		return bs
	}
	bs = bs[start:]

	end := max(bytes.LastIndexByte(bs, '}'), bytes.LastIndexByte(bs, ']'))
	if end < 0 {
		return bs
	}
	return bs[:end+1]
}

// firstIndex returns the smallest non-negative index, or -1
func firstIndex(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	default:
		return min(a, b)
	}
}

// TrimBackticks removes ```json or ``` fences
func TrimBackticks(text string) string {
	_, after, ok := strings.Cut(text, "```")
	if !ok {
		return text
	}
	// skip the language tag, if any
	if nl := strings.IndexByte(after, '\n'); nl >= 0 && !strings.ContainsAny(after[:nl], "{[") {
		after = after[nl+1:]
	}
	if i := strings.LastIndex(after, "```"); i >= 0 {
		after = after[:i]
	}
	return strings.TrimSpace(after)
}

func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

func ToYAML(val any) string {
	js, _ := yaml.Marshal(val)
	return string(js)
}

// Truncate returns s limited to n bytes, with "..." appended when truncated.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// PrintMessages is a debugging helper for a conversation.
func PrintMessages(w io.Writer, msgs []llms.Message) {
	for _, m := range msgs {
		for _, b := range m.Content {
			fmt.Fprintf(w, "%s: ", strings.ToUpper(string(m.Role)))
			switch bb := b.(type) {
			case llms.TextBlock:
				fmt.Fprintln(w, bb.Text)
			case llms.ToolUseBlock:
				fmt.Fprintf(w, "ToolUse ID=%s, Name=%s, Input=%s\n", bb.ID, bb.Name, string(bb.Input))
			case llms.ToolResultBlock:
				fmt.Fprintf(w, "ToolResult ID=%s, IsError=%t, Content=%s\n", bb.ToolUseID, bb.IsError, bb.Content)
			default:
				fmt.Fprintf(w, "unknown block %T\n", bb)
			}
		}
	}
}

// CountMessagesContentSize counts the size of the content in the messages
func CountMessagesContentSize(msgs []llms.Message) uint64 {
	var size uint64
	for _, m := range msgs {
		size += uint64(len(m.Role))
		size += countBlocksSize(m.Content)
	}
	return size
}

// CountResponseContentSize counts the size of the content in the response
func CountResponseContentSize(resp *llms.Response) uint64 {
	if resp == nil {
		return 0
	}
	return countBlocksSize(resp.Content)
}

func countBlocksSize(blocks []llms.ContentBlock) uint64 {
	var size uint64
	for _, b := range blocks {
		switch bb := b.(type) {
		case llms.TextBlock:
			size += uint64(len(bb.Text))
		case llms.ToolUseBlock:
			size += uint64(len(bb.ID) + len(bb.Name) + len(bb.Input))
		case llms.ToolResultBlock:
			size += uint64(len(bb.ToolUseID) + len(bb.Content))
		}
	}
	return size
}
