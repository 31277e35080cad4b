package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bibbit-ltd/tool-use/chatmodel"
	"github.com/bibbit-ltd/tool-use/orchestrator"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/llmutils"
)

var TimeNowFn = time.Now

type RunStats struct {
	ChatID string
	RunID  string

	Duration            time.Duration
	TotalMessages       uint32
	BytesOut            uint64
	BytesIn             uint64
	InputTokens         uint64
	OutputTokens        uint64
	Exchanges           uint32
	ExchangesSucceeded  uint32
	ExchangesFailed     uint32
	EndpointCalls       uint32
	ToolsCalls          uint32
	ToolsCallsSucceeded uint32
	ToolsCallsFailed    uint32
	ToolNotFound        uint32
}

// Scratchpad records the events of the runs, keyed by the chat ID of the context.
// Events for a context without a started run are ignored.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun starts recording the run of the chat in ctx.
func (l *Scratchpad) StartRun(ctx context.Context) {
	chatCtx := chatmodel.GetChatContext(ctx)
	if chatCtx == nil {
		return
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	r := &run{
		stats: RunStats{
			ChatID: chatCtx.GetChatID(),
			RunID:  chatCtx.RunID(),
		},
		chatCtx: chatCtx,
		started: time.Now(),
	}
	l.runs[chatCtx.GetChatID()] = r
	r.print("*** Run Started ***")
}

// EndRun stops recording and returns the stats and the output of the run.
func (l *Scratchpad) EndRun(ctx context.Context) (*RunStats, []byte) {
	run := l.getRun(ctx)
	if run == nil {
		return nil, nil
	}

	stats := run.stats
	stats.Duration = time.Since(run.started)

	run.print(fmt.Sprintf("Exchanges: %d, Failed: %d",
		stats.Exchanges,
		stats.ExchangesFailed,
	))
	run.print(fmt.Sprintf("Tool calls: %d, Failed: %d, Not Found: %d",
		stats.ToolsCalls,
		stats.ToolsCallsFailed,
		stats.ToolNotFound,
	))
	run.print(fmt.Sprintf("Endpoint calls: %d, Messages: %d, Bytes Out: %d, Bytes In: %d, Input Tokens: %d, Output Tokens: %d",
		stats.EndpointCalls,
		stats.TotalMessages,
		stats.BytesOut,
		stats.BytesIn,
		stats.InputTokens,
		stats.OutputTokens,
	))

	run.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	l.lock.Lock()
	delete(l.runs, run.chatCtx.GetChatID())
	l.lock.Unlock()

	return &stats, run.w.Bytes()
}

func (l *Scratchpad) getRun(ctx context.Context) *run {
	l.lock.Lock()
	defer l.lock.Unlock()

	chatCtx := chatmodel.GetChatContext(ctx)
	if chatCtx == nil {
		return nil
	}

	return l.runs[chatCtx.GetChatID()]
}

func (l *Scratchpad) OnExchangeStart(ctx context.Context, o *orchestrator.Orchestrator, turns []llms.Message) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.Exchanges, 1)
	run.print(o.Name(), "*** Exchange Start ***")
	if l.mode == ModeVerbose {
		run.print(o.Name(), printMessages(turns))
	}
}

func (l *Scratchpad) OnExchangeEnd(ctx context.Context, o *orchestrator.Orchestrator, resp *llms.Response) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ExchangesSucceeded, 1)
	if l.mode == ModeVerbose {
		run.print(o.Name(), "Output:", resp.Text())
	}
	run.print(o.Name(), "*** Exchange End ***", string(resp.StopReason))
}

func (l *Scratchpad) OnExchangeError(ctx context.Context, o *orchestrator.Orchestrator, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ExchangesFailed, 1)
	run.print(o.Name(), "*** Error ***", err.Error())
	run.print(o.Name(), printMessages(o.History()))
}

func (l *Scratchpad) OnEndpointCallStart(ctx context.Context, o *orchestrator.Orchestrator, req *llms.Request) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	atomic.AddUint64(&run.stats.BytesOut, llmutils.CountMessagesContentSize(req.Messages))
	atomic.AddUint32(&run.stats.EndpointCalls, 1)
	count := uint32(len(req.Messages))
	atomic.AddUint32(&run.stats.TotalMessages, count)

	run.print(o.Name(), "*** Endpoint Call ***", fmt.Sprintf("%s model, %d messages", req.Model, count))
	if l.mode == ModeVerbose {
		run.print(o.Name(), printMessages(req.Messages))
	}
}

func (l *Scratchpad) OnEndpointCallEnd(ctx context.Context, o *orchestrator.Orchestrator, resp *llms.Response) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	atomic.AddUint64(&run.stats.BytesIn, llmutils.CountResponseContentSize(resp))
	atomic.AddUint64(&run.stats.InputTokens, uint64(resp.Usage.InputTokens))
	atomic.AddUint64(&run.stats.OutputTokens, uint64(resp.Usage.OutputTokens))

	run.print(o.Name(), "*** Endpoint Call End ***", fmt.Sprintf("%s, %d input tokens, %d output tokens",
		resp.StopReason, resp.Usage.InputTokens, resp.Usage.OutputTokens))
}

func (l *Scratchpad) OnToolStart(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCalls, 1)
	run.print(o.Name(), call.Name, "*** Tool Start ***")
	run.print(o.Name(), call.Name, "Input:", string(call.Input))
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock, result string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsSucceeded, 1)
	if l.mode == ModeVerbose {
		run.print(o.Name(), call.Name, "Output:", result)
	}
	run.print(o.Name(), call.Name, "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsFailed, 1)
	run.print(o.Name(), call.Name, "*** Tool Error ***", err.Error())
}

func (l *Scratchpad) OnToolNotFound(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolNotFound, 1)
	run.print(o.Name(), "*** Tool Not Found ***", call.Name)
}

func printMessages(messages []llms.Message) string {
	var buf strings.Builder
	buf.WriteString("Messages:\n")
	for idx, msg := range messages {
		fmt.Fprintf(&buf, "[%d] %s:\n", idx, msg.Role)
		textParts := 0
		toolUses := 0
		toolResults := 0
		for _, block := range msg.Content {
			switch b := block.(type) {
			case llms.TextBlock:
				textParts++
			case llms.ToolUseBlock:
				toolUses++
				fmt.Fprintf(&buf, "  - tool_use %s %s: %s\n", b.ID, b.Name, string(b.Input))
			case llms.ToolResultBlock:
				toolResults++
				fmt.Fprintf(&buf, "  - tool_result %s: %s\n", b.ToolUseID, llmutils.Truncate(b.Content, 128))
			}
		}

		fmt.Fprintf(&buf, "  - %d texts, %d tool uses, %d tool results\n", textParts, toolUses, toolResults)
	}
	return buf.String()
}

type run struct {
	chatCtx chatmodel.ChatContext
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// [timestamp chatID.runID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	ts := TimeNowFn().Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.chatCtx.GetChatID())
	_, _ = r.w.WriteString(".")
	_, _ = r.w.WriteString(r.chatCtx.RunID())
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}
