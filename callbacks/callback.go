package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bibbit-ltd/tool-use/orchestrator"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/llmutils"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ orchestrator.Callback = (*Printer)(nil)
	_ orchestrator.Callback = (*PackageLogger)(nil)
	_ orchestrator.Callback = (*Fanout)(nil)
	_ orchestrator.Callback = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []orchestrator.Callback
}

func NewFanout(callbacks ...orchestrator.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

// Add appends the callback, it must be called before the Fanout is used.
func (l *Fanout) Add(callback orchestrator.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnExchangeStart(ctx context.Context, o *orchestrator.Orchestrator, turns []llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnExchangeStart(ctx, o, turns)
	}
}

func (l *Fanout) OnExchangeEnd(ctx context.Context, o *orchestrator.Orchestrator, resp *llms.Response) {
	for _, callback := range l.callbacks {
		callback.OnExchangeEnd(ctx, o, resp)
	}
}

func (l *Fanout) OnExchangeError(ctx context.Context, o *orchestrator.Orchestrator, err error) {
	for _, callback := range l.callbacks {
		callback.OnExchangeError(ctx, o, err)
	}
}

func (l *Fanout) OnEndpointCallStart(ctx context.Context, o *orchestrator.Orchestrator, req *llms.Request) {
	for _, callback := range l.callbacks {
		callback.OnEndpointCallStart(ctx, o, req)
	}
}

func (l *Fanout) OnEndpointCallEnd(ctx context.Context, o *orchestrator.Orchestrator, resp *llms.Response) {
	for _, callback := range l.callbacks {
		callback.OnEndpointCallEnd(ctx, o, resp)
	}
}

func (l *Fanout) OnToolStart(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, o, call)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock, result string) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, o, call, result)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, o, call, err)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, o, call)
	}
}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnExchangeStart(ctx context.Context, o *orchestrator.Orchestrator, turns []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Exchange Start: %s, %d turns\n", o.Name(), len(turns))
	if l.Mode == ModeVerbose {
		llmutils.PrintMessages(l.Out, turns)
	}
}

func (l *Printer) OnExchangeEnd(ctx context.Context, o *orchestrator.Orchestrator, resp *llms.Response) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Exchange End: %s: %s\n", o.Name(), resp.StopReason)
	if l.Mode == ModeVerbose {
		if text := resp.Text(); text != "" {
			fmt.Fprintln(l.Out, text)
		}
	}
}

func (l *Printer) OnExchangeError(ctx context.Context, o *orchestrator.Orchestrator, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Exchange Error: %s: %s\n", o.Name(), err.Error())
}

func (l *Printer) OnEndpointCallStart(ctx context.Context, o *orchestrator.Orchestrator, req *llms.Request) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Endpoint Call: %s: %s model, %d messages, %d tools\n", o.Name(), req.Model, len(req.Messages), len(req.Tools))
}

func (l *Printer) OnEndpointCallEnd(ctx context.Context, o *orchestrator.Orchestrator, resp *llms.Response) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Endpoint Call End: %s: %s, %d tool uses\n", o.Name(), resp.StopReason, len(resp.ToolUses()))
}

func (l *Printer) OnToolStart(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s (%s)\n", call.Name, call.ID)
	fmt.Fprintf(l.Out, "Input: %s\n", string(call.Input))
}

func (l *Printer) OnToolEnd(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock, result string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s (%s)\n", call.Name, call.ID)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", result)
	}
}

func (l *Printer) OnToolError(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s (%s): %s\n", call.Name, call.ID, err.Error())
}

func (l *Printer) OnToolNotFound(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Not Found: %s\n", call.Name)
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnExchangeStart(ctx context.Context, o *orchestrator.Orchestrator, turns []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "exchange_start",
		"orchestrator", o.Name(),
		"turns", len(turns),
	)
}

func (l *PackageLogger) OnExchangeEnd(ctx context.Context, o *orchestrator.Orchestrator, resp *llms.Response) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "exchange_end",
		"orchestrator", o.Name(),
		"stop_reason", resp.StopReason,
		"result", llmutils.Truncate(resp.Text(), 256),
	)
}

func (l *PackageLogger) OnExchangeError(ctx context.Context, o *orchestrator.Orchestrator, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "exchange_error",
		"orchestrator", o.Name(),
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnEndpointCallStart(ctx context.Context, o *orchestrator.Orchestrator, req *llms.Request) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "endpoint_call_start",
		"orchestrator", o.Name(),
		"model", req.Model,
		"messages", len(req.Messages),
	)
}

func (l *PackageLogger) OnEndpointCallEnd(ctx context.Context, o *orchestrator.Orchestrator, resp *llms.Response) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "endpoint_call_end",
		"orchestrator", o.Name(),
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
}

func (l *PackageLogger) OnToolStart(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"orchestrator", o.Name(),
		"tool", call.Name,
		"tool_use_id", call.ID,
		"input", string(call.Input),
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock, result string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"orchestrator", o.Name(),
		"tool", call.Name,
		"tool_use_id", call.ID,
		"output", llmutils.Truncate(result, 256),
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"orchestrator", o.Name(),
		"tool", call.Name,
		"tool_use_id", call.ID,
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, o *orchestrator.Orchestrator, call llms.ToolUseBlock) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_not_found",
		"orchestrator", o.Name(),
		"tool", call.Name,
	)
}
