package orchestrator

import (
	"context"

	"github.com/bibbit-ltd/tool-use/pkg/llms"
)

// Callback receives the events of an exchange.
// Tool events are reported from the goroutines running the tools,
// implementations must be safe for concurrent use.
type Callback interface {
	OnExchangeStart(ctx context.Context, o *Orchestrator, turns []llms.Message)
	OnExchangeEnd(ctx context.Context, o *Orchestrator, resp *llms.Response)
	OnExchangeError(ctx context.Context, o *Orchestrator, err error)

	OnEndpointCallStart(ctx context.Context, o *Orchestrator, req *llms.Request)
	OnEndpointCallEnd(ctx context.Context, o *Orchestrator, resp *llms.Response)

	OnToolStart(ctx context.Context, o *Orchestrator, call llms.ToolUseBlock)
	OnToolEnd(ctx context.Context, o *Orchestrator, call llms.ToolUseBlock, result string)
	OnToolError(ctx context.Context, o *Orchestrator, call llms.ToolUseBlock, err error)
	OnToolNotFound(ctx context.Context, o *Orchestrator, call llms.ToolUseBlock)
}

// NoopCallback does nothing.
type NoopCallback struct{}

var _ Callback = NoopCallback{}

func (NoopCallback) OnExchangeStart(context.Context, *Orchestrator, []llms.Message) {}
func (NoopCallback) OnExchangeEnd(context.Context, *Orchestrator, *llms.Response) {}
func (NoopCallback) OnExchangeError(context.Context, *Orchestrator, error) {}
func (NoopCallback) OnEndpointCallStart(context.Context, *Orchestrator, *llms.Request) {}
func (NoopCallback) OnEndpointCallEnd(context.Context, *Orchestrator, *llms.Response) {}
func (NoopCallback) OnToolStart(context.Context, *Orchestrator, llms.ToolUseBlock) {}
func (NoopCallback) OnToolEnd(context.Context, *Orchestrator, llms.ToolUseBlock, string) {}
func (NoopCallback) OnToolError(context.Context, *Orchestrator, llms.ToolUseBlock, error) {}
func (NoopCallback) OnToolNotFound(context.Context, *Orchestrator, llms.ToolUseBlock) {}
