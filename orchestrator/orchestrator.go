package orchestrator

import (
	"context"
	"time"

	"github.com/bibbit-ltd/tool-use/chatmodel"
	"github.com/bibbit-ltd/tool-use/encoding"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/llmutils"
	"github.com/bibbit-ltd/tool-use/pkg/metricskey"
	"github.com/bibbit-ltd/tool-use/tools"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"golang.org/x/sync/errgroup"
)

var logger = xlog.NewPackageLogger("github.com/bibbit-ltd/tool-use", "orchestrator")

//go:generate mockgen -destination=../mocks/mockllms/endpoint_mock.gen.go -package mockllms github.com/bibbit-ltd/tool-use/pkg/llms Endpoint

var (
	// ErrMaxRoundTrips is returned when the model still requests tools after the configured number of endpoint calls.
	ErrMaxRoundTrips = errors.New("maximum round trips exceeded")
	// ErrNoTurns is returned when SendMessage is called without turns.
	ErrNoTurns = errors.New("no turns to send")
)

// Orchestrator sends conversation turns to the model endpoint,
// and runs the tools requested by the model until it produces a final answer.
//
// An Orchestrator serves one exchange at a time,
// concurrent SendMessage calls on the same instance are not supported.
type Orchestrator struct {
	endpoint llms.Endpoint
	registry *tools.Registry
	cfg      *Config
	callback Callback
	encoder  encoding.Encoder

	history []llms.Message
	chatID  string
	// configuration error returned by every SendMessage
	cfgErr error
	// registration error reported by the next SendMessage
	regErr error
}

// New returns an Orchestrator for the endpoint.
func New(endpoint llms.Endpoint, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		endpoint: endpoint,
		registry: tools.NewRegistry(),
		cfg:      NewConfig(opts...),
		callback: NoopCallback{},
		chatID:   chatmodel.NewChatID(),
	}
	if o.cfg.Callback != nil {
		o.callback = o.cfg.Callback
	}

	o.encoder, o.cfgErr = encoding.NewEncoder(o.cfg.ResultEncoding)
	return o
}

// RegisterTool adds the tool to the registry and returns the receiver for chaining.
// A tool with the same name is replaced.
// A malformed definition is not registered, the error is returned by the next SendMessage.
func (o *Orchestrator) RegisterTool(def *tools.Definition) *Orchestrator {
	if err := o.registry.Register(def); err != nil {
		logger.KV(xlog.ERROR,
			"orchestrator", o.cfg.Name,
			"status", "register_tool_failed",
			"err", err.Error(),
		)
		if o.regErr == nil {
			o.regErr = err
		}
	}
	return o
}

// Name returns the name of the orchestrator.
func (o *Orchestrator) Name() string {
	return o.cfg.Name
}

// ChatID returns the chat ID used for the transcript when the context does not carry one.
func (o *Orchestrator) ChatID() string {
	return o.chatID
}

// Config returns the configuration.
func (o *Orchestrator) Config() Config {
	return *o.cfg
}

// Tools returns the schemas of the registered tools in registration order.
func (o *Orchestrator) Tools() []llms.ToolSchema {
	return o.registry.Schemas()
}

// History returns a copy of the retained conversation history.
func (o *Orchestrator) History() []llms.Message {
	return append([]llms.Message(nil), o.history...)
}

// Reset discards the history and starts a new chat.
func (o *Orchestrator) Reset() {
	o.history = nil
	o.chatID = chatmodel.NewChatID()
}

// SendMessage sends the turns to the model and returns its final response.
//
// A single user turn without tool results starts a new exchange and discards the history,
// any other turns are appended to the history.
// While the model stops with `tool_use`, the requested tools run concurrently
// and their results are sent back as user turns.
func (o *Orchestrator) SendMessage(ctx context.Context, turns ...llms.Message) (*llms.Response, error) {
	started := time.Now()
	defer metricskey.PerfExchange.MeasureSince(started, o.cfg.Name)

	o.callback.OnExchangeStart(ctx, o, turns)

	resp, err := o.send(ctx, turns)
	if err != nil {
		metricskey.StatsExchangesFailed.IncrCounter(1, o.cfg.Name)
		logger.ContextKV(ctx, xlog.ERROR,
			"orchestrator", o.cfg.Name,
			"status", "exchange_failed",
			"err", err.Error(),
		)
		o.callback.OnExchangeError(ctx, o, err)
		return nil, err
	}

	metricskey.StatsExchangesSucceeded.IncrCounter(1, o.cfg.Name)
	o.callback.OnExchangeEnd(ctx, o, resp)
	return resp, nil
}

func (o *Orchestrator) send(ctx context.Context, turns []llms.Message) (*llms.Response, error) {
	if o.cfgErr != nil {
		return nil, o.cfgErr
	}
	if err := o.regErr; err != nil {
		o.regErr = nil
		return nil, err
	}
	if len(turns) == 0 {
		return nil, errors.WithStack(ErrNoTurns)
	}
	for i, turn := range turns {
		if err := turn.Role.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "turn %d", i)
		}
	}

	if isNewExchange(turns) {
		o.history = nil
	}
	o.history = append(o.history, turns...)
	// the transcript keeps the tool_use turns even when the history does not
	transcript := append([]llms.Message(nil), turns...)

	for round := 1; ; round++ {
		resp, err := o.call(ctx, round)
		if err != nil {
			return nil, err
		}

		if resp.StopReason == "" {
			return nil, llms.NewEndpointError("missing stop reason")
		}
		if resp.StopReason.IsFinal() {
			o.saveTranscript(ctx, append(transcript, resp.Message()))
			return resp, nil
		}

		uses := resp.ToolUses()
		if len(uses) == 0 {
			return nil, llms.NewEndpointError("stop reason %q without tool invocations", resp.StopReason)
		}
		if o.cfg.MaxRoundTrips > 0 && round >= o.cfg.MaxRoundTrips {
			return nil, errors.WithMessagef(ErrMaxRoundTrips, "%d", o.cfg.MaxRoundTrips)
		}

		results, err := o.executeTools(ctx, uses)
		if err != nil {
			return nil, err
		}

		if o.cfg.RetainAssistantTurns {
			o.history = append(o.history, resp.Message())
		}
		o.history = append(o.history, results...)
		transcript = append(transcript, resp.Message())
		transcript = append(transcript, results...)
	}
}

// isNewExchange returns true for a single top-level user turn.
func isNewExchange(turns []llms.Message) bool {
	return len(turns) == 1 &&
		turns[0].Role == llms.RoleUser &&
		!turns[0].HasToolResults()
}

// call sends the history to the endpoint
func (o *Orchestrator) call(ctx context.Context, round int) (*llms.Response, error) {
	name := o.cfg.Name
	model := o.cfg.Model

	req := &llms.Request{
		Model:     model,
		MaxTokens: o.cfg.MaxTokens,
		System:    o.cfg.SystemPrompt,
		Tools:     o.registry.Schemas(),
		Messages:  o.History(),
	}

	bytesSent := llmutils.CountMessagesContentSize(req.Messages)
	metricskey.StatsEndpointRequests.IncrCounter(1, name, model)
	metricskey.StatsEndpointMessagesSent.IncrCounter(float64(len(req.Messages)), name, model)
	metricskey.StatsEndpointBytesSent.IncrCounter(float64(bytesSent), name, model)

	logger.ContextKV(ctx, xlog.DEBUG,
		"orchestrator", name,
		"status", "endpoint_call",
		"round", round,
		"messages", len(req.Messages),
		"tools", len(req.Tools),
		"bytes", bytesSent,
	)

	o.callback.OnEndpointCallStart(ctx, o, req)

	started := time.Now()
	resp, err := o.endpoint.CreateMessage(ctx, req)
	metricskey.PerfEndpointCall.MeasureSince(started, name, model)
	if err == nil && resp == nil {
		err = llms.NewEndpointError("empty response")
	}
	if err != nil {
		metricskey.StatsEndpointErrors.IncrCounter(1, name, model)
		if !llms.IsEndpointError(err) {
			err = llms.WrapEndpointError(err, "endpoint call failed")
		}
		return nil, err
	}

	metricskey.StatsEndpointBytesReceived.IncrCounter(float64(llmutils.CountResponseContentSize(resp)), name, model)
	metricskey.StatsEndpointInputTokens.IncrCounter(float64(resp.Usage.InputTokens), name, model)
	metricskey.StatsEndpointOutputTokens.IncrCounter(float64(resp.Usage.OutputTokens), name, model)

	logger.ContextKV(ctx, xlog.DEBUG,
		"orchestrator", name,
		"status", "endpoint_response",
		"round", round,
		"stop_reason", resp.StopReason,
		"tool_uses", len(resp.ToolUses()),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)

	o.callback.OnEndpointCallEnd(ctx, o, resp)
	return resp, nil
}

// executeTools runs the tools concurrently and returns one tool result turn per invocation,
// in the order of the invocations.
// All tools are resolved before any of them runs.
// When tools fail, the first error is returned after all of them complete.
func (o *Orchestrator) executeTools(ctx context.Context, uses []llms.ToolUseBlock) ([]llms.Message, error) {
	defs := make([]*tools.Definition, len(uses))
	for i, use := range uses {
		def, err := o.registry.Resolve(use.Name)
		if err != nil {
			metricskey.StatsToolCallsNotFound.IncrCounter(1, use.Name)
			logger.ContextKV(ctx, xlog.WARNING,
				"orchestrator", o.cfg.Name,
				"status", "tool_not_found",
				"tool", use.Name,
				"available_tools", o.registry.Names(),
			)
			o.callback.OnToolNotFound(ctx, o, use)
			return nil, err
		}
		defs[i] = def
	}

	results := make([]llms.Message, len(uses))

	var g errgroup.Group
	if o.cfg.MaxParallelTools > 0 {
		g.SetLimit(o.cfg.MaxParallelTools)
	}
	for i, use := range uses {
		g.Go(func() error {
			content, err := o.callTool(ctx, defs[i], use)
			if err != nil {
				return err
			}
			results[i] = llms.NewToolResultMessage(use.ID, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// callTool runs the tool and encodes its result
func (o *Orchestrator) callTool(ctx context.Context, def *tools.Definition, use llms.ToolUseBlock) (string, error) {
	o.callback.OnToolStart(ctx, o, use)

	started := time.Now()
	res, err := def.Call(ctx, use.Input)
	metricskey.PerfToolCall.MeasureSince(started, use.Name)

	var content string
	if err == nil {
		content, err = encoding.EncodeResult(o.encoder, res)
		if err != nil {
			err = errors.Mark(errors.WithMessagef(err, "tool %q", use.Name), tools.ErrToolExecution)
		}
	}
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, use.Name)
		logger.ContextKV(ctx, xlog.ERROR,
			"orchestrator", o.cfg.Name,
			"status", "tool_failed",
			"tool", use.Name,
			"tool_use_id", use.ID,
			"input", slices.StringUpto(string(use.Input), 256),
			"err", err.Error(),
		)
		o.callback.OnToolError(ctx, o, use, err)
		return "", err
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, use.Name)
	logger.ContextKV(ctx, xlog.DEBUG,
		"orchestrator", o.cfg.Name,
		"status", "tool_called",
		"tool", use.Name,
		"tool_use_id", use.ID,
		"result_size", len(content),
	)
	o.callback.OnToolEnd(ctx, o, use, content)
	return content, nil
}

// saveTranscript appends the turns of the exchange to the store.
// Every tool_result turn is preceded by the assistant turn requesting it,
// so a stored transcript can be sent to the endpoint again.
// A store failure does not fail the exchange.
func (o *Orchestrator) saveTranscript(ctx context.Context, msgs []llms.Message) {
	if o.cfg.Store == nil {
		return
	}
	ctx = chatmodel.EnsureChatContext(ctx, chatmodel.DefaultTenantID, o.chatID)

	if err := o.cfg.Store.Add(ctx, msgs...); err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"orchestrator", o.cfg.Name,
			"status", "save_transcript_failed",
			"chat_id", chatmodel.GetChatID(ctx),
			"err", err.Error(),
		)
	}
}
