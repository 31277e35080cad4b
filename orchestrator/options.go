package orchestrator

import (
	"github.com/bibbit-ltd/tool-use/encoding"
	"github.com/bibbit-ltd/tool-use/store"
)

const (
	// DefaultName is the name of an orchestrator used in logs and metrics.
	DefaultName = "orchestrator"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-sonnet-4-5"
	// DefaultMaxTokens is the response token budget used when none is configured.
	DefaultMaxTokens = 1024
)

// Option is a function that can be used to modify the Orchestrator Config.
type Option func(*Config)

// Config is the configuration of the Orchestrator.
type Config struct {
	// Name identifies the orchestrator in logs and metrics.
	Name string
	// Model is the model identifier sent with every request.
	Model string
	// MaxTokens is the response token budget sent with every request.
	MaxTokens int64
	// SystemPrompt is the optional system prompt sent with every request.
	SystemPrompt string

	// MaxRoundTrips limits the number of endpoint calls in one SendMessage,
	// 0 means no limit.
	MaxRoundTrips int
	// MaxParallelTools limits the number of tools running at once,
	// 0 means all tools of a response run at once.
	MaxParallelTools int
	// ResultEncoding is the encoding of non-string tool results.
	ResultEncoding encoding.Mode
	// RetainAssistantTurns keeps the assistant tool_use turns in the history,
	// before the tool results.
	RetainAssistantTurns bool

	// Callback receives the exchange events, it may be nil.
	Callback Callback
	// Store receives the transcript of completed exchanges, it may be nil.
	Store store.MessageStore
}

// NewConfig returns the configuration with defaults applied.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Name:           DefaultName,
		Model:          DefaultModel,
		MaxTokens:      DefaultMaxTokens,
		ResultEncoding: encoding.ModeDefault,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithName sets the name used in logs and metrics.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithMaxTokens sets the response token budget.
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Config) {
		c.MaxTokens = maxTokens
	}
}

// WithSystemPrompt sets the system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// WithMaxRoundTrips limits the number of endpoint calls in one SendMessage.
// When the last allowed response still requests tools, SendMessage fails with ErrMaxRoundTrips.
// The default 0 means the loop continues until the model stops requesting tools.
func WithMaxRoundTrips(n int) Option {
	return func(c *Config) {
		c.MaxRoundTrips = n
	}
}

// WithMaxParallelTools limits the number of tools running at once.
func WithMaxParallelTools(n int) Option {
	return func(c *Config) {
		c.MaxParallelTools = n
	}
}

// WithResultEncoding sets the encoding of non-string tool results: json, yaml or toml.
func WithResultEncoding(mode encoding.Mode) Option {
	return func(c *Config) {
		c.ResultEncoding = mode
	}
}

// WithRetainAssistantTurns keeps the assistant tool_use turns in the history.
// Endpoints that require every tool_result to follow its tool_use need this option.
func WithRetainAssistantTurns(retain bool) Option {
	return func(c *Config) {
		c.RetainAssistantTurns = retain
	}
}

// WithCallback sets the callback handler.
func WithCallback(callback Callback) Option {
	return func(c *Config) {
		c.Callback = callback
	}
}

// WithStore sets the transcript store.
func WithStore(st store.MessageStore) Option {
	return func(c *Config) {
		c.Store = st
	}
}
