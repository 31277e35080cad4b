package llmfactory

import (
	"context"
	"strings"
	"time"

	"github.com/bibbit-ltd/tool-use/orchestrator"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/llms/anthropic"
	"github.com/bibbit-ltd/tool-use/pkg/llms/bedrock"
	"github.com/bibbit-ltd/tool-use/pkg/prompts"
	"github.com/bibbit-ltd/tool-use/store"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

var logger = xlog.NewPackageLogger("github.com/bibbit-ltd/tool-use", "llmfactory")

// NewEndpoint is a wrapper for CreateEndpoint to allow for overriding the default implementation.
var NewEndpoint = CreateEndpoint

// CreateEndpoint returns the endpoint of the configured provider.
func CreateEndpoint(ctx context.Context, cfg *Config) (llms.Endpoint, error) {
	provType := strings.ToUpper(cfg.Provider)
	switch provType {
	case ProviderAnthropic:
		return newAnthropic(cfg)
	case ProviderBedrock:
		return newBedrock(ctx, cfg)
	}
	return nil, errors.Errorf("unsupported provider type: %s", provType)
}

func newAnthropic(cfg *Config) (llms.Endpoint, error) {
	ac := cfg.Anthropic
	opts := []anthropic.Option{
		anthropic.WithToken(ac.Token),
		anthropic.WithMaxRetries(ac.MaxRetries),
	}
	if cfg.Model != "" {
		opts = append(opts, anthropic.WithModel(cfg.Model))
	}
	if ac.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(ac.BaseURL))
	}
	if ac.APIVersion != "" {
		opts = append(opts, anthropic.WithAPIVersion(ac.APIVersion))
	}
	if ac.BetaHeader != "" {
		opts = append(opts, anthropic.WithAnthropicBetaHeader(ac.BetaHeader))
	}
	if ac.Timeout != "" {
		timeout, err := time.ParseDuration(ac.Timeout)
		if err != nil {
			return nil, errors.Wrap(err, "invalid anthropic timeout")
		}
		opts = append(opts, anthropic.WithRequestTimeout(timeout))
	}
	return anthropic.New(opts...)
}

func newBedrock(ctx context.Context, cfg *Config) (llms.Endpoint, error) {
	bc := cfg.Bedrock
	var opts []bedrock.Option
	if cfg.Model != "" {
		opts = append(opts, bedrock.WithModel(cfg.Model))
	}
	if bc.Region != "" {
		opts = append(opts, bedrock.WithRegion(bc.Region))
	}
	if bc.AccessKeyID != "" {
		opts = append(opts, bedrock.WithCredentials(bc.AccessKeyID, bc.SecretAccessKey, bc.SessionToken))
	}
	if bc.AnthropicVersion != "" {
		opts = append(opts, bedrock.WithAnthropicVersion(bc.AnthropicVersion))
	}
	return bedrock.New(ctx, opts...)
}

// NewStore returns the Redis store when RedisURL is configured,
// and the memory store otherwise.
func NewStore(cfg *StoreConfig) (store.MessageStoreManager, error) {
	if cfg.RedisURL == "" {
		return store.NewMemoryStore(), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis URL")
	}
	return store.NewRedisStore(redis.NewClient(opts), cfg.Prefix, cfg.MaxMessages), nil
}

// NewOrchestrator returns the orchestrator for the configuration.
// The opts are applied after the configured options.
func NewOrchestrator(ctx context.Context, cfg *Config, opts ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	endpoint, err := NewEndpoint(ctx, cfg)
	if err != nil {
		return nil, err
	}

	st, err := NewStore(&cfg.Store)
	if err != nil {
		return nil, err
	}

	name := values.StringsCoalesce(cfg.Name, orchestrator.DefaultName)
	model := values.StringsCoalesce(cfg.Model, orchestrator.DefaultModel)
	systemPrompt, err := prompts.Render(cfg.SystemPrompt, map[string]any{
		"name":  name,
		"model": model,
	})
	if err != nil {
		return nil, err
	}

	all := []orchestrator.Option{
		orchestrator.WithName(name),
		orchestrator.WithModel(model),
		orchestrator.WithMaxTokens(values.NumbersCoalesce(cfg.MaxTokens, orchestrator.DefaultMaxTokens)),
		orchestrator.WithSystemPrompt(systemPrompt),
		orchestrator.WithMaxRoundTrips(cfg.MaxRoundTrips),
		orchestrator.WithMaxParallelTools(cfg.MaxParallelTools),
		orchestrator.WithResultEncoding(cfg.ResultEncoding),
		orchestrator.WithRetainAssistantTurns(cfg.RetainAssistantTurns),
		orchestrator.WithStore(st),
	}
	all = append(all, opts...)

	logger.KV(xlog.DEBUG,
		"status", "created_orchestrator",
		"name", name,
		"provider", cfg.Provider,
		"model", model,
		"redis", cfg.Store.RedisURL != "",
	)

	return orchestrator.New(endpoint, all...), nil
}

// Load returns the orchestrator for the configuration file.
func Load(ctx context.Context, location string, opts ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return NewOrchestrator(ctx, cfg, opts...)
}
