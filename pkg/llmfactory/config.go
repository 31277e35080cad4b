package llmfactory

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Provider types
const (
	ProviderAnthropic = "ANTHROPIC"
	ProviderBedrock   = "BEDROCK"
)

// Config of the orchestrator and its endpoint.
type Config struct {
	// Name identifies the orchestrator in logs and metrics
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Provider specifies the endpoint: ANTHROPIC|BEDROCK
	Provider string `json:"provider" yaml:"provider" validate:"required,oneof=ANTHROPIC BEDROCK anthropic bedrock"`
	// Model is the model identifier sent with every request
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// MaxTokens is the response token budget
	MaxTokens int64 `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" validate:"gte=0"`
	// MaxRoundTrips limits the endpoint calls of one exchange, 0 means no limit
	MaxRoundTrips int `json:"max_round_trips,omitempty" yaml:"max_round_trips,omitempty" validate:"gte=0"`
	// MaxParallelTools limits the tools running at once, 0 means no limit
	MaxParallelTools int `json:"max_parallel_tools,omitempty" yaml:"max_parallel_tools,omitempty" validate:"gte=0"`
	// SystemPrompt is a template rendered with the sprig functions,
	// `.name` and `.model` are available to the template.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	// ResultEncoding is the encoding of non-string tool results: json|yaml|toml
	ResultEncoding string `json:"result_encoding,omitempty" yaml:"result_encoding,omitempty" validate:"omitempty,oneof=json yaml toml"`
	// RetainAssistantTurns keeps the assistant tool_use turns in the history
	RetainAssistantTurns bool `json:"retain_assistant_turns,omitempty" yaml:"retain_assistant_turns,omitempty"`

	Anthropic AnthropicConfig `json:"anthropic" yaml:"anthropic"`
	Bedrock   BedrockConfig   `json:"bedrock" yaml:"bedrock"`
	Store     StoreConfig     `json:"store" yaml:"store"`
}

// AnthropicConfig specifies the Anthropic Messages API endpoint
type AnthropicConfig struct {
	// Token is the API key, use ${ENV_VAR} to take it from the environment
	Token      string `json:"token,omitempty" yaml:"token,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	BetaHeader string `json:"beta_header,omitempty" yaml:"beta_header,omitempty"`
	MaxRetries int    `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"gte=0"`
	// Timeout is the request timeout, such as 90s
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// BedrockConfig specifies the AWS Bedrock endpoint
type BedrockConfig struct {
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
	// AccessKeyID and SecretAccessKey are optional static credentials,
	// the AWS default credential chain is used when they are empty.
	AccessKeyID      string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty"`
	SecretAccessKey  string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`
	SessionToken     string `json:"session_token,omitempty" yaml:"session_token,omitempty"`
	AnthropicVersion string `json:"anthropic_version,omitempty" yaml:"anthropic_version,omitempty"`
}

// StoreConfig specifies the transcript store
type StoreConfig struct {
	// RedisURL such as redis://localhost:6379/0, the memory store is used when empty
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	// Prefix of the Redis keys
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// MaxMessages is the number of messages kept per chat
	MaxMessages int `json:"max_messages,omitempty" yaml:"max_messages,omitempty" validate:"gte=0"`
}

// Validate returns an error if the configuration is invalid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	// Bedrock model IDs differ from the Anthropic API names, there is no usable default
	if strings.EqualFold(c.Provider, ProviderBedrock) && c.Model == "" {
		return errors.New("invalid configuration: model is required for BEDROCK provider")
	}
	if c.Anthropic.Timeout != "" {
		if _, err := time.ParseDuration(c.Anthropic.Timeout); err != nil {
			return errors.Wrapf(err, "invalid anthropic timeout")
		}
	}
	return nil
}

// LoadConfig from file, environment variables in the values are expanded.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
