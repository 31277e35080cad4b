// Package bedrock provides the Endpoint for Anthropic models hosted on AWS Bedrock.
package bedrock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/llms/bedrock/internal/bedrockclient"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
)

// ErrMissingModel is returned when neither the request nor the options name a model.
var ErrMissingModel = errors.New("bedrock: model is required")

// ErrUnsupportedProvider is returned for models that do not speak the Anthropic Messages format.
var ErrUnsupportedProvider = bedrockclient.ErrUnsupportedProvider

// InvokeModelAPI is the subset of the Bedrock runtime client used to call models.
type InvokeModelAPI = bedrockclient.InvokeModelAPI

// LLM is a Bedrock endpoint implementation.
type LLM struct {
	modelID string
	client  *bedrockclient.Client
}

var _ llms.Endpoint = (*LLM)(nil)

// New creates a new Bedrock endpoint.
// Without WithClient, a client is created from the AWS default config,
// with the credentials of WithCredentials when provided.
func New(ctx context.Context, opts ...Option) (*LLM, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.client == nil {
		var loadOpts []func(*config.LoadOptions) error
		if o.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(o.region))
		}
		if o.credentials != nil {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(o.credentials))
		}
		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.Wrap(err, "bedrock: failed to load AWS config")
		}
		o.client = bedrockruntime.NewFromConfig(cfg)
	}

	return &LLM{
		client:  bedrockclient.NewClient(o.client, o.anthropicVersion),
		modelID: o.modelID,
	}, nil
}

// GetProviderType implements the Endpoint interface.
func (l *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderBedrock
}

// CreateMessage implements the Endpoint interface.
func (l *LLM) CreateMessage(ctx context.Context, req *llms.Request) (*llms.Response, error) {
	modelID := values.StringsCoalesce(req.Model, l.modelID)
	if modelID == "" {
		return nil, ErrMissingModel
	}
	return l.client.CreateMessage(ctx, modelID, req)
}
