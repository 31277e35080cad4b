package bedrockclient

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/cockroachdb/errors"
)

// ErrUnsupportedProvider is returned for models that do not speak the Anthropic Messages format.
var ErrUnsupportedProvider = errors.New("bedrock: unsupported provider")

// InvokeModelAPI is the subset of the Bedrock runtime client used to call models.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

var _ InvokeModelAPI = (*bedrockruntime.Client)(nil)

// Client is a Bedrock client.
type Client struct {
	client           InvokeModelAPI
	anthropicVersion string
}

func getProvider(modelID string) string {
	// Handle Inference Profiles (e.g., "us.anthropic.claude-3-5-sonnet-20241022-v2:0")
	// and direct model IDs (e.g., "anthropic.claude-3-sonnet-20240229-v1:0")
	parts := strings.Split(modelID, ".")
	if len(parts) >= 2 {
		// Check if first part is a region (like "us", "eu", etc.)
		if len(parts[0]) == 2 && strings.ToLower(parts[0]) == parts[0] {
			return parts[1]
		}
		return parts[0]
	}
	return parts[0]
}

// NewClient creates a new Bedrock client,
// anthropicVersion defaults to AnthropicLatestVersion.
func NewClient(client InvokeModelAPI, anthropicVersion string) *Client {
	if anthropicVersion == "" {
		anthropicVersion = AnthropicLatestVersion
	}
	return &Client{
		client:           client,
		anthropicVersion: anthropicVersion,
	}
}

// CreateMessage sends the request to the model and returns the decoded response.
func (c *Client) CreateMessage(ctx context.Context, modelID string, req *llms.Request) (*llms.Response, error) {
	switch provider := getProvider(modelID); provider {
	case "anthropic":
		return c.createAnthropicMessage(ctx, modelID, req)
	default:
		return nil, errors.WithMessagef(ErrUnsupportedProvider, "%q", provider)
	}
}
