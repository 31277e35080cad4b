package bedrock

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

type options struct {
	modelID          string
	region           string
	credentials      aws.CredentialsProvider
	anthropicVersion string
	client           InvokeModelAPI
}

// Option is an option for the Bedrock endpoint.
type Option func(*options)

// WithModel sets the model ID used when the request does not name one,
// for example "us.anthropic.claude-sonnet-4-5-20250929-v1:0".
func WithModel(modelID string) Option {
	return func(o *options) {
		o.modelID = modelID
	}
}

// WithRegion sets the AWS region of the default client.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithAnthropicVersion overrides the `anthropic_version` of the request body.
func WithAnthropicVersion(version string) Option {
	return func(o *options) {
		o.anthropicVersion = version
	}
}

// WithClient sets the Bedrock runtime client.
// It is useful for custom configuration and tests.
func WithClient(client InvokeModelAPI) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithCredentials sets static AWS credentials for the default client,
// sessionToken is optional.
func WithCredentials(accessKeyID, secretAccessKey, sessionToken string) Option {
	return func(o *options) {
		o.credentials = credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken)
	}
}
