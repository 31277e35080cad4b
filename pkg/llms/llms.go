package llms

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrEndpoint is the marker for every failure reported by, or attributed to,
// a model endpoint: transport errors, API errors and malformed responses.
// Use errors.Is(err, llms.ErrEndpoint) to check for it.
var ErrEndpoint = errors.New("endpoint error")

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderAnthropic is the Anthropic Messages API.
	ProviderAnthropic ProviderType = "ANTHROPIC"
	// ProviderBedrock is Anthropic models hosted on AWS Bedrock.
	ProviderBedrock ProviderType = "BEDROCK"
)

// Endpoint is the remote chat model service.
type Endpoint interface {
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// CreateMessage sends a single request and returns the decoded response.
	// Any failure, including a response that cannot be decoded, is marked with ErrEndpoint.
	CreateMessage(ctx context.Context, req *Request) (*Response, error)
}

// WrapEndpointError wraps err with a message and marks it as ErrEndpoint.
func WrapEndpointError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrEndpoint)
}

// NewEndpointError returns a new error marked as ErrEndpoint.
func NewEndpointError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrEndpoint)
}

// IsEndpointError returns true if err is marked as ErrEndpoint.
func IsEndpointError(err error) bool {
	return errors.Is(err, ErrEndpoint)
}
