package tools

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/pkg/schema"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

var (
	// ErrUnknownTool is returned when the model requests a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrToolExecution is returned when a tool handler fails, the handler error is preserved as the cause.
	ErrToolExecution = errors.New("tool execution failed")
	// ErrInvalidDefinition is returned when a tool definition is not well formed.
	ErrInvalidDefinition = errors.New("invalid tool definition")
	// ErrFailedUnmarshalInput is returned by typed tools when the input does not match the input type.
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")
	// ErrInvalidInput is returned by typed tools when the decoded input fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// names accepted by the Messages API
var validName = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Handler executes a tool.
// The input is the JSON object produced by the model.
// A string result is sent to the model verbatim, any other value is encoded.
type Handler func(ctx context.Context, input json.RawMessage) (any, error)

// Definition is a tool that can be registered with the orchestrator.
type Definition struct {
	// Name is the unique name of the tool, as seen by the model.
	Name string
	// Description tells the model when and how to use the tool.
	Description string
	// InputSchema is the JSON schema of the input object.
	InputSchema *jsonschema.Schema
	// Handler executes the tool.
	Handler Handler
}

// Validate checks the structure of the definition.
// It does not check the semantics of the description or the schema.
func (d *Definition) Validate() error {
	if d == nil {
		return errors.WithMessage(ErrInvalidDefinition, "definition is nil")
	}
	if !validName.MatchString(d.Name) {
		return errors.WithMessagef(ErrInvalidDefinition, "invalid name %q", d.Name)
	}
	if d.Handler == nil {
		return errors.WithMessagef(ErrInvalidDefinition, "tool %q: handler is nil", d.Name)
	}
	if err := schema.Validate(d.InputSchema); err != nil {
		return errors.Mark(errors.WithMessagef(err, "tool %q", d.Name), ErrInvalidDefinition)
	}
	return nil
}

// Schema returns the tool description advertised to the model.
func (d *Definition) Schema() llms.ToolSchema {
	return llms.ToolSchema{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: d.InputSchema,
	}
}

// Call invokes the handler.
// A handler error or panic is returned marked with ErrToolExecution.
func (d *Definition) Call(ctx context.Context, input json.RawMessage) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Mark(errors.Newf("tool %q: panic: %v", d.Name, r), ErrToolExecution)
		}
	}()

	res, err = d.Handler(ctx, input)
	if err != nil {
		return nil, errors.Mark(errors.WithMessagef(err, "tool %q", d.Name), ErrToolExecution)
	}
	return res, nil
}

// UnknownToolError returns ErrUnknownTool naming the tool.
func UnknownToolError(name string) error {
	return errors.WithMessagef(ErrUnknownTool, "%q", name)
}
