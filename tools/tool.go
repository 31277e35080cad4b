package tools

import (
	"context"
	"encoding/json"
	"reflect"

	jsonenc "github.com/bibbit-ltd/tool-use/encoding/json"
	"github.com/bibbit-ltd/tool-use/pkg/schema"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// ITool is a tool implemented as a type.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	Description() string
	// Parameters returns the JSON schema of the input.
	Parameters() *jsonschema.Schema

	// Call executes the tool with the given JSON input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	Call(context.Context, string) (string, error)
}

// Tool is an ITool with typed input and output.
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

var inputDecoder = jsonenc.NewEncoder()

// FromTool returns the Definition of t.
func FromTool(t ITool) *Definition {
	return &Definition{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.Parameters(),
		Handler: func(ctx context.Context, input json.RawMessage) (any, error) {
			return t.Call(ctx, string(input))
		},
	}
}

// New returns a Definition with the input schema reflected from I.
// The input is decoded leniently into I and checked against its `validate` tags
// before fn is called, the result *O is encoded by the orchestrator.
func New[I any, O any](name, description string, fn func(context.Context, *I) (*O, error)) (*Definition, error) {
	s, err := schema.For[I]()
	if err != nil {
		return nil, errors.WithMessagef(err, "tool %q", name)
	}

	def := &Definition{
		Name:        name,
		Description: description,
		InputSchema: s.Input,
		Handler: func(ctx context.Context, input json.RawMessage) (any, error) {
			in, err := DecodeInput[I](input)
			if err != nil {
				return nil, err
			}
			return fn(ctx, in)
		},
	}
	if err = def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// MustNew is like New but panics on error.
func MustNew[I any, O any](name, description string, fn func(context.Context, *I) (*O, error)) *Definition {
	def, err := New(name, description, fn)
	if err != nil {
		panic(err)
	}
	return def
}

// DecodeInput decodes and validates the tool input.
func DecodeInput[I any](input []byte) (*I, error) {
	in := new(I)
	if len(input) > 0 {
		if err := inputDecoder.Unmarshal(input, in); err != nil {
			return nil, errors.Mark(errors.WithMessage(err, ErrFailedUnmarshalInput.Error()), ErrFailedUnmarshalInput)
		}
	}
	if reflect.TypeFor[I]().Kind() == reflect.Struct {
		if err := inputDecoder.Validate(in); err != nil {
			return nil, errors.Mark(errors.WithMessage(err, ErrInvalidInput.Error()), ErrInvalidInput)
		}
	}
	return in, nil
}

// CallTyped decodes the input, runs fn and returns the JSON encoded result.
// It implements ITool.Call for typed tools.
func CallTyped[I any, O any](ctx context.Context, input string, fn func(context.Context, *I) (*O, error)) (string, error) {
	in, err := DecodeInput[I]([]byte(input))
	if err != nil {
		return "", err
	}
	out, err := fn(ctx, in)
	if err != nil {
		return "", err
	}
	bs, err := inputDecoder.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}
