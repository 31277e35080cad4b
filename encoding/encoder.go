// Package encoding converts tool results to text for the model,
// and decodes model-produced tool input into Go values.
package encoding

import (
	jsonenc "github.com/bibbit-ltd/tool-use/encoding/json"
	tomlenc "github.com/bibbit-ltd/tool-use/encoding/toml"
	yamlenc "github.com/bibbit-ltd/tool-use/encoding/yaml"
	"github.com/cockroachdb/errors"
)

// ErrUnsupportedMode is returned for an unknown encoding mode.
var ErrUnsupportedMode = errors.New("unsupported encoding mode")

// Encoder converts values to and from text.
type Encoder interface {
	Marshal(v any) ([]byte, error)
	Unmarshal([]byte, any) error
}

// Validator is implemented by encoders that can validate decoded values.
type Validator interface {
	Validate(any) error
}

type Mode = string

const (
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
	ModeTOML Mode = "toml"
)

// ModeDefault is the default mode for tool results.
var ModeDefault = ModeJSON

// NewEncoder returns the encoder for the mode,
// empty mode means ModeDefault.
func NewEncoder(mode Mode) (Encoder, error) {
	switch mode {
	case "":
		return NewEncoder(ModeDefault)
	case ModeJSON:
		return jsonenc.NewEncoder(), nil
	case ModeYAML:
		return yamlenc.NewEncoder(), nil
	case ModeTOML:
		return tomlenc.NewEncoder(), nil
	default:
		return nil, errors.WithMessagef(ErrUnsupportedMode, "%q", mode)
	}
}

// EncodeResult returns the textual form of a tool result:
// a string is returned verbatim, any other value is marshaled with enc.
func EncodeResult(enc Encoder, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	bs, err := enc.Marshal(v)
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode %T", v)
	}
	return string(bs), nil
}

var (
	_ Encoder   = (*jsonenc.Encoder)(nil)
	_ Encoder   = (*tomlenc.Encoder)(nil)
	_ Encoder   = (*yamlenc.Encoder)(nil)
	_ Validator = (*jsonenc.Encoder)(nil)
)
