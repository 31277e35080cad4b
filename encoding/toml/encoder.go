package toml

import (
	"bytes"
	"encoding/json"

	"github.com/BurntSushi/toml"
	"github.com/bibbit-ltd/tool-use/pkg/llmutils"
	"github.com/cockroachdb/errors"
)

// Encoder encodes values as TOML.
// Values are converted through JSON first, so `json` tags name the keys.
// TOML documents are tables: values that are not objects are encoded as JSON.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var table map[string]any
	if err = json.Unmarshal(js, &table); err != nil || table == nil {
		return js, nil
	}

	var buf bytes.Buffer
	if err = toml.NewEncoder(&buf).Encode(table); err != nil {
		return nil, errors.Wrap(err, "failed to encode TOML")
	}
	return buf.Bytes(), nil
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return toml.Unmarshal([]byte(llmutils.TrimBackticks(string(bs))), ret)
}
