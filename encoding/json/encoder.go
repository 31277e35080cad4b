package json

import (
	"encoding/json"

	"github.com/bibbit-ltd/tool-use/pkg/llmutils"
	"github.com/bububa/ljson"
	"github.com/go-playground/validator/v10"
)

// validate caches struct metadata, it is safe for concurrent use
var validate = validator.New()

// Encoder encodes values as compact JSON,
// and decodes JSON leniently: surrounding prose and code fences are dropped,
// and scalar values are coerced to the target field types.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return ljson.Unmarshal(llmutils.CleanJSON(bs), ret)
}

// Validate checks the `validate` struct tags of v.
func (e *Encoder) Validate(v any) error {
	return validate.Struct(v)
}
