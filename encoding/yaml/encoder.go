package yaml

import (
	"encoding/json"

	"github.com/bibbit-ltd/tool-use/pkg/llmutils"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Encoder encodes values as block style YAML.
// Values are converted through JSON first, so `json` tags name the keys
// and the field order is preserved.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	// JSON is valid YAML, parse it to a node to keep the order of keys
	var node yaml.Node
	if err = yaml.Unmarshal(js, &node); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON")
	}
	resetStyle(&node)
	return yaml.Marshal(&node)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return yaml.Unmarshal([]byte(llmutils.TrimBackticks(string(bs))), ret)
}

// resetStyle clears the flow and quoting styles inherited from JSON
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}
