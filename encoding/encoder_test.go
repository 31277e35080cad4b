package encoding_test

import (
	"math"
	"testing"

	"github.com/bibbit-ltd/tool-use/encoding"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type forecast struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Conditions  string  `json:"conditions"`
	Windy       bool    `json:"windy"`
}

func TestNewEncoder(t *testing.T) {
	t.Parallel()

	for _, mode := range []encoding.Mode{"", encoding.ModeJSON, encoding.ModeYAML, encoding.ModeTOML} {
		enc, err := encoding.NewEncoder(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, enc)
	}

	_, err := encoding.NewEncoder("xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, encoding.ErrUnsupportedMode))
	assert.EqualError(t, err, `"xml": unsupported encoding mode`)
}

func TestEncodeResult(t *testing.T) {
	t.Parallel()

	val := forecast{Location: "Paris", Temperature: 21.5, Conditions: "sunny"}

	tcases := []struct {
		mode encoding.Mode
		val  any
		exp  string
	}{
		{encoding.ModeJSON, "It is sunny", "It is sunny"},
		{encoding.ModeYAML, "It is sunny", "It is sunny"},
		{encoding.ModeTOML, "", ""},
		{encoding.ModeJSON, val, `{"location":"Paris","temperature":21.5,"conditions":"sunny","windy":false}`},
		{encoding.ModeJSON, &val, `{"location":"Paris","temperature":21.5,"conditions":"sunny","windy":false}`},
		{encoding.ModeJSON, 42, `42`},
		{encoding.ModeJSON, nil, `null`},
		{encoding.ModeJSON, []string{"a", "b"}, `["a","b"]`},
		{encoding.ModeYAML, val, "location: Paris\ntemperature: 21.5\nconditions: sunny\nwindy: false\n"},
		{encoding.ModeYAML, map[string]string{"answer": "true"}, "answer: \"true\"\n"},
		{encoding.ModeTOML, val, "conditions = \"sunny\"\nlocation = \"Paris\"\ntemperature = 21.5\nwindy = false\n"},
		{encoding.ModeTOML, 42, `42`},
		{encoding.ModeTOML, []int{1, 2}, `[1,2]`},
	}

	for _, tc := range tcases {
		enc, err := encoding.NewEncoder(tc.mode)
		require.NoError(t, err)
		got, err := encoding.EncodeResult(enc, tc.val)
		require.NoError(t, err)
		assert.Equal(t, tc.exp, got, "%s: %v", tc.mode, tc.val)
	}

	enc, err := encoding.NewEncoder(encoding.ModeJSON)
	require.NoError(t, err)
	_, err = encoding.EncodeResult(enc, math.Inf(1))
	assert.ErrorContains(t, err, "failed to encode float64")
}

type weatherInput struct {
	Location string `json:"location" validate:"required"`
	Days     int    `json:"days" validate:"gte=0,lte=7"`
}

func TestJSONUnmarshal(t *testing.T) {
	t.Parallel()

	enc, err := encoding.NewEncoder(encoding.ModeJSON)
	require.NoError(t, err)

	var in weatherInput
	require.NoError(t, enc.Unmarshal([]byte("Sure:\n```json\n{\"location\":\"Paris\",\"days\":3}\n```"), &in))
	assert.Equal(t, weatherInput{Location: "Paris", Days: 3}, in)

	v, ok := enc.(encoding.Validator)
	require.True(t, ok)
	assert.NoError(t, v.Validate(&in))

	in = weatherInput{Days: 10}
	err = v.Validate(&in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location")
	assert.Contains(t, err.Error(), "Days")
}

func TestYAMLAndTOMLUnmarshal(t *testing.T) {
	t.Parallel()

	type cfg struct {
		Location string `yaml:"location" toml:"location"`
	}

	enc, err := encoding.NewEncoder(encoding.ModeYAML)
	require.NoError(t, err)
	var c cfg
	require.NoError(t, enc.Unmarshal([]byte("```yaml\nlocation: Paris\n```"), &c))
	assert.Equal(t, "Paris", c.Location)

	enc, err = encoding.NewEncoder(encoding.ModeTOML)
	require.NoError(t, err)
	c = cfg{}
	require.NoError(t, enc.Unmarshal([]byte("location = \"Rome\"\n"), &c))
	assert.Equal(t, "Rome", c.Location)
}
