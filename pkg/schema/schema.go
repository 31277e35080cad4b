package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrInvalidSchema is returned when a tool input schema is not a JSON object schema.
var ErrInvalidSchema = errors.New("invalid input schema")

const defsPrefix = "#/$defs/"

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.Mutex
)

// Schema is the reflected JSON schema of a Go type.
type Schema struct {
	// Raw is the schema as produced by the reflector.
	Raw *jsonschema.Schema
	// Input is the flattened object schema advertised to the model as `input_schema`.
	Input *jsonschema.Schema
}

// New creates a new schema from the given type.
// The results are cached per type.
func New(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	raw := JSONSchema(t)
	input, err := ToInputSchema(raw)
	if err != nil {
		return nil, errors.WithMessagef(err, "type %s", t.String())
	}

	s := &Schema{
		Raw:   raw,
		Input: input,
	}
	cache[t] = s
	return s, nil
}

// For returns the schema of T.
func For[T any]() (*Schema, error) {
	return New(reflect.TypeFor[T]())
}

func (s *Schema) String() string {
	js, _ := json.MarshalIndent(s.Input, "", "\t")
	return string(js)
}

// ToInputSchema returns the root object schema with all $defs references inlined.
func ToInputSchema(tSchema *jsonschema.Schema) (*jsonschema.Schema, error) {
	refID := strings.TrimPrefix(tSchema.Ref, defsPrefix)

	defs := make(map[string]*jsonschema.Schema)
	root := tSchema

	for name, def := range tSchema.Definitions {
		if name == refID {
			root = def
		} else {
			defs[name] = def
		}
	}

	res := &jsonschema.Schema{
		Type:        root.Type,
		Description: root.Description,
		Properties:  root.Properties,
		Required:    root.Required,
	}
	if res.Properties != nil {
		if err := resolveRefs(res.Properties, defs); err != nil {
			return nil, err
		}
	}
	if err := Validate(res); err != nil {
		return nil, err
	}
	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Ref != "" {
			def, err := lookupDef(pair.Value.Ref, defs)
			if err != nil {
				return errors.WithMessagef(err, "property %q", pair.Key)
			}
			pair.Value = def
		}
		child := pair.Value
		if child.Items != nil && child.Items.Ref != "" {
			def, err := lookupDef(child.Items.Ref, defs)
			if err != nil {
				return errors.WithMessagef(err, "items of %q", pair.Key)
			}
			child.Items = def
		}
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
		if child.Items != nil && child.Items.Properties != nil {
			if err := resolveRefs(child.Items.Properties, defs); err != nil {
				return err
			}
		}
	}
	return nil
}

func lookupDef(ref string, defs map[string]*jsonschema.Schema) (*jsonschema.Schema, error) {
	name := strings.TrimPrefix(ref, defsPrefix)
	if def, ok := defs[name]; ok {
		return def, nil
	}
	return nil, errors.Newf("definition not found: %s", ref)
}

// Validate checks that s describes a JSON object, as required for a tool input.
func Validate(s *jsonschema.Schema) error {
	if s == nil {
		return errors.WithMessage(ErrInvalidSchema, "schema is nil")
	}
	if s.Type != "object" {
		return errors.WithMessagef(ErrInvalidSchema, "expected type object, got %q", s.Type)
	}
	for _, name := range s.Required {
		if s.Properties == nil {
			return errors.WithMessagef(ErrInvalidSchema, "required property %q is not defined", name)
		}
		if _, ok := s.Properties.Get(name); !ok {
			return errors.WithMessagef(ErrInvalidSchema, "required property %q is not defined", name)
		}
	}
	return nil
}

// JSONSchema returns the reflected json schema of the type
func JSONSchema(t reflect.Type) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}

	// Structs with the same name in different packages would share a `$ref`,
	// so the package path hash is added to the name.
	// See https://github.com/invopop/jsonschema/issues/42
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}

	return r.ReflectFromType(t)
}

// FromAny creates a json schema from any JSON-serializable value,
// for example a map literal:
//
//	map[string]any{
//		"type": "object",
//		"properties": map[string]any{
//			"location": map[string]any{
//				"type": "string",
//			},
//		},
//		"required": []string{"location"},
//	}
func FromAny(t any) (*jsonschema.Schema, error) {
	js, err := json.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal schema")
	}
	s := &jsonschema.Schema{}
	if err = json.Unmarshal(js, s); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal schema")
	}
	return s, nil
}

// MustFromAny is like FromAny but panics on error.
func MustFromAny(t any) *jsonschema.Schema {
	s, err := FromAny(t)
	if err != nil {
		panic(err)
	}
	return s
}

// keywords mapped to the typed fields of the endpoint tool schemas
var typedKeywords = map[string]bool{
	"type":       true,
	"properties": true,
	"required":   true,
	"$schema":    true,
	"$id":        true,
}

// ExtraKeywords returns the top level keywords of the input schema
// that have no typed field in the endpoint tool schemas,
// such as description or additionalProperties.
func ExtraKeywords(s *jsonschema.Schema) map[string]any {
	if s == nil {
		return nil
	}
	js, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var extra map[string]any
	gjson.ParseBytes(js).ForEach(func(key, value gjson.Result) bool {
		if typedKeywords[key.Str] {
			return true
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key.Str] = value.Value()
		return true
	})
	return extra
}
