package tools

import (
	"sync"

	"github.com/bibbit-ltd/tool-use/pkg/llms"
)

// Registry is a set of tools keyed by name.
// Tools are advertised in registration order,
// registering a name again replaces the definition and keeps its position.
type Registry struct {
	lock  sync.RWMutex
	tools map[string]*Definition
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Definition),
	}
}

// Register adds the tool, or replaces the one with the same name.
func (r *Registry) Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.tools[def.Name]; !ok {
		r.order = append(r.order, def.Name)
	}
	r.tools[def.Name] = def
	return nil
}

// Get returns the tool by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	def, ok := r.tools[name]
	return def, ok
}

// Resolve returns the tool by name, or ErrUnknownTool.
func (r *Registry) Resolve(name string) (*Definition, error) {
	def, ok := r.Get(name)
	if !ok {
		return nil, UnknownToolError(name)
	}
	return def, nil
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]string(nil), r.order...)
}

// Schemas returns the tool descriptions advertised to the model.
func (r *Registry) Schemas() []llms.ToolSchema {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if len(r.order) == 0 {
		return nil
	}
	list := make([]llms.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.tools[name].Schema())
	}
	return list
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.order)
}
