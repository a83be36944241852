// Package registry holds named business action adapters.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/velora-app/flowengine/pkg/ports"
)

// Registry manages the business actions available to flows. Hosts
// register an adapter per action name at startup and hand the registry to
// every session they create.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]ports.BusinessAction
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]ports.BusinessAction),
	}
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, action ports.BusinessAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = action
}

// Get returns the action registered under name.
func (r *Registry) Get(name string) (ports.BusinessAction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, ok := r.actions[name]
	return action, ok
}

// Execute looks up an action by name and invokes it.
// Returns an error if the action is not registered.
func (r *Registry) Execute(ctx context.Context, name, tenantID string, vars, config map[string]any) (ports.ActionResult, error) {
	action, ok := r.Get(name)
	if !ok {
		return ports.ActionResult{}, fmt.Errorf("action %q is not registered", name)
	}
	return action.Execute(ctx, tenantID, vars, config)
}

// Names returns the registered action names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}

// Each calls fn for every registered action.
func (r *Registry) Each(fn func(name string, action ports.BusinessAction)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, action := range r.actions {
		fn(name, action)
	}
}
