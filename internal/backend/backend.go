// Package backend holds the registry of backend classes that platform
// records refer to by their "class" field.
//
// ixmp never talks to a backend here. Each class only shapes the arguments
// given to "platform add" into a record that can be persisted.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/iiasa/ixmp/internal/platform"
)

// ErrInvalidConfig is wrapped by backends that reject their arguments.
var ErrInvalidConfig = errors.New("invalid backend configuration")

// Backend shapes platform records for one backend class.
type Backend interface {
	// HandleConfig builds a record from the positional arguments that follow
	// the class name and from keyword arguments. It must not retain args or
	// kwargs.
	HandleConfig(args []string, kwargs map[string]any) (platform.Record, error)
}

// HandlerFunc adapts a function to Backend.
type HandlerFunc func(args []string, kwargs map[string]any) (platform.Record, error)

// HandleConfig calls f.
func (f HandlerFunc) HandleConfig(args []string, kwargs map[string]any) (platform.Record, error) {
	return f(args, kwargs)
}

// Registry maps class names to backends.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds a backend class. Returns an error if the name is taken.
func (r *Registry) Register(name string, b Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("backend class %q already registered", name)
	}
	r.backends[name] = b
	return nil
}

// Lookup returns the backend registered under name.
func (r *Registry) Lookup(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default holds the built-in backend classes.
var Default = NewDefaultRegistry()

// NewDefaultRegistry returns a registry holding the built-in classes.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(ClassJDBC, JDBC{})
	return r
}
