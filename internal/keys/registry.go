// Package keys provides the registry of configuration keys.
//
// Each key has a name, a value Type and a default. The registry is mutable
// process state: collaborators register their keys during initialisation,
// before any configuration store reads a file.
package keys

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Mode selects how Coerce treats unregistered names.
type Mode int

const (
	// Strict rejects unregistered names with an UnknownKeyError.
	Strict Mode = iota
	// Lenient passes values for unregistered names through unchanged.
	Lenient
)

func (m Mode) String() string {
	if m == Lenient {
		return "lenient"
	}
	return "strict"
}

// Key is a registered configuration key.
type Key struct {
	Name string
	Type Type

	value   any
	factory func() any
	id      uint64
}

// ID identifies this registration. Registering the same name again, after
// Unregister, yields a different ID.
func (k Key) ID() uint64 {
	return k.id
}

// Default returns a fresh copy of the key's default value.
func (k Key) Default() any {
	if k.factory != nil {
		return k.Type.Clone(k.factory())
	}
	return k.Type.Clone(k.value)
}

// Registry maps key names to their type and default.
type Registry struct {
	mu      sync.RWMutex
	keys    map[string]Key
	version uint64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{keys: make(map[string]Key)}
}

// Register adds a key. The default is def if truthy, otherwise the type's zero
// value. A non-zero def must coerce to t.
func (r *Registry) Register(name string, t Type, def any) error {
	if t == nil {
		return fmt.Errorf("registering %q: nil type", name)
	}

	value := t.Zero()
	if truthy(def) {
		coerced, err := t.Coerce(def)
		if err != nil {
			return mismatch(name, t, def, err)
		}
		value = coerced
	}

	return r.add(Key{Name: name, Type: t, value: value})
}

// RegisterFunc adds a key whose default is computed by fn each time it is
// needed.
func (r *Registry) RegisterFunc(name string, t Type, fn func() any) error {
	if t == nil {
		return fmt.Errorf("registering %q: nil type", name)
	}
	if fn == nil {
		return r.Register(name, t, nil)
	}
	return r.add(Key{Name: name, Type: t, factory: fn})
}

// MustRegister registers a key and panics on error.
// Useful for built-in keys registered at init time.
func (r *Registry) MustRegister(name string, t Type, def any) {
	if err := r.Register(name, t, def); err != nil {
		panic(err)
	}
}

func (r *Registry) add(k Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keys[k.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, k.Name)
	}
	r.version++
	k.id = r.version
	r.keys[k.Name] = k
	return nil
}

// Unregister removes a key. Removing an unknown key is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keys[name]; exists {
		delete(r.keys, name)
		r.version++
	}
}

// Lookup returns the key registered under name.
func (r *Registry) Lookup(name string) (Key, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[name]
	return k, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Keys returns all registered keys sorted by name.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Key, 0, len(r.keys))
	for _, k := range r.keys {
		result = append(result, k)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns all registered key names, sorted.
func (r *Registry) Names() []string {
	all := r.Keys()
	names := make([]string, len(all))
	for i, k := range all {
		names[i] = k.Name
	}
	return names
}

// Version changes whenever a key is registered or unregistered.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Coerce converts value to the type registered for name.
//
// An unregistered name fails with an UnknownKeyError in Strict mode and is
// returned as a copy of value in Lenient mode. A failed conversion yields a
// TypeMismatchError.
func (r *Registry) Coerce(name string, value any, mode Mode) (any, error) {
	k, ok := r.Lookup(name)
	if !ok {
		if mode == Strict {
			return nil, &UnknownKeyError{Name: name}
		}
		return CloneValue(value), nil
	}

	coerced, err := k.Type.Coerce(value)
	if err != nil {
		var tm *TypeMismatchError
		if errors.As(err, &tm) {
			if tm.Key == "" {
				tm.Key = name
			}
			return nil, tm
		}
		return nil, mismatch(name, k.Type, value, err)
	}
	return coerced, nil
}
