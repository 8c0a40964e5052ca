package config

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/iiasa/ixmp/internal/backend"
	"github.com/iiasa/ixmp/internal/keys"
	"github.com/iiasa/ixmp/internal/log"
	"github.com/iiasa/ixmp/internal/paths"
	"github.com/iiasa/ixmp/internal/platform"
	"github.com/iiasa/ixmp/internal/pubsub"
)

// Store holds the current configuration values.
//
// Accessors return copies; values change only through Set, SetLenient,
// Clear, Read and the platform methods.
type Store struct {
	mu       sync.Mutex
	registry *keys.Registry
	resolver paths.Resolver
	backends *backend.Registry

	values map[string]any
	path   string

	// Registered names and registry version at the last sync.
	known   map[string]uint64
	version uint64

	broker *pubsub.Broker[Change]
}

// Option configures a Store.
type Option func(*Store)

// WithRegistry sets the key registry. Defaults to Keys.
func WithRegistry(r *keys.Registry) Option {
	return func(s *Store) { s.registry = r }
}

// WithResolver sets the directory resolver. Defaults to the process
// environment.
func WithResolver(r paths.Resolver) Option {
	return func(s *Store) { s.resolver = r }
}

// WithBackends sets the backend class registry used by AddPlatform.
// Defaults to backend.Default.
func WithBackends(b *backend.Registry) Option {
	return func(s *Store) { s.backends = b }
}

// New creates a store holding the registered defaults.
func New(opts ...Option) *Store {
	s := &Store{
		registry: Keys,
		backends: backend.Default,
		broker:   pubsub.NewBrokerWithBuffer[Change](changeBufferSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Clear()
	return s
}

// Load creates a store and reads configuration into it. The store is
// returned even when Read fails, holding defaults.
func Load(opts ...Option) (*Store, error) {
	s := New(opts...)
	return s, s.Read()
}

// Registry returns the store's key registry.
func (s *Store) Registry() *keys.Registry {
	return s.registry
}

// Resolver returns the store's directory resolver.
func (s *Store) Resolver() paths.Resolver {
	return s.resolver
}

// Path returns the file the configuration was last read from or saved to,
// or "" if the store holds defaults only.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Clear resets every registered key to its default and forgets the loaded
// file. The local platform path is recomputed from the current environment.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.registry.Keys()
	s.values = make(map[string]any, len(all))
	s.known = make(map[string]uint64, len(all))
	for _, k := range all {
		s.values[k.Name] = k.Default()
		s.known[k.Name] = k.ID()
	}
	s.version = s.registry.Version()
	s.path = ""

	s.refreshLocalPlatformLocked()
	s.notifyLocked(ChangeClear, "")
}

func (s *Store) refreshLocalPlatformLocked() {
	set, ok := s.values[PlatformKey].(*platform.Set)
	if !ok {
		return
	}
	e, ok := set.Get(LocalPlatform)
	if !ok {
		return
	}
	rec, ok := e.(platform.Record)
	if !ok {
		return
	}
	if p, ok := LocalDBPath(s.resolver); ok {
		rec["path"] = p
	} else {
		delete(rec, "path")
	}
	_, _ = set.Put(LocalPlatform, rec)
}

// syncLocked brings the value map in line with registrations made since the
// last operation: new keys get a value, unregistered keys lose theirs.
func (s *Store) syncLocked() {
	version := s.registry.Version()
	if version == s.version {
		return
	}

	current := make(map[string]uint64)
	for _, k := range s.registry.Keys() {
		current[k.Name] = k.ID()
		if id, seen := s.known[k.Name]; seen && id == k.ID() {
			continue
		}

		// A value loaded before the key existed, or held under an earlier
		// registration of the same name, is kept if it fits the type.
		if raw, ok := s.values[k.Name]; ok {
			coerced, err := k.Type.Coerce(raw)
			if err == nil {
				s.values[k.Name] = coerced
				continue
			}
			log.Warn(log.CatConfig, "Loaded value does not fit newly registered key; using default",
				"key", k.Name, "type", k.Type.Name(), "error", err)
		}
		s.values[k.Name] = k.Default()
	}

	for name := range s.known {
		if _, ok := current[name]; !ok {
			delete(s.values, name)
		}
	}

	s.known = current
	s.version = version
}

// Get returns a copy of the current value for name.
func (s *Store) Get(name string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	v, ok := s.values[name]
	if !ok {
		return nil, &keys.UnknownKeyError{Name: name}
	}
	return s.cloneLocked(name, v), nil
}

func (s *Store) cloneLocked(name string, v any) any {
	if k, ok := s.registry.Lookup(name); ok {
		return k.Type.Clone(v)
	}
	return keys.CloneValue(v)
}

// Value returns the value for name as a T.
func Value[T any](s *Store, name string) (T, error) {
	var zero T
	v, err := s.Get(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &keys.TypeMismatchError{
			Key:      name,
			Expected: fmt.Sprintf("%T", zero),
			Actual:   fmt.Sprintf("%T", v),
			Value:    v,
		}
	}
	return t, nil
}

// Set converts value to the registered type of name and stores it. The key
// must be registered. A nil value is ignored. On error the previous value is
// kept.
func (s *Store) Set(name string, value any) error {
	return s.set(name, value, keys.Strict)
}

// SetLenient is Set, except that unregistered names are stored unconverted.
func (s *Store) SetLenient(name string, value any) error {
	return s.set(name, value, keys.Lenient)
}

func (s *Store) set(name string, value any, mode keys.Mode) error {
	if isNil(value) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	coerced, err := s.registry.Coerce(name, value, mode)
	if err != nil {
		return err
	}
	if !s.registry.Has(name) {
		log.Debug(log.CatConfig, "Storing unregistered key", "key", name)
	}

	s.values[name] = coerced
	if name == PlatformKey {
		s.warnDanglingLocked()
	}
	s.notifyLocked(ChangeSet, name)
	return nil
}

// Keys returns the names of all values held, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns a copy of every value held.
func (s *Store) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	out := make(map[string]any, len(s.values))
	for name, v := range s.values {
		out[name] = s.cloneLocked(name, v)
	}
	return out
}

func (s *Store) warnDanglingLocked() {
	set, ok := s.values[PlatformKey].(*platform.Set)
	if !ok || !set.Dangling() {
		return
	}
	target, _ := set.Default()
	log.Warn(log.CatPlatform, "Default platform names a missing platform",
		"default", target, "known", set.Names(), "path", s.path)
}

// isNil reports whether v is nil or a nil map, slice, pointer, or similar
// held in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
