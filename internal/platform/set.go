// Package platform models the named connection profiles stored under the
// "platform" configuration key.
//
// A Set maps names to entries. Every entry is a Record carrying a "class"
// field that names a backend, except the reserved "default" entry, which is
// an Alias naming another record in the same Set.
package platform

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/iiasa/ixmp/internal/keys"
	"github.com/iiasa/ixmp/internal/log"
)

// DefaultName is the reserved alias entry.
const DefaultName = "default"

// ClassField names the backend of a record.
const ClassField = "class"

// Entry is either an Alias or a Record.
type Entry interface {
	isEntry()
}

// Alias is the name of another entry.
type Alias string

func (Alias) isEntry() {}

// Record describes one platform. Fields other than "class" are defined by
// the backend.
type Record map[string]any

func (Record) isEntry() {}

// Class returns the backend class name, or "" if absent.
func (r Record) Class() string {
	s, _ := r[ClassField].(string)
	return s
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(keys.CloneValue(map[string]any(r)).(map[string]any))
}

// Set is a mapping of platform names to entries.
type Set struct {
	entries map[string]Entry
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{entries: make(map[string]Entry)}
}

// Len returns the number of entries, including the default alias.
func (s *Set) Len() int {
	return len(s.entries)
}

// Names returns all entry names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is an entry.
func (s *Set) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Get returns a copy of the entry stored under name.
func (s *Set) Get(name string) (Entry, bool) {
	e, ok := s.entries[name]
	if !ok {
		return nil, false
	}
	return cloneEntry(e), true
}

// Default returns the alias target of the default entry.
func (s *Set) Default() (string, bool) {
	a, ok := s.entries[DefaultName].(Alias)
	return string(a), ok
}

// Dangling reports whether the default alias names a missing record.
func (s *Set) Dangling() bool {
	target, ok := s.Default()
	if !ok {
		return false
	}
	_, isRecord := s.entries[target].(Record)
	return !isRecord
}

// Put stores a copy of rec under name and returns the entry it replaced.
func (s *Set) Put(name string, rec Record) (Entry, error) {
	if name == DefaultName {
		return nil, fmt.Errorf("%w: %q is reserved for the default alias", ErrInvalidRecord, DefaultName)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty platform name", ErrInvalidRecord)
	}
	if rec.Class() == "" {
		return nil, fmt.Errorf("%w: platform %q has no %q field", ErrInvalidRecord, name, ClassField)
	}

	prev := s.entries[name]
	s.entries[name] = rec.Clone()
	return prev, nil
}

// SetDefault points the default alias at target, which must be an existing
// record. Returns the entry it replaced.
func (s *Set) SetDefault(target string) (Entry, error) {
	if _, ok := s.entries[target].(Record); !ok {
		return nil, &InvalidReferenceError{
			Name:   DefaultName,
			Target: target,
			Reason: "cannot set an unknown platform as the default",
		}
	}

	prev := s.entries[DefaultName]
	s.entries[DefaultName] = Alias(target)
	return prev, nil
}

// Remove deletes the entry stored under name and returns it. The current
// target of the default alias cannot be removed; remove or re-point the
// alias first.
func (s *Set) Remove(name string) (Entry, error) {
	e, ok := s.entries[name]
	if !ok {
		return nil, &MissingError{Name: name, Known: s.Names()}
	}
	if target, isAlias := s.Default(); isAlias && name != DefaultName && target == name {
		return nil, &InvalidReferenceError{
			Name:   name,
			Target: name,
			Reason: "is the default platform; set another default before removing it",
		}
	}

	delete(s.entries, name)
	return e, nil
}

// Resolve follows the default alias, if name is "default", and returns the
// resolved name with a copy of its record.
func (s *Set) Resolve(name string) (string, Record, error) {
	if name == DefaultName {
		if target, ok := s.Default(); ok {
			name = target
		}
	}

	switch e := s.entries[name].(type) {
	case Record:
		return name, e.Clone(), nil
	default:
		return name, nil, &MissingError{Name: name, Known: s.Names()}
	}
}

// Clone returns a deep copy of s.
func (s *Set) Clone() *Set {
	out := &Set{entries: make(map[string]Entry, len(s.entries))}
	for name, e := range s.entries {
		out.entries[name] = cloneEntry(e)
	}
	return out
}

// Map returns the JSON-shaped form of s: the alias as a string and each
// record as a map.
func (s *Set) Map() map[string]any {
	out := make(map[string]any, len(s.entries))
	for name, e := range s.entries {
		switch v := e.(type) {
		case Alias:
			out[name] = string(v)
		case Record:
			out[name] = map[string]any(v.Clone())
		}
	}
	return out
}

// MarshalJSON encodes s as a JSON object.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// UnmarshalJSON decodes a JSON object produced by MarshalJSON.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := keys.DecodeJSON(data, &raw); err != nil {
		return err
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// FromMap builds a Set from its JSON-shaped form, as read from a file. A
// default alias naming a missing record is accepted (see Dangling), and so
// is a record without a "class" field, with a warning. Put stays strict.
func FromMap(m map[string]any) (*Set, error) {
	s := NewSet()
	for name, value := range m {
		if name == DefaultName {
			target, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q must name another platform, got %T", ErrInvalidRecord, DefaultName, value)
			}
			s.entries[DefaultName] = Alias(target)
			continue
		}

		fields, err := cast.ToStringMapE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: platform %q must be an object, got %T", ErrInvalidRecord, name, value)
		}
		if rec := Record(fields); name != "" && rec.Class() == "" {
			log.Warn(log.CatPlatform, "Platform record has no class; keeping it as read", "name", name)
			s.entries[name] = rec.Clone()
			continue
		}
		if _, err := s.Put(name, Record(fields)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func cloneEntry(e Entry) Entry {
	if r, ok := e.(Record); ok {
		return r.Clone()
	}
	return e
}
