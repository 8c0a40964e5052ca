package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/iiasa/ixmp/internal/keys"
	"github.com/iiasa/ixmp/internal/log"
	"github.com/iiasa/ixmp/internal/platform"
)

func (s *Store) platformsLocked() (*platform.Set, error) {
	v, ok := s.values[PlatformKey]
	if !ok {
		return nil, &keys.UnknownKeyError{Name: PlatformKey}
	}
	set, ok := v.(*platform.Set)
	if !ok {
		return nil, &keys.TypeMismatchError{
			Key:      PlatformKey,
			Expected: platform.Type.Name(),
			Actual:   fmt.Sprintf("%T", v),
			Value:    v,
		}
	}
	return set, nil
}

// Platforms returns a copy of the platform set.
func (s *Store) Platforms() (*platform.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	set, err := s.platformsLocked()
	if err != nil {
		return nil, err
	}
	return set.Clone(), nil
}

// AddPlatform stores a platform entry.
//
// For name "default", args must hold exactly one existing platform name,
// which becomes the default. Otherwise args[0] names a backend class, which
// shapes the remaining args and kwargs into a record; "class" is filled in if
// the backend left it out. An existing entry is replaced with a warning.
func (s *Store) AddPlatform(name string, args []string, kwargs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	set, err := s.platformsLocked()
	if err != nil {
		return err
	}

	var prev platform.Entry
	if name == platform.DefaultName {
		if len(args) != 1 {
			return fmt.Errorf("%w: %q takes exactly one platform name, got %d", ErrInvalidArguments, name, len(args))
		}
		if prev, err = set.SetDefault(args[0]); err != nil {
			return err
		}
	} else {
		rec, err := s.buildRecord(name, args, kwargs)
		if err != nil {
			return err
		}
		if prev, err = set.Put(name, rec); err != nil {
			return err
		}
	}

	if prev != nil {
		log.Warn(log.CatPlatform, "Overwrite existing platform", "name", name, "previous", describeEntry(prev))
	}
	log.Debug(log.CatPlatform, "Added platform", "name", name)
	s.notifyLocked(ChangePlatform, name)
	return nil
}

func (s *Store) buildRecord(name string, args []string, kwargs map[string]any) (platform.Record, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: platform %q needs a backend class", ErrInvalidArguments, name)
	}

	class := args[0]
	b, ok := s.backends.Lookup(class)
	if !ok {
		return nil, &platform.InvalidReferenceError{
			Name:   name,
			Target: class,
			Reason: fmt.Sprintf("unknown backend class (known: %s)", strings.Join(s.backends.Names(), ", ")),
		}
	}

	rec, err := b.HandleConfig(slices.Clone(args[1:]), keys.CloneValue(kwargs).(map[string]any))
	if err != nil {
		return nil, fmt.Errorf("platform %q: %w", name, err)
	}
	if rec == nil {
		rec = platform.Record{}
	}
	if _, ok := rec[platform.ClassField]; !ok {
		rec[platform.ClassField] = class
	}
	return rec, nil
}

// GetPlatformInfo returns the resolved name and a copy of the record for
// name. "default" resolves through its alias.
func (s *Store) GetPlatformInfo(name string) (string, platform.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	set, err := s.platformsLocked()
	if err != nil {
		return name, nil, err
	}

	resolved, rec, err := set.Resolve(name)
	if err != nil {
		return resolved, nil, s.withPathLocked(err)
	}
	return resolved, rec, nil
}

// RemovePlatform deletes the entry stored under name. The current target of
// the default alias cannot be removed.
func (s *Store) RemovePlatform(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	set, err := s.platformsLocked()
	if err != nil {
		return err
	}

	removed, err := set.Remove(name)
	if err != nil {
		return s.withPathLocked(err)
	}

	log.Debug(log.CatPlatform, "Removed platform", "name", name, "entry", describeEntry(removed))
	s.notifyLocked(ChangePlatform, name)
	return nil
}

func (s *Store) withPathLocked(err error) error {
	var me *platform.MissingError
	if errors.As(err, &me) && me.Path == "" {
		me.Path = s.path
	}
	return err
}

func describeEntry(e platform.Entry) string {
	switch v := e.(type) {
	case platform.Alias:
		return string(v)
	case platform.Record:
		return fmt.Sprintf("%v", map[string]any(v))
	default:
		return fmt.Sprintf("%v", e)
	}
}
