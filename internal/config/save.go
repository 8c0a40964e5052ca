package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/iiasa/ixmp/internal/keys"
	"github.com/iiasa/ixmp/internal/log"
	"github.com/iiasa/ixmp/internal/paths"
)

// Read loads config.json from the first candidate directory that has one.
// Numbers are decoded exactly: integers come back as int, even beyond the
// range a float64 holds.
//
// A missing file leaves the store at its current values. Keys that are not
// registered are kept as read. Every entry is converted before any is
// stored, so a failed Read changes no values.
func (s *Store) Read() error {
	path, err := s.resolver.Locate(ConfigFile)
	content := []byte("{}")
	switch {
	case errors.Is(err, paths.ErrNotFound):
		log.Debug(log.CatConfig, "No config file found; using defaults", "error", err)
		path = ""
	case err != nil:
		return fmt.Errorf("locating config: %w", err)
	default:
		content, err = os.ReadFile(path) //nolint:gosec // G304: path comes from the candidate directories
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	if path != "" {
		s.path = path
	}

	var data map[string]any
	if err := keys.DecodeJSON(content, &data); err != nil {
		log.Error(log.CatConfig, "Config file is not a JSON object", "path", path, "content", string(content))
		return &ParseError{Path: path, Content: string(content), Err: err}
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	staged := make(map[string]any, len(data))
	for _, name := range names {
		raw := data[name]
		if raw == nil {
			continue
		}
		coerced, err := s.registry.Coerce(name, raw, keys.Lenient)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if !s.registry.Has(name) {
			log.Debug(log.CatConfig, "Keeping unregistered key from file", "key", name, "path", path)
		}
		staged[name] = coerced
	}

	for name, v := range staged {
		s.values[name] = v
	}
	s.warnDanglingLocked()

	log.Debug(log.CatConfig, "Read config", "path", path, "keys", len(staged))
	s.notifyLocked(ChangeRead, "")
	return nil
}

// Save writes every value to config.json in the highest-priority candidate
// directory, creating it if needed and replacing any existing file.
// String keys holding "" are left out.
func (s *Store) Save() error {
	target, ok := s.resolver.First()
	if !ok {
		return ErrNoConfigDir
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()

	out := make(map[string]any, len(s.values))
	for name, v := range s.values {
		if k, ok := s.registry.Lookup(name); ok && k.Type == keys.String {
			if str, _ := v.(string); str == "" {
				continue
			}
		}
		out[name] = v
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(target.Path, 0o755); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", target.Path)
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(target.Path, ConfigFile)
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", path)
		return err
	}

	s.path = path
	log.Info(log.CatConfig, "Saved config", "path", path, "source", target.Label)
	s.notifyLocked(ChangeSave, "")
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, ".config.json.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
