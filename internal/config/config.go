// Package config reads, holds and persists ixmp configuration.
//
// A Store holds one value for every key in its keys.Registry. Values are
// read from config.json in the first candidate directory that has one (see
// package paths) and saved to the highest-priority candidate directory.
//
// The "platform" key is registered on every registry made by NewRegistry.
// Its value is a *platform.Set of named connection profiles; the
// AddPlatform, GetPlatformInfo and RemovePlatform methods manage it.
//
// Collaborators register their own keys on Keys during initialisation,
// before the first store reads configuration.
package config

import (
	"path/filepath"
	"sync"

	"github.com/iiasa/ixmp/internal/backend"
	"github.com/iiasa/ixmp/internal/keys"
	"github.com/iiasa/ixmp/internal/paths"
	"github.com/iiasa/ixmp/internal/platform"
)

// ConfigFile is the name of the persisted configuration file.
const ConfigFile = "config.json"

// PlatformKey is the built-in key holding platform records.
const PlatformKey = "platform"

// LocalPlatform is the name of the default file-backed platform.
const LocalPlatform = "local"

// Keys is the process-wide key registry used by Default and by stores built
// without WithRegistry.
var Keys = NewRegistry()

// NewRegistry returns a key registry holding the built-in "platform" key.
func NewRegistry() *keys.Registry {
	r := keys.New()
	if err := r.RegisterFunc(PlatformKey, platform.Type, func() any {
		return DefaultPlatforms(paths.Resolver{})
	}); err != nil {
		panic(err)
	}
	return r
}

// DefaultPlatforms returns the built-in platform set: a "local" HyperSQL
// database under the first candidate directory, aliased as the default.
func DefaultPlatforms(r paths.Resolver) *platform.Set {
	rec := platform.Record{
		platform.ClassField: backend.ClassJDBC,
		"driver":            backend.DriverHSQLDB,
	}
	if p, ok := LocalDBPath(r); ok {
		rec["path"] = p
	}

	set := platform.NewSet()
	_, _ = set.Put(LocalPlatform, rec)
	_, _ = set.SetDefault(LocalPlatform)
	return set
}

// LocalDBPath returns the storage path of the local platform database for
// the current environment.
func LocalDBPath(r paths.Resolver) (string, bool) {
	first, ok := r.First()
	if !ok {
		return "", false
	}
	return filepath.Join(first.Path, "localdb", "default"), true
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the process-wide store over Keys, reading configuration on
// first use. The store is usable even when the read failed; it then holds
// defaults.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = Load()
	})
	return defaultStore, defaultErr
}
