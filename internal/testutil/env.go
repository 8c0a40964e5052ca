// Package testutil provides isolated configuration environments for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iiasa/ixmp/internal/paths"
)

// Env is a fake environment with its own home directory. It never touches
// the process environment, so tests using it may run in parallel.
type Env struct {
	t    *testing.T
	Home string
	vars map[string]string
}

// NewEnv creates an environment with a temporary home directory and neither
// IXMP_DATA nor XDG_DATA_HOME set.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	return &Env{t: t, Home: t.TempDir(), vars: make(map[string]string)}
}

// WithData sets IXMP_DATA to a new temporary directory and returns it.
func (e *Env) WithData() string {
	e.t.Helper()
	dir := e.t.TempDir()
	e.vars[paths.EnvData] = dir
	return dir
}

// WithXDG sets XDG_DATA_HOME to a new temporary directory and returns the
// ixmp directory under it.
func (e *Env) WithXDG() string {
	e.t.Helper()
	dir := e.t.TempDir()
	e.vars[paths.EnvXDGData] = dir
	return filepath.Join(dir, paths.AppDirName)
}

// Set assigns an environment variable.
func (e *Env) Set(key, value string) {
	e.vars[key] = value
}

// DefaultDir is the home fallback candidate.
func (e *Env) DefaultDir() string {
	return filepath.Join(e.Home, ".local", "share", paths.AppDirName)
}

// Resolver returns a resolver reading this environment.
func (e *Env) Resolver() paths.Resolver {
	return paths.Resolver{
		Getenv:  func(key string) string { return e.vars[key] },
		HomeDir: func() (string, error) { return e.Home, nil },
	}
}

// WriteConfig writes content as config.json in dir, creating dir.
func WriteConfig(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// IsolateProcessEnv points HOME at a temporary directory, sets IXMP_DATA to
// another and clears XDG_DATA_HOME for the duration of the test. Returns the
// IXMP_DATA directory.
func IsolateProcessEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	data := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(paths.EnvXDGData, "")
	t.Setenv(paths.EnvData, data)
	return data
}
