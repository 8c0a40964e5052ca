// Package paths locates ixmp configuration and data directories.
//
// Candidate directories, highest priority first:
//   - $IXMP_DATA
//   - $XDG_DATA_HOME/ixmp
//   - ~/.local/share/ixmp
//
// The first candidate is always the write target. Lookups return the first
// candidate that holds the requested file or directory.
package paths

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/iiasa/ixmp/internal/log"
)

// Environment variable names for directory overrides.
const (
	EnvData    = "IXMP_DATA"
	EnvXDGData = "XDG_DATA_HOME"
)

// AppDirName is appended to XDG_DATA_HOME and the home fallback.
const AppDirName = "ixmp"

// Candidate labels.
const (
	LabelEnvData    = "environment (IXMP_DATA)"
	LabelEnvXDGData = "environment (XDG_DATA_HOME)"
	LabelDefault    = "default"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports that no candidate directory held the requested name.
type NotFoundError struct {
	// Name is the requested file name; empty when only directories were located.
	Name string
	// Tried lists the directories checked, in priority order.
	Tried []string
}

func (e *NotFoundError) Error() string {
	what := e.Name
	if what == "" {
		what = "an ixmp data directory"
	}
	return fmt.Sprintf("could not find %s in [%s]", what, strings.Join(e.Tried, ", "))
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Candidate is a directory that could hold configuration.
type Candidate struct {
	Label string
	Path  string
}

// Resolver enumerates candidate directories. The zero value reads the process
// environment and home directory.
type Resolver struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// HomeDir defaults to os.UserHomeDir.
	HomeDir func() (string, error)
}

func (r Resolver) getenv(key string) string {
	if r.Getenv != nil {
		return r.Getenv(key)
	}
	return os.Getenv(key)
}

func (r Resolver) homeDir() (string, error) {
	if r.HomeDir != nil {
		return r.HomeDir()
	}
	return os.UserHomeDir()
}

// Candidates yields candidate directories in priority order. The environment
// is read afresh on every iteration. Empty variables count as unset.
func (r Resolver) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if dir := r.getenv(EnvData); dir != "" {
			if !yield(Candidate{Label: LabelEnvData, Path: absolute(dir)}) {
				return
			}
		}

		if xdg := r.getenv(EnvXDGData); xdg != "" {
			if !yield(Candidate{Label: LabelEnvXDGData, Path: absolute(filepath.Join(xdg, AppDirName))}) {
				return
			}
		}

		home, err := r.homeDir()
		if err != nil || home == "" {
			log.Debug(log.CatPaths, "Home directory unavailable", "error", err)
			return
		}
		yield(Candidate{Label: LabelDefault, Path: filepath.Join(home, ".local", "share", AppDirName)})
	}
}

// First returns the highest-priority candidate, whether or not it exists.
func (r Resolver) First() (Candidate, bool) {
	for c := range r.Candidates() {
		return c, true
	}
	return Candidate{}, false
}

// Locate returns the first existing candidate directory, or with a non-empty
// filename the first existing dir/filename.
func (r Resolver) Locate(filename string) (string, error) {
	var tried []string
	for c := range r.Candidates() {
		path := c.Path
		if filename != "" {
			path = filepath.Join(c.Path, filename)
		}

		if _, err := os.Stat(path); err == nil {
			log.Debug(log.CatPaths, "Located", "name", filename, "path", path, "source", c.Label)
			return path, nil
		}
		tried = append(tried, c.Path)
	}
	return "", &NotFoundError{Name: filename, Tried: tried}
}

// Locate resolves filename against the process environment.
func Locate(filename string) (string, error) {
	return Resolver{}.Locate(filename)
}

func absolute(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
