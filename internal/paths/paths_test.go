package paths

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func fakeHome(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func TestCandidates_NoEnvironment(t *testing.T) {
	home := t.TempDir()
	r := Resolver{Getenv: fakeEnv(nil), HomeDir: fakeHome(home)}

	got := slices.Collect(r.Candidates())

	require.Len(t, got, 1)
	assert.Equal(t, LabelDefault, got[0].Label)
	assert.Equal(t, filepath.Join(home, ".local", "share", "ixmp"), got[0].Path)
}

func TestCandidates_PriorityOrder(t *testing.T) {
	home := t.TempDir()
	data := t.TempDir()
	xdg := t.TempDir()
	r := Resolver{
		Getenv:  fakeEnv(map[string]string{EnvData: data, EnvXDGData: xdg}),
		HomeDir: fakeHome(home),
	}

	got := slices.Collect(r.Candidates())

	require.Len(t, got, 3)
	assert.Equal(t, Candidate{Label: LabelEnvData, Path: data}, got[0])
	assert.Equal(t, Candidate{Label: LabelEnvXDGData, Path: filepath.Join(xdg, "ixmp")}, got[1])
	assert.Equal(t, LabelDefault, got[2].Label)
}

func TestCandidates_EmptyVariablesAreUnset(t *testing.T) {
	r := Resolver{
		Getenv:  fakeEnv(map[string]string{EnvData: "", EnvXDGData: ""}),
		HomeDir: fakeHome(t.TempDir()),
	}

	assert.Len(t, slices.Collect(r.Candidates()), 1)
}

func TestCandidates_RelativeEnvironmentMadeAbsolute(t *testing.T) {
	r := Resolver{Getenv: fakeEnv(map[string]string{EnvData: "relative/dir"}), HomeDir: fakeHome(t.TempDir())}

	first, ok := r.First()
	require.True(t, ok)
	assert.True(t, filepath.IsAbs(first.Path))
	assert.Equal(t, "dir", filepath.Base(first.Path))
}

func TestCandidates_ObservesEnvironmentChanges(t *testing.T) {
	t.Setenv(EnvXDGData, "")
	t.Setenv(EnvData, "")
	r := Resolver{HomeDir: fakeHome(t.TempDir())}

	assert.Len(t, slices.Collect(r.Candidates()), 1)

	t.Setenv(EnvData, t.TempDir())
	assert.Len(t, slices.Collect(r.Candidates()), 2)
}

func TestCandidates_NoHome(t *testing.T) {
	r := Resolver{
		Getenv:  fakeEnv(nil),
		HomeDir: func() (string, error) { return "", errors.New("no home") },
	}

	assert.Empty(t, slices.Collect(r.Candidates()))
	_, ok := r.First()
	assert.False(t, ok)
}

func TestCandidates_StopsEarly(t *testing.T) {
	r := Resolver{
		Getenv:  fakeEnv(map[string]string{EnvData: t.TempDir(), EnvXDGData: t.TempDir()}),
		HomeDir: fakeHome(t.TempDir()),
	}

	count := 0
	for range r.Candidates() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestLocate_FirstExistingWins(t *testing.T) {
	data := t.TempDir()
	xdg := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "ixmp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "ixmp", "config.json"), []byte("{}"), 0o644))

	r := Resolver{
		Getenv:  fakeEnv(map[string]string{EnvData: data, EnvXDGData: xdg}),
		HomeDir: fakeHome(t.TempDir()),
	}

	got, err := r.Locate("config.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "ixmp", "config.json"), got)

	// Once the higher-priority directory has the file, it wins.
	require.NoError(t, os.WriteFile(filepath.Join(data, "config.json"), []byte("{}"), 0o644))
	got, err = r.Locate("config.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "config.json"), got)
}

func TestLocate_DirectoryOnly(t *testing.T) {
	data := t.TempDir()
	r := Resolver{Getenv: fakeEnv(map[string]string{EnvData: data}), HomeDir: fakeHome(t.TempDir())}

	got, err := r.Locate("")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocate_NotFound(t *testing.T) {
	data := t.TempDir()
	home := t.TempDir()
	r := Resolver{Getenv: fakeEnv(map[string]string{EnvData: data}), HomeDir: fakeHome(home)}

	_, err := r.Locate("nonexistent-file-xyz")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nonexistent-file-xyz", nf.Name)
	assert.Equal(t, []string{data, filepath.Join(home, ".local", "share", "ixmp")}, nf.Tried)
	assert.Contains(t, err.Error(), data)
}

func TestLocate_DefaultEnvironment(t *testing.T) {
	_, err := Locate("nonexistent-file-xyz-4c1f0e")
	assert.ErrorIs(t, err, ErrNotFound)
}
