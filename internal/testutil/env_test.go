package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiasa/ixmp/internal/paths"
)

func TestEnv_Resolver(t *testing.T) {
	env := NewEnv(t)
	assert.Len(t, slices.Collect(env.Resolver().Candidates()), 1)

	data := env.WithData()
	xdg := env.WithXDG()

	got := slices.Collect(env.Resolver().Candidates())
	require.Len(t, got, 3)
	assert.Equal(t, data, got[0].Path)
	assert.Equal(t, xdg, got[1].Path)
	assert.Equal(t, env.DefaultDir(), got[2].Path)
}

func TestWriteConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	path := WriteConfig(t, dir, `{"a": 1}`)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, string(data))
}

func TestIsolateProcessEnv(t *testing.T) {
	data := IsolateProcessEnv(t)

	assert.Equal(t, data, os.Getenv(paths.EnvData))
	first, ok := paths.Resolver{}.First()
	require.True(t, ok)
	assert.Equal(t, data, first.Path)
}
