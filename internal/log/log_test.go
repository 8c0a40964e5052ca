package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })
	return &buf
}

func TestLog_FormatsFields(t *testing.T) {
	buf := captureOutput(t)

	Warn(CatPlatform, "Overwrite existing platform", "name", "local", "previous", "jdbc")

	line := buf.String()
	assert.Contains(t, line, "[WARN] [platform] Overwrite existing platform")
	assert.Contains(t, line, "name=local")
	assert.Contains(t, line, "previous=jdbc")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestLog_OrphanField(t *testing.T) {
	buf := captureOutput(t)

	Info(CatConfig, "odd fields", "path")

	assert.Contains(t, buf.String(), "path=<missing>")
}

func TestLog_MinLevelFilters(t *testing.T) {
	buf := captureOutput(t)
	SetMinLevel(LevelWarn)

	Debug(CatConfig, "hidden")
	Info(CatConfig, "hidden too")
	Error(CatConfig, "visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[ERROR] [config] visible")
}

func TestLog_ErrorErr(t *testing.T) {
	buf := captureOutput(t)

	ErrorErr(CatConfig, "failed", os.ErrNotExist, "path", "/tmp/x")
	ErrorErr(CatConfig, "no error", nil)

	out := buf.String()
	assert.Contains(t, out, "error=file does not exist")
	assert.Contains(t, out, "error=<nil>")
}

func TestLog_SilentWithoutOutput(t *testing.T) {
	SetOutput(nil)
	// Must not panic.
	Error(CatConfig, "nobody listens")
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ixmp.log")

	cleanup, err := Init(path)
	require.NoError(t, err)

	Info(CatCLI, "started", "version", "dev")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] [cli] started version=dev")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}
