package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/iiasa/ixmp/internal/keys"
	"github.com/iiasa/ixmp/internal/platform"
)

func testPlatforms(t *testing.T) *platform.Set {
	t.Helper()
	s := platform.NewSet()
	_, err := s.Put("local", platform.Record{"class": "jdbc", "driver": "hsqldb", "path": "/data/localdb/default"})
	require.NoError(t, err)
	_, err = s.Put("remote", platform.Record{"class": "jdbc", "driver": "oracle", "url": "db:1521"})
	require.NoError(t, err)
	_, err = s.SetDefault("local")
	require.NoError(t, err)
	return s
}

func testValues(t *testing.T) ([]ValueDTO, *keys.Registry) {
	t.Helper()
	reg := keys.New()
	require.NoError(t, reg.Register("timeout", keys.Int, 30))
	require.NoError(t, reg.Register("platform", platform.Type, nil))
	values := map[string]any{
		"timeout":  45,
		"platform": testPlatforms(t),
		"extra":    map[string]any{"a": true},
	}
	return FromValues(values, reg), reg
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestFromValues(t *testing.T) {
	dtos, _ := testValues(t)

	require.Len(t, dtos, 3)
	assert.Equal(t, ValueDTO{Key: "extra", Type: "unregistered", Value: map[string]any{"a": true}}, dtos[0])
	assert.Equal(t, "platforms", dtos[1].Type)
	assert.True(t, dtos[1].Registered)
	assert.IsType(t, map[string]any{}, dtos[1].Value, "platform sets become plain maps")
	assert.Equal(t, ValueDTO{Key: "timeout", Type: "int", Registered: true, Value: 45}, dtos[2])
}

func TestFormatValues_JSON(t *testing.T) {
	dtos, _ := testValues(t)
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf, FormatJSON).FormatValues(dtos))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, float64(45), out["timeout"])
	assert.Equal(t, "local", out["platform"].(map[string]any)["default"])
}

func TestFormatValues_YAML(t *testing.T) {
	dtos, _ := testValues(t)
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf, FormatYAML).FormatValues(dtos))

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 45, out["timeout"])
	p := out["platform"].(map[string]any)
	assert.Equal(t, "local", p["default"])
	assert.Equal(t, "oracle", p["remote"].(map[string]any)["driver"])
}

func TestFormatValues_Text(t *testing.T) {
	dtos, _ := testValues(t)
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf, "").FormatValues(dtos))

	out := buf.String()
	assert.Regexp(t, `(?m)^timeout\s+int\s+45$`, out)
	assert.Regexp(t, `(?m)^extra\s+unregistered\s+\{"a":true\}$`, out)
}

func TestFromPlatforms(t *testing.T) {
	dtos := FromPlatforms(testPlatforms(t))

	require.Len(t, dtos, 3)
	assert.Equal(t, PlatformDTO{Name: "default", Alias: "local"}, dtos[0])
	assert.Equal(t, PlatformDTO{
		Name:    "local",
		Default: true,
		Class:   "jdbc",
		Fields:  map[string]any{"driver": "hsqldb", "path": "/data/localdb/default"},
	}, dtos[1])
	assert.False(t, dtos[2].Default)
}

func TestFormatPlatforms_Text(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf, FormatText).FormatPlatforms(FromPlatforms(testPlatforms(t))))

	out := buf.String()
	assert.Regexp(t, `(?m)^default\s+->\s+local$`, out)
	assert.Regexp(t, `(?m)^local\*\s+jdbc\s+driver=hsqldb path=/data/localdb/default$`, out)
	assert.Regexp(t, `(?m)^remote\s+jdbc\s+driver=oracle url=db:1521$`, out)
}

func TestFormatPlatform(t *testing.T) {
	var buf bytes.Buffer
	rec := map[string]any{"class": "jdbc", "driver": "hsqldb"}

	require.NoError(t, NewFormatter(&buf, FormatText).FormatPlatform("local", rec))
	assert.Equal(t, "local\n  class: jdbc\n  driver: hsqldb\n", buf.String())

	buf.Reset()
	require.NoError(t, NewFormatter(&buf, FormatJSON).FormatPlatform("local", rec))
	assert.JSONEq(t, `{"name": "local", "record": {"class": "jdbc", "driver": "hsqldb"}}`, buf.String())
}

func TestFormatCandidates(t *testing.T) {
	var buf bytes.Buffer
	candidates := []CandidateDTO{
		{Label: "environment (IXMP_DATA)", Path: "/data", Exists: true},
		{Label: "default", Path: "/home/u/.local/share/ixmp"},
	}

	require.NoError(t, NewFormatter(&buf, FormatText).FormatCandidates("", candidates))

	out := buf.String()
	assert.Contains(t, out, "loaded: (none; using defaults)")
	assert.Regexp(t, `(?m)^1\s+environment \(IXMP_DATA\)\s+/data\s+exists$`, out)
	assert.Regexp(t, `(?m)^2\s+default\s+/home/u/.local/share/ixmp\s+missing$`, out)
}

func TestFormatValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, FormatText).FormatValue("plain"))
	assert.Equal(t, "plain\n", buf.String())

	buf.Reset()
	require.NoError(t, NewFormatter(&buf, FormatYAML).FormatValue([]any{"a", 1}))
	assert.Equal(t, "- a\n- 1\n", buf.String())
}
