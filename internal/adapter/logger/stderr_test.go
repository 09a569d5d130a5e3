package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStderr_WritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.DebugLevel)

	l.Info("downloading starter", "repo", "owner/name", "bytes", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "downloading starter", entry["message"])
	assert.Equal(t, "owner/name", entry["repo"])
	assert.EqualValues(t, 42, entry["bytes"])
}

func TestStderr_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"debug":    zerolog.DebugLevel,
		" WARNING": zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"off":      zerolog.Disabled,
		"bogus":    zerolog.InfoLevel,
	}
	for raw, want := range cases {
		assert.Equal(t, want, parseLevel(raw), "parseLevel(%q)", raw)
	}
}

func TestParseBool(t *testing.T) {
	v, ok := parseBool("true")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = parseBool("")
	assert.False(t, ok)

	_, ok = parseBool("maybe")
	assert.False(t, ok)
}
