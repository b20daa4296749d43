package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, "warn")
	log.Info().Msg("hidden")
	log.Warn().Str("channel", "c1").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "c1", line["channel"])
	assert.Equal(t, "warn", line["level"])
}

func TestNewDebugConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true, "error")
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.False(t, json.Valid(buf.Bytes()), "console output is not JSON")
}

func TestNewBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, "loud")
	log.Debug().Msg("dropped")
	assert.Empty(t, buf.String())
	log.Info().Msg("kept")
	assert.NotEmpty(t, buf.String())
}
