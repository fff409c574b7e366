package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZerolog_WritesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerolog(&buf, "info", "database")
	logger.Info().Str("driver", "sqlite").Msg("connected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "database", entry["component"])
	assert.Equal(t, "sqlite", entry["driver"])
	assert.Equal(t, "connected", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewZerolog_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerolog(&buf, "WARN", "influx")
	logger.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewZerolog_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerolog(&buf, "chatty", "x")
	logger.Debug().Msg("dropped")
	logger.Info().Msg("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
