package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", "json", &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("selection complete", zap.Int("jobs", 2))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "selection complete", entry["message"])
	assert.Equal(t, float64(2), entry["jobs"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "console", &buf)
	require.NoError(t, err)

	logger.Debug("round started", zap.Int("round", 1))
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "round started")
	assert.Contains(t, buf.String(), `{"round": 1}`)
}

func TestNew_InvalidLevel(t *testing.T) {
	logger, err := New("loud", "json", &bytes.Buffer{})
	assert.Nil(t, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
