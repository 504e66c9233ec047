package telemetry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Writer(t *testing.T) {
	buf := new(bytes.Buffer)
	logger, closeLogger, err := NewLogger(LoggerOptions{Level: "debug", Writer: buf})
	require.NoError(t, err)
	defer closeLogger()

	logger.Debug("proxy request", "status", 200)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "proxy request", line["msg"])
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, float64(200), line["status"])
}

func TestNewLogger_LevelFilters(t *testing.T) {
	buf := new(bytes.Buffer)
	logger, _, err := NewLogger(LoggerOptions{Level: "warn", Writer: buf})
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	logger, _, err := NewLogger(LoggerOptions{Level: "loud"})
	assert.Nil(t, logger)
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestNewLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "novachat.log")
	logger, closeLogger, err := NewLogger(LoggerOptions{File: file})
	require.NoError(t, err)

	logger.Info("written to file")
	closeLogger()

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to file")
}
