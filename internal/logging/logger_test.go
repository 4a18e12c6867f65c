package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apibeacon/beacon/internal/logging"
)

func TestLoggerWritesStructuredFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.NewWithWriter(&buf, false)
	logger.Info("API GET: response received", map[string]interface{}{
		"url":    "https://example.com/groups",
		"status": 200,
	})

	out := buf.String()
	assert.Contains(t, out, "API GET: response received")
	assert.Contains(t, out, "url=https://example.com/groups")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "level=INFO")
}

func TestLoggerDebugLevel(t *testing.T) {
	t.Parallel()

	t.Run("suppressed by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger := logging.NewWithWriter(&buf, false)
		logger.Debug("HTTP Request", nil)

		assert.Empty(t, buf.String())
	})

	t.Run("emitted in debug mode", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger := logging.NewWithWriter(&buf, true)
		logger.Debug("HTTP Request", map[string]interface{}{"method": "GET"})

		assert.Contains(t, buf.String(), "HTTP Request")
		assert.Contains(t, buf.String(), "method=GET")
	})
}

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.NewWithWriter(&buf, false)
	logger.Warn("saved token rejected", nil)
	logger.Error("request error", nil)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
}

func TestNewWritesToRotatedFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "log")

	logger, err := logging.New(dir, false)
	require.NoError(t, err)

	logger.Info("hello from the file sink", nil)

	content := logging.ReadLogFile(dir)
	assert.Contains(t, content, "hello from the file sink")
}

func TestReadLogFile(t *testing.T) {
	t.Parallel()

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, logging.LogFileName), []byte("line one\n"), 0o600))

		assert.Equal(t, "line one\n", logging.ReadLogFile(dir))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		content := logging.ReadLogFile(dir)
		assert.Contains(t, content, "log file not found")
		assert.Contains(t, content, filepath.Join(dir, logging.LogFileName))
	})
}
