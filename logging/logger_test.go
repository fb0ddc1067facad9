package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gocrud/lifecycle/logging"
	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(logging.WithWriter(&buf))

	logger.Info("Service started", logging.Field{Key: "service", Value: "web"})

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "Service started")
	assert.Contains(t, out, "service=web")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestConsoleLogger_MinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(
		logging.WithWriter(&buf),
		logging.WithMinimumLevel(logging.LogLevelWarn),
	)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestConsoleLogger_WithCategory(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(logging.WithWriter(&buf)).WithCategory("manager")

	logger.Info("starting")

	assert.Contains(t, buf.String(), "(manager)")
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", logging.LogLevelDebug.String())
	assert.Equal(t, "ERROR", logging.LogLevelError.String())
	assert.Equal(t, "UNKNOWN", logging.LogLevel(42).String())
}

func TestNopLogger_DoesNothing(t *testing.T) {
	logger := logging.NewNopLogger()
	logger.Info("ignored", logging.Field{Key: "k", Value: "v"})
	logger.Error("ignored")
	assert.NotNil(t, logger.WithCategory("x"))
}
