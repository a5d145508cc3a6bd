package reclog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLoggerWithOutput(LevelDebug, &buf)

	logger.Debug("debug message: %s", "test")

	output := buf.String()
	assert.Contains(t, output, "debug message: test")
	assert.Contains(t, strings.ToLower(output), "debug")
}

func TestWriterLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLoggerWithOutput(LevelError, &buf)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	output := buf.String()
	assert.Contains(t, output, "error")
	assert.NotContains(t, output, "debug")
	assert.NotContains(t, output, "info")
	assert.NotContains(t, output, "warn")
}

func TestWriterLogger_SetLevel(t *testing.T) {
	logger := NewWriterLoggerWithOutput(LevelInfo, &bytes.Buffer{})

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())

	logger.SetLevel(LevelError)
	assert.Equal(t, LevelError, logger.GetLevel())
}

func TestNoOp(t *testing.T) {
	var n NoOp
	n.Debug("debug")
	n.Info("info")
	n.Warn("warn")
	n.Error("error")
	n.SetLevel(LevelDebug)
	assert.Equal(t, LevelInfo, n.GetLevel())
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, NoOp{}, OrNoOp(nil))

	var buf bytes.Buffer
	l := NewWriterLoggerWithOutput(LevelInfo, &buf)
	assert.Same(t, Logger(l), OrNoOp(l))
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}
