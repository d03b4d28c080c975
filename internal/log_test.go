package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"ERROR", LogLevelError},
		{"warn", LogLevelWarn},
		{"Info", LogLevelInfo},
		{"DEBUG", LogLevelDebug},
		{"TRACE", LogLevelTrace},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelWarn)

	logger.Info("[Runner] hidden %d", 1)
	logger.Debug("hidden too")
	logger.Warn("[Runner] shown %d", 2)
	logger.Error("failed: %s", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[Runner] shown 2")
	assert.Contains(t, out, "failed: boom")
	assert.Equal(t, LogLevelWarn, logger.GetLevel())
}

func TestLoggerTraceAndWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelTrace).With("run", "abc123")

	logger.Trace("row %d", 7)
	assert.Contains(t, buf.String(), "row 7")
	assert.Contains(t, buf.String(), "run=abc123")
}
