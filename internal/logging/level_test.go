package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name    string
		level   string
		allowed []slog.Level
		denied  []slog.Level
	}{
		{
			name:    "error only",
			level:   "ERROR",
			allowed: []slog.Level{slog.LevelError},
			denied:  []slog.Level{slog.LevelInfo, slog.LevelDebug},
		},
		{
			name:    "info includes error",
			level:   "info",
			allowed: []slog.Level{slog.LevelError, slog.LevelInfo},
			denied:  []slog.Level{slog.LevelDebug},
		},
		{
			name:    "debug includes everything",
			level:   " Debug ",
			allowed: []slog.Level{slog.LevelError, slog.LevelInfo, slog.LevelDebug},
		},
		{
			name:    "other level name matches exactly",
			level:   "WARN",
			allowed: []slog.Level{slog.LevelWarn},
			denied:  []slog.Level{slog.LevelError, slog.LevelInfo, slog.LevelDebug},
		},
		{
			name:    "lower case level name matches exactly",
			level:   "warn",
			allowed: []slog.Level{slog.LevelWarn},
			denied:  []slog.Level{slog.LevelError, slog.LevelInfo},
		},
		{
			name:   "level offsets are not parsed",
			level:  "DEBUG+4",
			denied: []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug},
		},
		{
			name:   "blank name matches nothing",
			level:  "   ",
			denied: []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug},
		},
		{
			name:   "unknown name matches nothing",
			level:  "VERBOSE",
			denied: []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			filter := ParseLevel(tc.level)
			for _, level := range tc.allowed {
				assert.True(t, filter.Allows(level), "expected %s to be allowed", level)
			}
			for _, level := range tc.denied {
				assert.False(t, filter.Allows(level), "expected %s to be denied", level)
			}
		})
	}

	t.Run("cumulative only for known names", func(t *testing.T) {
		assert.True(t, ParseLevel("INFO").Cumulative())
		assert.False(t, ParseLevel("WARN").Cumulative())
		assert.False(t, ParseLevel("nonsense").Cumulative())
	})
}

func TestFilteredLogger(t *testing.T) {
	t.Run("writes records allowed by the threshold", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewFilteredLogger(&buf, ParseLevel("INFO"))

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.Contains(t, output, "info message")
		assert.Contains(t, output, "error message")
		assert.Equal(t, 2, strings.Count(output, "\n"))
	})

	t.Run("debug threshold writes debug records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewFilteredLogger(&buf, ParseLevel("DEBUG"))

		logger.Debug("debug message")

		assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	})

	t.Run("exact match survives derived loggers", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewFilteredLogger(&buf, ParseLevel("WARN")).
			With(slog.String("component", "poller")).
			WithGroup("cycle")

		logger.Error("error message")
		logger.Warn("warning message")

		output := buf.String()
		assert.NotContains(t, output, "error message")
		assert.Contains(t, output, "warning message")
		assert.Contains(t, output, `"component":"poller"`)
	})
}
