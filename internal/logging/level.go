package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Level names accepted in the configuration file, least verbose first.
const (
	LevelError = "ERROR"
	LevelInfo  = "INFO"
	LevelDebug = "DEBUG"
)

// LevelFilter decides which records reach the log sink.
//
// The three known names are cumulative thresholds. Any other name falls back
// to exact matching on the record's level name, so "WARN" passes only WARN
// records and a name no level carries lets nothing through.
type LevelFilter struct {
	threshold slog.Level
	exact     bool
	name      string
}

// ParseLevel builds the filter for a configured level name.
func ParseLevel(name string) LevelFilter {
	name = strings.ToUpper(strings.TrimSpace(name))
	switch name {
	case LevelError:
		return LevelFilter{threshold: slog.LevelError}
	case LevelInfo:
		return LevelFilter{threshold: slog.LevelInfo}
	case LevelDebug:
		return LevelFilter{threshold: slog.LevelDebug}
	}
	return LevelFilter{threshold: slog.LevelDebug, exact: true, name: name}
}

// Allows reports whether a record at level should be written.
func (f LevelFilter) Allows(level slog.Level) bool {
	if f.exact {
		return f.name != "" && level.String() == f.name
	}
	return level >= f.threshold
}

// Cumulative reports whether the configured name was one of the known thresholds.
func (f LevelFilter) Cumulative() bool {
	return !f.exact
}

type filterHandler struct {
	slog.Handler
	filter LevelFilter
}

func (h *filterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.filter.Allows(level) && h.Handler.Enabled(ctx, level)
}

func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filterHandler{Handler: h.Handler.WithAttrs(attrs), filter: h.filter}
}

func (h *filterHandler) WithGroup(name string) slog.Handler {
	return &filterHandler{Handler: h.Handler.WithGroup(name), filter: h.filter}
}
