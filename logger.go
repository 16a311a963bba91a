package patternset

import (
	"context"
	"log/slog"
	"os"

	"github.com/gopattern/patternset/cache"
)

// Logger wraps slog.Logger with patternset-specific context, matching the
// field-name conventions used across the package's structured logs.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler uses
// a text handler at info level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(1000)}))}
}

// LogOpen logs a dataset open, successful or not.
func (l *Logger) LogOpen(ctx context.Context, source string, version string, sections int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset open failed", "source", source, "error", err)
		return
	}
	l.InfoContext(ctx, "dataset opened", "source", source, "version", version, "sections", sections)
}

// LogSectionLoad logs the resident load of one section during open.
func (l *Logger) LogSectionLoad(ctx context.Context, section string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "section load failed", "section", section, "error", err)
		return
	}
	l.DebugContext(ctx, "section loaded", "section", section, "count", count)
}

// LogCacheEvent logs a slot's wiring decision at open time (direct,
// LRU-cached, or put-cache).
func (l *Logger) LogCacheEvent(ctx context.Context, slot cache.Slot, kind string) {
	l.DebugContext(ctx, "cache wired", "slot", slot.String(), "kind", kind)
}

// LogClose logs a dataset close.
func (l *Logger) LogClose(ctx context.Context, deletedBacking bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset close failed", "error", err)
		return
	}
	l.InfoContext(ctx, "dataset closed", "deleted_backing", deletedBacking)
}

// LogRefresh logs a distribution refresh attempt (§ auto-update).
func (l *Logger) LogRefresh(ctx context.Context, source string, err error) {
	if err != nil {
		l.WarnContext(ctx, "dataset refresh failed", "source", source, "error", err)
		return
	}
	l.InfoContext(ctx, "dataset refreshed", "source", source)
}
