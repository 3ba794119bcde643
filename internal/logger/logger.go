// Package logger configures the process-wide structured logger. Logs go to
// stderr; stdout belongs to the tuning output.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var Default = NewText("info", os.Stderr)

// ParseLevel maps a level name to a slog level. Unknown names are an error.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

func levelOrInfo(level string) slog.Level {
	l, _ := ParseLevel(level)
	return l
}

// New returns a JSON logger.
func New(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelOrInfo(level)}))
}

// NewText returns a logfmt-style logger for terminals.
func NewText(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelOrInfo(level)}))
}

// Build validates level and format ("text" or "json") and returns the
// matching logger.
func Build(level, format string, w io.Writer) (*slog.Logger, error) {
	if _, err := ParseLevel(level); err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", "text":
		return NewText(level, w), nil
	case "json":
		return New(level, w), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// Discard drops everything; used by tests and --quiet callers.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func SetDefault(l *slog.Logger) {
	Default = l
	slog.SetDefault(l)
}

func Debug(msg string, args ...any) { Default.Debug(msg, args...) }
func Info(msg string, args ...any)  { Default.Info(msg, args...) }
func Warn(msg string, args ...any)  { Default.Warn(msg, args...) }
func Error(msg string, args ...any) { Default.Error(msg, args...) }

func With(args ...any) *slog.Logger {
	return Default.With(args...)
}
