/*
Package log provides the prefixed, leveled logger every component of the server
is wired with.

Each line carries the component prefix in its color followed by slog text
attributes, for example:

	[SIMULATION] time=2025-02-10T10:00:00Z level=INFO msg="agent a reached its goal at (4,4)"
*/
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var (
	ErrNoWriter = errors.New("logger needs a writer")
	ErrNoPrefix = errors.New("logger needs a prefix")
)

const colorReset = "\033[0m"

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a slog.Level.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger writes leveled messages for one component.
// It is safe for concurrent use.
type Logger struct {
	slog *slog.Logger
}

// Option configures a Logger.
type Option func(*slog.HandlerOptions)

// WithLevel sets the minimum level written.
func WithLevel(level slog.Level) Option {
	return func(o *slog.HandlerOptions) { o.Level = level }
}

// New creates a logger that tags every line with the colored prefix.
// An empty color writes the prefix uncolored.
func New(prefix, color string, w io.Writer, opts ...Option) (*Logger, error) {
	if w == nil {
		return nil, ErrNoWriter
	}
	if prefix == "" {
		return nil, ErrNoPrefix
	}

	handlerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	for _, opt := range opts {
		opt(handlerOpts)
	}

	tag := fmt.Sprintf("[%s] ", prefix)
	if color != "" {
		tag = fmt.Sprintf("%s[%s]%s ", color, prefix, colorReset)
	}

	return &Logger{
		slog: slog.New(slog.NewTextHandler(&prefixWriter{tag: []byte(tag), w: w}, handlerOpts)),
	}, nil
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) { l.slog.Debug(msg) }

// Info logs an informational message.
func (l *Logger) Info(msg string) { l.slog.Info(msg) }

// Warning logs a warning.
func (l *Logger) Warning(msg string) { l.slog.Warn(msg) }

// Error logs an error.
func (l *Logger) Error(msg string) { l.slog.Error(msg) }

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.slog.Enabled(context.Background(), level)
}

// prefixWriter prepends the tag to each record. The text handler issues
// exactly one Write per record while holding its own lock.
type prefixWriter struct {
	tag []byte
	w   io.Writer
}

func (p *prefixWriter) Write(b []byte) (int, error) {
	line := make([]byte, 0, len(p.tag)+len(b))
	line = append(line, p.tag...)
	line = append(line, b...)
	if _, err := p.w.Write(line); err != nil {
		return 0, err
	}
	return len(b), nil
}
