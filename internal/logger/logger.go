// Package logger builds the slog loggers used by the CLI and the web server.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is a wrapper around the standard slog.Logger.
type Logger struct {
	*slog.Logger
}

// Options configures a Logger. Empty fields take the defaults of New.
type Options struct {
	Level      string // DEBUG, INFO, WARN or ERROR
	Format     string // "text" or "json"
	Output     string // STDERR or STDOUT
	TimeFormat string // "RFC3339", "Unix", "UnixMilli", "Kitchen" or a layout
}

type options struct {
	level      slog.Level
	output     io.Writer
	format     string
	timeFormat string
}

// Option overrides a single setting.
type Option func(*options)

// WithLevel sets the minimum level.
func WithLevel(level string) Option {
	return func(o *options) {
		o.level = ParseLevel(level)
	}
}

// WithOutput sends records to w.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// New creates a Logger. Defaults are WARN, text, stderr, RFC3339 time.
func New(cfg Options, opts ...Option) *Logger {
	if cfg.Level == "" {
		cfg.Level = "WARN"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "RFC3339"
	}

	o := &options{
		level:      ParseLevel(cfg.Level),
		output:     parseOutput(cfg.Output),
		format:     strings.ToLower(cfg.Format),
		timeFormat: cfg.TimeFormat,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: o.level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.TimeKey || len(groups) > 0 {
				return a
			}
			t := a.Value.Time()
			switch o.timeFormat {
			case "Unix":
				return slog.Int64(slog.TimeKey, t.Unix())
			case "UnixMilli":
				return slog.Int64(slog.TimeKey, t.UnixMilli())
			case "RFC3339":
				return slog.String(slog.TimeKey, t.Format(time.RFC3339))
			case "Kitchen":
				return slog.String(slog.TimeKey, t.Format(time.Kitchen))
			default:
				return slog.String(slog.TimeKey, t.Format(o.timeFormat))
			}
		},
	}

	var handler slog.Handler
	switch o.format {
	case "json":
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	default:
		handler = slog.NewTextHandler(o.output, handlerOpts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// NewStdLogger adapts l for APIs that want a *log.Logger, such as
// http.Server.ErrorLog.
func NewStdLogger(l *Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(l.Handler(), level)
}

// InfoContextf logs an info message with formatting.
func (l *Logger) InfoContextf(ctx context.Context, format string, args ...any) {
	l.InfoContext(ctx, fmt.Sprintf(format, args...))
}

// WarnContextf logs a warning message with formatting.
func (l *Logger) WarnContextf(ctx context.Context, format string, args ...any) {
	l.WarnContext(ctx, fmt.Sprintf(format, args...))
}

// ParseLevel maps a level name to a slog.Level. Unknown names are INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseOutput(s string) io.Writer {
	switch strings.ToUpper(s) {
	case "STDOUT":
		return os.Stdout
	default:
		return os.Stderr
	}
}
