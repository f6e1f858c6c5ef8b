package observe

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ParseLogLevel maps a level name onto zerolog's levels. Unknown names fall
// back to info.
func ParseLogLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// structuredLogger adapts zerolog to the Logger interface and redacts
// credential-bearing fields before they reach the sink.
type structuredLogger struct {
	lg zerolog.Logger
}

// NewLogger creates a structured logger writing JSON lines to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a structured logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	lg := zerolog.New(w).Level(ParseLogLevel(level)).With().Timestamp().Logger()
	return &structuredLogger{lg: lg}
}

// WithCall returns a logger with dispatch context attached. The caller
// fingerprint stands in for any identifying detail; endpoints and usernames
// never appear.
func (l *structuredLogger) WithCall(meta CallMeta) Logger {
	lc := l.lg.With().
		Str("odoo.model", meta.Model).
		Str("odoo.operation", meta.Operation)
	if meta.Database != "" {
		lc = lc.Str("odoo.database", meta.Database)
	}
	if meta.Fingerprint != "" {
		lc = lc.Str("caller.fingerprint", meta.Fingerprint)
	}
	return &structuredLogger{lg: lc.Logger()}
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(l.lg.Info(), msg, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(l.lg.Warn(), msg, fields)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(l.lg.Error(), msg, fields)
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(l.lg.Debug(), msg, fields)
}

func (l *structuredLogger) log(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		if isRedactedField(f.Key) {
			ev = ev.Str(f.Key, "[REDACTED]")
			continue
		}
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

// isRedactedField returns true if the field should be redacted.
func isRedactedField(key string) bool {
	return redactedKeys[key]
}

var redactedKeys = func() map[string]bool {
	m := make(map[string]bool, len(RedactedFields))
	for _, k := range RedactedFields {
		m[k] = true
	}
	return m
}()

var _ Logger = (*structuredLogger)(nil)
