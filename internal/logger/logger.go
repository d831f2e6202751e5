// Package logger provides a context-aware structured logger built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Level mirrors slog levels so callers don't import slog directly.
type Level = slog.Level

const (
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
)

// LoggerInterface is the logging contract shared by every module.
// The *c variants skip extra stack frames when resolving the caller.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

// TraceIDFn extracts a trace id from the context, if any.
type TraceIDFn func(ctx context.Context) string

// Logger writes structured records through an slog handler.
type Logger struct {
	handler slog.Handler
	traceID TraceIDFn
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing text records to w at the given minimum level.
// Every record carries the service name.
func New(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     minLevel,
	})

	return &Logger{
		handler: handler.WithAttrs([]slog.Attr{slog.String("service", serviceName)}),
		traceID: traceIDFn,
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return New(io.Discard, LevelError+1, "", nil)
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, 3, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, 3, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, 3, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, 3, msg, args...)
}

func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelDebug, caller, msg, args...)
}

func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelInfo, caller, msg, args...)
}

func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelWarn, caller, msg, args...)
}

func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelError, caller, msg, args...)
}

// Slog exposes the logger as a *slog.Logger for libraries that want one.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(l.handler)
}

func (l *Logger) write(ctx context.Context, level Level, caller int, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(caller, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if l.traceID != nil {
		if id := l.traceID(ctx); id != "" {
			args = append(args, "trace_id", id)
		}
	}
	r.Add(args...)

	_ = l.handler.Handle(ctx, r)
}
