// Package log layers a component name on top of slog. Every record a Logger
// emits carries a component attribute, so the web app, the backup worker and
// the AMQP client can share one output stream and still be told apart.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Logger emits slog records tagged with a component name.
type Logger struct {
	inner     *slog.Logger
	component string
}

// Config controls handler, level and component of a new Logger.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return &Logger{
		inner:     slog.New(handler),
		component: config.Component,
	}
}

// With returns a logger carrying extra attributes on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...), component: l.component}
}

// WithComponent rescopes the logger to another component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{inner: l.inner, component: component}
}

// Component returns the component name records are tagged with.
func (l *Logger) Component() string {
	return l.component
}

// Slog exposes the underlying slog.Logger, e.g. for slog.SetDefault.
func (l *Logger) Slog() *slog.Logger {
	return l.inner
}

// SetDefault installs the logger's slog backend as the process default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.inner)
}

// log is the single funnel: it prefixes the component attribute and forwards
// to slog, so the level methods below stay one-liners.
func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	l.inner.Log(ctx, level, msg, append([]any{FieldComponent, l.component}, args...)...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, args)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, args)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, args)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(context.Background(), slog.LevelError, msg, args)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, args)
}
