package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(level slog.Level, component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:     level,
		Component: component,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level}),
	})
	return logger, &buf
}

func TestLoggerAttachesComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo, ComponentWorker)

	logger.Info("processing", FieldDebtID, "d1")

	out := buf.String()
	if !strings.Contains(out, "component=worker") {
		t.Errorf("output missing component: %q", out)
	}
	if !strings.Contains(out, "debt_id=d1") {
		t.Errorf("output missing field: %q", out)
	}
	if !strings.Contains(out, "processing") {
		t.Errorf("output missing message: %q", out)
	}
}

func TestLoggerLevels(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn, ComponentHTTP)

	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record leaked below level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "also shown") {
		t.Errorf("warn/error records missing: %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo, ComponentApp)

	scoped := logger.WithComponent(ComponentBackup)
	if scoped.Component() != ComponentBackup {
		t.Errorf("Component() = %q, want %q", scoped.Component(), ComponentBackup)
	}
	scoped.Info("backing up")
	if !strings.Contains(buf.String(), "component=backup") {
		t.Errorf("output missing scoped component: %q", buf.String())
	}
}

func TestSlogAccessor(t *testing.T) {
	logger, _ := newBufferLogger(slog.LevelInfo, ComponentApp)
	if logger.Slog() == nil {
		t.Fatal("Slog() returned nil")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Component != ComponentApp {
		t.Errorf("Component = %q, want %q", cfg.Component, ComponentApp)
	}
	if cfg.Handler == nil {
		t.Error("default handler missing")
	}
}
