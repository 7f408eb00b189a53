package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/oggyb/udinder/internal/config"
)

// initBuffered points the global logger at a buffer for the duration of the test.
func initBuffered(t *testing.T, c Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	c.Output = &buf
	Init(&c)
	t.Cleanup(func() { Init(&Config{Level: "info", Format: FormatText}) })
	return &buf
}

func TestLogger_TextFormat(t *testing.T) {
	buf := initBuffered(t, Config{Level: "debug", Format: FormatText, Component: "test"})
	Info("hello udinder", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello udinder") {
		t.Errorf("expected message, got: %s", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected structured field, got: %s", out)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	buf := initBuffered(t, Config{Level: "info", Format: FormatJSON, Component: "json_test"})
	Info("json log", "foo", "bar")

	out := buf.String()
	if !strings.Contains(out, `"msg":"json log"`) {
		t.Errorf("expected JSON message, got: %s", out)
	}
	if !strings.Contains(out, `"component":"json_test"`) {
		t.Errorf("expected component in JSON, got: %s", out)
	}
	if !strings.Contains(out, `"foo":"bar"`) {
		t.Errorf("expected structured field in JSON, got: %s", out)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	buf := initBuffered(t, Config{Level: "error", Format: FormatText})
	Info("should not appear")
	Error("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("info log should not appear, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("error log should appear, got: %s", out)
	}
}

func TestLogger_WithAddsFields(t *testing.T) {
	buf := initBuffered(t, Config{Level: "debug", Format: FormatText})
	With("req_id", "123").Info("processing request")

	if out := buf.String(); !strings.Contains(out, "req_id=123") {
		t.Errorf("expected req_id field, got: %s", out)
	}
}

func TestLogger_ContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: FormatText, Output: &buf}).With("request_id", "abc")

	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Debug("scoped")

	if out := buf.String(); !strings.Contains(out, "request_id=abc") || !strings.Contains(out, "scoped") {
		t.Errorf("expected scoped logger output, got: %s", out)
	}
	if FromContext(context.Background()) != L() {
		t.Errorf("expected global logger fallback for empty context")
	}
}

func TestLogger_InitFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	cfg.Log.Component = "cfg_test"
	InitFromConfig(cfg)
	t.Cleanup(func() { Init(&Config{Level: "info", Format: FormatText}) })

	if got := L().Handler().Enabled(context.Background(), slog.LevelDebug); !got {
		t.Errorf("expected debug level to be enabled")
	}
}
