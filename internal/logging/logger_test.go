package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"cloudpico-tankmonitor/internal/config"
)

func TestNew_ReleaseBuildWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}

	logger := New(cfg, "1.2.0", "tankmonitor", &buf)
	logger.Info("sample cycle", "tank", "Q2")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	for k, want := range map[string]string{
		"msg":     "sample cycle",
		"app":     "tankmonitor",
		"version": "1.2.0",
		"env":     "prod",
		"tank":    "Q2",
	} {
		if got := rec[k]; got != want {
			t.Errorf("%s = %v, want %q", k, got, want)
		}
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}

	logger := New(cfg, "1.2.0", "tankmonitor", &buf)
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info record written at warn level: %s", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn record missing: %s", buf.String())
	}
}

func TestNew_DevBuildUsesTextHandler(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}

	logger := New(cfg, "dev", "tankmonitor", &buf)
	logger.Debug("probe", "rc", -2)

	out := buf.String()
	if !strings.Contains(out, "probe") || !strings.Contains(out, "rc=-2") {
		t.Fatalf("unexpected dev output: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour escapes written to a non-terminal writer: %q", out)
	}
}

func TestOpenDiagnosticSink_NoPort(t *testing.T) {
	w, c, err := OpenDiagnosticSink(config.Config{})
	if err != nil {
		t.Fatalf("OpenDiagnosticSink: %v", err)
	}
	if w == nil || c == nil {
		t.Fatal("writer and closer must not be nil")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestBestEffort_SwallowsErrors(t *testing.T) {
	w := bestEffort{w: failingWriter{}}
	n, err := w.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write = (%d, %v), want (5, nil)", n, err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("port gone") }
