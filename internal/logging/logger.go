package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"go.bug.st/serial"

	"cloudpico-tankmonitor/internal/config"
)

// New builds the process logger. Dev builds get coloured tint output, release
// builds emit JSON. When out is nil, stdout is used.
func New(cfg config.Config, version string, appName string, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stdout
	}

	if version == "dev" {
		h := tint.NewHandler(out, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
			NoColor:    out != os.Stdout,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}

// OpenDiagnosticSink returns the writer logs go to: stdout, plus the
// diagnostic UART when DIAG_SERIAL_PORT is set. The returned closer releases
// the port and is never nil.
func OpenDiagnosticSink(cfg config.Config) (io.Writer, io.Closer, error) {
	if cfg.DiagSerialPort == "" {
		return os.Stdout, nopCloser{}, nil
	}

	port, err := serial.Open(cfg.DiagSerialPort, &serial.Mode{
		BaudRate: cfg.DiagSerialBaud,
	})
	if err != nil {
		return os.Stdout, nopCloser{}, fmt.Errorf("open diagnostic port %s: %w", cfg.DiagSerialPort, err)
	}

	return io.MultiWriter(os.Stdout, bestEffort{port}), port, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// bestEffort swallows write errors so a detached console never stalls logging.
type bestEffort struct {
	w io.Writer
}

func (b bestEffort) Write(p []byte) (int, error) {
	_, _ = b.w.Write(p)
	return len(p), nil
}
