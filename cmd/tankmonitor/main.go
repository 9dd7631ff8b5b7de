package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cloudpico-tankmonitor/internal/app"
	"cloudpico-tankmonitor/internal/config"
	"cloudpico-tankmonitor/internal/logging"
)

var version = "dev"
var appName = "tankmonitor"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	out, diag, diagErr := logging.OpenDiagnosticSink(cfg)
	defer diag.Close()

	logger := logging.New(cfg, version, appName, out)
	slog.SetDefault(logger)

	if diagErr != nil {
		slog.Warn("diagnostic serial port unavailable", "error", diagErr)
	}

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		stop()
		_ = diag.Close()
		os.Exit(1)
	}

	slog.Info("shutting down")
}
