package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cloudpico-tankmonitor/internal/config"
	"cloudpico-tankmonitor/internal/connectivity"
	"cloudpico-tankmonitor/internal/device"
	"cloudpico-tankmonitor/internal/display"
	"cloudpico-tankmonitor/internal/httpapi"
	"cloudpico-tankmonitor/internal/mqtt"
	"cloudpico-tankmonitor/internal/network"
	"cloudpico-tankmonitor/internal/sensor"
	"cloudpico-tankmonitor/internal/settings"
	"cloudpico-tankmonitor/internal/telemetry"
	"cloudpico-tankmonitor/internal/types"

	"github.com/google/uuid"
)

func Run(ctx context.Context, cfg config.Config) error {
	bootID := uuid.NewString()
	logger := slog.Default().With("boot_id", bootID)

	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"netInterface", cfg.NetInterface,
		"settingsPath", cfg.SettingsPath,
		"splashDuration", cfg.SplashDuration,
		"tickPeriod", cfg.TickPeriod,
	)

	store, err := settings.Open(cfg.SettingsPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("settings close", "error", err)
		}
	}()

	identity, err := settings.LoadIdentity(store, types.Identity{
		Name:           cfg.DefaultTankName,
		SampleInterval: cfg.DefaultSensorReadInterval,
	})
	if err != nil {
		logger.Warn("stored identity partly unreadable, defaults used for the rest", "error", err)
	}
	logger.Info("identity loaded",
		"tank", identity.Name,
		"sensor_read_interval_ms", identity.SampleInterval.Milliseconds(),
	)

	hw := openPeripherals(cfg.Hardware, logger)
	defer hw.close()

	session := mqtt.NewSession(cfg, logger)
	defer session.Disconnect()

	conn := connectivity.NewManager(network.NewInterface(cfg.NetInterface, logger), session, connectivity.Options{
		ClientIDPrefix:    cfg.MQTTClientIDPrefix,
		NetworkRetryDelay: cfg.NetworkRetryDelay,
		BrokerRetryDelay:  cfg.BrokerRetryDelay,
		Logger:            logger,
	})

	splash, err := display.LoadSplash(cfg.SplashImage)
	if err != nil {
		logger.Warn("splash image unusable, using built-in", "error", err)
	}
	presenter := display.NewPresenter(hw.openDisplay, splash, logger)
	defer func() { _ = presenter.Close() }()

	orch := device.New(
		device.NewMonotonicClock(),
		conn,
		sensor.NewReader(hw.thermometer(), hw.lightMeter(), logger),
		telemetry.NewPublisher(session, conn, logger),
		presenter,
		identity,
		device.Options{
			SplashDuration:       cfg.SplashDuration,
			NetworkSetupAttempts: cfg.NetworkSetupAttempts,
			BrokerSetupAttempts:  cfg.BrokerSetupAttempts,
		},
		logger,
	)

	if err := orch.Boot(); err != nil {
		// Nothing useful runs without the display. Stay halted until the
		// supervisor signals us, then report the failure.
		logger.Error("halted", "error", err)
		<-ctx.Done()
		return err
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewMux(store, orch, bootID))
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	orch.SetupConnectivity()

	err = loop(ctx, orch, cfg.TickPeriod, errCh)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("http shutting down")
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

type ticker interface {
	Tick()
}

// loop drives the orchestrator until ctx ends or the HTTP server dies.
func loop(ctx context.Context, orch ticker, period time.Duration, errCh <-chan error) error {
	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-t.C:
			orch.Tick()
		}
	}
}
