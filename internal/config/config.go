package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	MQTTBroker         string
	MQTTPort           int
	MQTTClientIDPrefix string

	NetInterface         string
	NetworkSetupAttempts int
	NetworkRetryDelay    time.Duration
	BrokerSetupAttempts  int
	BrokerRetryDelay     time.Duration

	SettingsPath              string
	DefaultTankName           string
	DefaultSensorReadInterval time.Duration

	SplashDuration time.Duration
	SplashImage    string
	TickPeriod     time.Duration

	DiagSerialPort string
	DiagSerialBaud int

	Hardware HardwareProfile
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := envString("HTTP_ADDR", ":8080")

	mqttBroker := envString("MQTT_BROKER", "localhost")
	mqttPort, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT out of range: %d", mqttPort)
	}
	clientIDPrefix := envString("MQTT_CLIENT_ID_PREFIX", "tankmonitor")

	netInterface := envString("NET_INTERFACE", "wlan0")
	networkAttempts, err := envPositiveInt("NETWORK_SETUP_ATTEMPTS", 5)
	if err != nil {
		return Config{}, err
	}
	networkDelay, err := envDuration("NETWORK_RETRY_DELAY", time.Second)
	if err != nil {
		return Config{}, err
	}
	brokerAttempts, err := envPositiveInt("BROKER_SETUP_ATTEMPTS", 3)
	if err != nil {
		return Config{}, err
	}
	brokerDelay, err := envDuration("BROKER_RETRY_DELAY", 2*time.Second)
	if err != nil {
		return Config{}, err
	}

	settingsPath := envString("SETTINGS_PATH", "/var/lib/tankmonitor/settings.db")
	tankName := envString("DEFAULT_TANK_NAME", "Q2")
	readInterval, err := envDuration("DEFAULT_SENSOR_READ_INTERVAL", 2*time.Second)
	if err != nil {
		return Config{}, err
	}

	splashDuration, err := envDuration("SPLASH_DURATION", 3*time.Second)
	if err != nil {
		return Config{}, err
	}
	splashImage := envString("SPLASH_IMAGE", "")
	tickPeriod, err := envDuration("TICK_PERIOD", 10*time.Millisecond)
	if err != nil {
		return Config{}, err
	}

	diagPort := envString("DIAG_SERIAL_PORT", "")
	diagBaud, err := envPositiveInt("DIAG_SERIAL_BAUD", 115200)
	if err != nil {
		return Config{}, err
	}

	hw, err := LoadHardwareProfile(envString("HARDWARE_PROFILE", ""))
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:                    appEnv,
		LogLevel:                  level,
		HTTPAddr:                  httpAddr,
		MQTTBroker:                mqttBroker,
		MQTTPort:                  mqttPort,
		MQTTClientIDPrefix:        clientIDPrefix,
		NetInterface:              netInterface,
		NetworkSetupAttempts:      networkAttempts,
		NetworkRetryDelay:         networkDelay,
		BrokerSetupAttempts:       brokerAttempts,
		BrokerRetryDelay:          brokerDelay,
		SettingsPath:              settingsPath,
		DefaultTankName:           tankName,
		DefaultSensorReadInterval: readInterval,
		SplashDuration:            splashDuration,
		SplashImage:               splashImage,
		TickPeriod:                tickPeriod,
		DiagSerialPort:            diagPort,
		DiagSerialBaud:            diagBaud,
		Hardware:                  *hw,
	}, nil
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envPositiveInt(key string, def int) (int, error) {
	n, err := envInt(key, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
