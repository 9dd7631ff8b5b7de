package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cloudpico-tankmonitor/internal/settings"
)

const usage = `usage: %s <command>
  migrate                      apply pending schema migrations
  get <key>                    print a stored setting
  set <key> <value>            store a setting (tankName, sensorReadInterval)
`

func main() {
	path := strings.TrimSpace(os.Getenv("SETTINGS_PATH"))
	if path == "" {
		path = "/var/lib/tankmonitor/settings.db"
	}

	if err := run(path, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("missing or unknown command")

func run(path string, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	// Open applies migrations, so "migrate" only needs to open and close.
	store, err := settings.Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return fmt.Errorf("settings open: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("settings close", "err", closeErr)
		}
	}()

	switch args[0] {
	case "migrate":
		fmt.Fprintln(out, "migrations applied")
		return nil

	case "get":
		if len(args) != 2 {
			return errUsage
		}
		v, ok, err := store.Get(args[1])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not set", args[1])
		}
		fmt.Fprintln(out, v)
		return nil

	case "set":
		if len(args) != 3 {
			return errUsage
		}
		return set(store, args[1], args[2])

	default:
		return errUsage
	}
}

func set(store *settings.Store, key, value string) error {
	switch key {
	case settings.KeyTankName:
		value = strings.TrimSpace(value)
		if err := settings.ValidateTankName(value); err != nil {
			return err
		}
		return settings.SaveTankName(store, value)
	case settings.KeySensorReadInterval:
		d, err := settings.ParseInterval(value)
		if err != nil {
			return err
		}
		return settings.SaveSensorReadInterval(store, d)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
}
