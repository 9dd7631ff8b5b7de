package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloudpico-tankmonitor/internal/types"
)

const (
	KeyTankName           = "tankName"
	KeySensorReadInterval = "sensorReadInterval"
)

// KV is the subset of Store the identity helpers need.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// LoadIdentity reads the persisted identity. Keys that were never written are
// seeded with the defaults so the next boot reads them back unchanged.
func LoadIdentity(kv KV, def types.Identity) (types.Identity, error) {
	id := def

	name, ok, err := kv.Get(KeyTankName)
	if err != nil {
		return def, err
	}
	if ok {
		id.Name = name
	} else if err := kv.Set(KeyTankName, def.Name); err != nil {
		return def, err
	}

	raw, ok, err := kv.Get(KeySensorReadInterval)
	if err != nil {
		return id, err
	}
	if ok {
		interval, err := ParseInterval(raw)
		if err != nil {
			// keep the name that was read; only the interval falls back
			return id, fmt.Errorf("stored %s: %w", KeySensorReadInterval, err)
		}
		id.SampleInterval = interval
	} else if err := SaveSensorReadInterval(kv, def.SampleInterval); err != nil {
		return id, err
	}

	return id, nil
}

// ValidateTankName rejects names that cannot be used as a topic level.
func ValidateTankName(name string) error {
	if name == "" {
		return errors.New("tank name must not be empty")
	}
	if strings.ContainsAny(name, "/+#") {
		return fmt.Errorf("tank name %q must not contain '/', '+' or '#'", name)
	}
	return nil
}

func SaveTankName(kv KV, name string) error {
	return kv.Set(KeyTankName, name)
}

// SaveSensorReadInterval stores d as whole milliseconds.
func SaveSensorReadInterval(kv KV, d time.Duration) error {
	return kv.Set(KeySensorReadInterval, strconv.FormatInt(d.Milliseconds(), 10))
}

// ParseInterval accepts integer milliseconds ("2000") or a Go duration
// ("2s"). The result must be at least one millisecond, since it is stored as
// whole milliseconds.
func ParseInterval(s string) (time.Duration, error) {
	var d time.Duration
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms > maxIntervalMS {
			return 0, fmt.Errorf("interval too large, got %q", s)
		}
		d = time.Duration(ms) * time.Millisecond
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q", s)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %q", s)
	}
	if d < time.Millisecond {
		return 0, fmt.Errorf("interval must be at least 1ms, got %q", s)
	}
	return d, nil
}

const maxIntervalMS = math.MaxInt64 / int64(time.Millisecond)
