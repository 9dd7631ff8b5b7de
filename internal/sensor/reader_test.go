package sensor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"cloudpico-tankmonitor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubThermometer struct {
	c   float64
	err error
}

func (s stubThermometer) Celsius() (float64, error) { return s.c, s.err }

type stubLight struct {
	lux float64
	err error
}

func (s stubLight) Lux() (float64, error) { return s.lux, s.err }

// captureHandler records log messages and levels.
type captureHandler struct {
	mu   sync.Mutex
	msgs []string
	lvls []slog.Level
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, r.Message)
	h.lvls = append(h.lvls, r.Level)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func TestReadTemperature(t *testing.T) {
	tests := []struct {
		name    string
		therm   Thermometer
		want    float64
		wantMsg string
	}{
		{name: "valid", therm: stubThermometer{c: 25.5}, want: 25.5, wantMsg: "temperature"},
		{name: "range low edge", therm: stubThermometer{c: -55}, want: -55, wantMsg: "temperature"},
		{name: "range high edge", therm: stubThermometer{c: 125}, want: 125, wantMsg: "temperature"},
		{name: "disconnected probe", therm: stubThermometer{c: -127}, want: types.Sentinel, wantMsg: "temperature sensor disconnected"},
		{name: "too hot", therm: stubThermometer{c: 125.5}, want: types.Sentinel, wantMsg: "temperature out of range"},
		{name: "too cold", therm: stubThermometer{c: -60}, want: types.Sentinel, wantMsg: "temperature out of range"},
		{name: "driver error", therm: stubThermometer{err: errors.New("crc mismatch")}, want: types.Sentinel, wantMsg: "temperature read failed"},
		{name: "missing driver", therm: nil, want: types.Sentinel, wantMsg: "temperature sensor missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &captureHandler{}
			r := NewReader(tt.therm, stubLight{}, slog.New(h))

			assert.Equal(t, tt.want, r.ReadTemperature())
			require.Len(t, h.msgs, 1, "one diagnostic record per read")
			assert.Equal(t, tt.wantMsg, h.msgs[0])
		})
	}
}

func TestReadLight(t *testing.T) {
	tests := []struct {
		name  string
		light LightMeter
		want  float64
	}{
		{name: "converts lux to par", light: stubLight{lux: 367.22}, want: 367.22 / 3.05},
		{name: "dark", light: stubLight{lux: 0}, want: 0},
		{name: "negative", light: stubLight{lux: -1}, want: types.Sentinel},
		{name: "driver error", light: stubLight{err: errors.New("i2c nack")}, want: types.Sentinel},
		{name: "missing driver", light: nil, want: types.Sentinel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &captureHandler{}
			r := NewReader(stubThermometer{}, tt.light, slog.New(h))

			assert.InDelta(t, tt.want, r.ReadLight(), 1e-9)
			assert.Len(t, h.msgs, 1)
		})
	}
}

func TestRead_SensorsIndependent(t *testing.T) {
	r := NewReader(stubThermometer{err: errors.New("gone")}, stubLight{lux: 305}, slog.New(&captureHandler{}))

	assert.Equal(t, types.Sentinel, r.ReadTemperature())
	assert.InDelta(t, 100.0, r.ReadLight(), 1e-9)
}

func TestRead_FailuresLogAtWarn(t *testing.T) {
	h := &captureHandler{}
	r := NewReader(nil, nil, slog.New(h))
	r.ReadTemperature()
	r.ReadLight()

	require.Len(t, h.lvls, 2)
	for _, l := range h.lvls {
		assert.Equal(t, slog.LevelWarn, l)
	}
}
