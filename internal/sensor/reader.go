package sensor

import (
	"log/slog"

	"cloudpico-tankmonitor/internal/types"
)

const (
	// disconnectedC is what a DS18B20 reports when the probe is unplugged.
	disconnectedC = -127.0
	minWaterC     = -55.0
	maxWaterC     = 125.0

	// luxPerPAR converts illuminance to PAR (µmol/m²/s) for daylight spectrum.
	luxPerPAR = 3.05
)

// Thermometer reads the water probe.
type Thermometer interface {
	Celsius() (float64, error)
}

// LightMeter reads ambient illuminance.
type LightMeter interface {
	Lux() (float64, error)
}

// Reader takes one acquisition per call. A missing driver, a driver error or
// an out-of-range value all yield types.Sentinel.
type Reader struct {
	water  Thermometer
	light  LightMeter
	logger *slog.Logger
}

// NewReader accepts nil drivers for sensors that failed to open at boot.
func NewReader(water Thermometer, light LightMeter, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{water: water, light: light, logger: logger}
}

func (r *Reader) ReadTemperature() float64 {
	if r.water == nil {
		r.logger.Warn("temperature sensor missing", "temperature_c", types.Sentinel)
		return types.Sentinel
	}

	c, err := r.water.Celsius()
	switch {
	case err != nil:
		r.logger.Warn("temperature read failed", "error", err)
		return types.Sentinel
	case c == disconnectedC:
		r.logger.Warn("temperature sensor disconnected")
		return types.Sentinel
	case c < minWaterC || c > maxWaterC:
		r.logger.Warn("temperature out of range", "temperature_c", c)
		return types.Sentinel
	}

	r.logger.Info("temperature", "temperature_c", c)
	return c
}

func (r *Reader) ReadLight() float64 {
	if r.light == nil {
		r.logger.Warn("light sensor missing", "par", types.Sentinel)
		return types.Sentinel
	}

	lux, err := r.light.Lux()
	if err != nil {
		r.logger.Warn("light read failed", "error", err)
		return types.Sentinel
	}

	par := lux / luxPerPAR
	if par < 0 {
		r.logger.Warn("light out of range", "lux", lux)
		return types.Sentinel
	}

	r.logger.Info("light", "lux", lux, "par", par)
	return par
}
