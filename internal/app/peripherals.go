package app

import (
	"errors"
	"log/slog"

	"cloudpico-tankmonitor/internal/config"
	"cloudpico-tankmonitor/internal/display"
	"cloudpico-tankmonitor/internal/hardware"
	"cloudpico-tankmonitor/internal/sensor"

	"periph.io/x/conn/v3/i2c"
)

var errNoI2C = errors.New("i2c bus unavailable")

// peripherals holds whatever hardware opened at boot. A sensor that failed to
// open stays nil and reads as the sentinel; only the display is required.
type peripherals struct {
	profile config.HardwareProfile
	bus     i2c.BusCloser
	water   *hardware.WaterProbe
	light   *hardware.LightMeter
}

func openPeripherals(profile config.HardwareProfile, logger *slog.Logger) *peripherals {
	p := &peripherals{profile: profile}

	if err := hardware.Init(); err != nil {
		logger.Error("periph host init failed", "error", err)
		return p
	}

	bus, err := hardware.OpenI2C(profile.I2CBus)
	if err != nil {
		logger.Error("i2c bus unavailable", "error", err)
	} else {
		p.bus = bus
		light, err := hardware.OpenLightMeter(bus, profile.Light.Address)
		if err != nil {
			logger.Warn("light sensor unavailable", "address", profile.Light.Address, "error", err)
		} else {
			p.light = light
		}
	}

	water, err := hardware.OpenWaterProbe(profile.Water.OneWireBus, profile.Water.ResolutionBits)
	if err != nil {
		logger.Warn("temperature probe unavailable", "error", err)
	} else {
		p.water = water
	}

	return p
}

func (p *peripherals) thermometer() sensor.Thermometer {
	if p.water == nil {
		return nil
	}
	return p.water
}

func (p *peripherals) lightMeter() sensor.LightMeter {
	if p.light == nil {
		return nil
	}
	return p.light
}

func (p *peripherals) openDisplay() (display.Surface, error) {
	if p.bus == nil {
		return nil, errNoI2C
	}
	return hardware.OpenDisplay(p.bus, p.profile.Display)
}

func (p *peripherals) close() {
	if p.water != nil {
		_ = p.water.Close()
	}
	if p.bus != nil {
		_ = p.bus.Close()
	}
}
