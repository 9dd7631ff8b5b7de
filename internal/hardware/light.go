package hardware

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// BH1750 instruction set.
const (
	bh1750PowerOn        = 0x01
	bh1750ContinuousHRes = 0x10

	// counts per lux in high resolution mode
	bh1750CountsPerLux = 1.2
)

// LightMeter is a BH1750 ambient light sensor.
type LightMeter struct {
	dev *i2c.Dev
}

// OpenLightMeter powers the sensor on and starts continuous high-resolution
// measurement.
func OpenLightMeter(bus i2c.Bus, addr uint16) (*LightMeter, error) {
	d := &i2c.Dev{Bus: bus, Addr: addr}
	if err := d.Tx([]byte{bh1750PowerOn}, nil); err != nil {
		return nil, fmt.Errorf("bh1750 power on: %w", err)
	}
	if err := d.Tx([]byte{bh1750ContinuousHRes}, nil); err != nil {
		return nil, fmt.Errorf("bh1750 set mode: %w", err)
	}
	return &LightMeter{dev: d}, nil
}

// Lux returns the latest illuminance measurement.
func (m *LightMeter) Lux() (float64, error) {
	var buf [2]byte
	if err := m.dev.Tx(nil, buf[:]); err != nil {
		return 0, fmt.Errorf("bh1750 read: %w", err)
	}
	raw := uint16(buf[0])<<8 | uint16(buf[1])
	return float64(raw) / bh1750CountsPerLux, nil
}

func (m *LightMeter) String() string {
	return fmt.Sprintf("BH1750{%s}", m.dev)
}
