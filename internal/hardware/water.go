package hardware

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewirereg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ds18b20"
)

const ds18b20Family = 0x28

var ErrNoProbe = errors.New("no DS18B20 found on 1-wire bus")

// WaterProbe is the first DS18B20 found on the 1-Wire bus.
type WaterProbe struct {
	bus onewire.BusCloser
	dev *ds18b20.Dev
}

// OpenWaterProbe opens the named 1-Wire bus ("" for the first one) and binds
// the first DS18B20 on it.
func OpenWaterProbe(busName string, resolutionBits int) (*WaterProbe, error) {
	bus, err := onewirereg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open 1-wire bus %q: %w", busName, err)
	}

	addrs, err := bus.Search(false)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("1-wire search: %w", err)
	}

	for _, a := range addrs {
		if a&0xff != ds18b20Family {
			continue
		}
		dev, err := ds18b20.New(bus, a, resolutionBits)
		if err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("ds18b20 %#016x: %w", uint64(a), err)
		}
		return &WaterProbe{bus: bus, dev: dev}, nil
	}

	_ = bus.Close()
	return nil, ErrNoProbe
}

// Celsius triggers one conversion and returns the result.
func (p *WaterProbe) Celsius() (float64, error) {
	var env physic.Env
	if err := p.dev.Sense(&env); err != nil {
		return 0, err
	}
	return env.Temperature.Celsius(), nil
}

func (p *WaterProbe) Close() error {
	_ = p.dev.Halt()
	return p.bus.Close()
}
