package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HardwareProfile describes how the peripherals are attached to the host.
type HardwareProfile struct {
	I2CBus  string         `yaml:"i2c_bus"`
	Display DisplayProfile `yaml:"display"`
	Light   LightProfile   `yaml:"light"`
	Water   WaterProfile   `yaml:"water"`
}

// DisplayProfile configures the SSD1306 panel.
type DisplayProfile struct {
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
	Rotated bool `yaml:"rotated"`
}

// LightProfile configures the BH1750 illuminance sensor.
type LightProfile struct {
	Address uint16 `yaml:"address"`
}

// WaterProfile configures the DS18B20 probe on the 1-Wire bus.
type WaterProfile struct {
	OneWireBus     string `yaml:"onewire_bus"`
	ResolutionBits int    `yaml:"resolution_bits"`
}

// DefaultHardwareProfile matches the reference build: 128x64 panel and BH1750
// on the default I2C bus, DS18B20 on the first 1-Wire master.
func DefaultHardwareProfile() *HardwareProfile {
	return &HardwareProfile{
		I2CBus: "",
		Display: DisplayProfile{
			Width:  128,
			Height: 64,
		},
		Light: LightProfile{
			Address: 0x23,
		},
		Water: WaterProfile{
			OneWireBus:     "",
			ResolutionBits: 12,
		},
	}
}

// LoadHardwareProfile reads a YAML profile. An empty path or a missing file
// yields the defaults; fields absent from the file keep their defaults.
func LoadHardwareProfile(path string) (*HardwareProfile, error) {
	p := DefaultHardwareProfile()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("read hardware profile: %w", err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse hardware profile: %w", err)
	}
	p.ensureDefaults()

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("hardware profile %s: %w", path, err)
	}
	return p, nil
}

func (p *HardwareProfile) ensureDefaults() {
	def := DefaultHardwareProfile()

	if p.Display.Width == 0 {
		p.Display.Width = def.Display.Width
	}
	if p.Display.Height == 0 {
		p.Display.Height = def.Display.Height
	}
	if p.Light.Address == 0 {
		p.Light.Address = def.Light.Address
	}
	if p.Water.ResolutionBits == 0 {
		p.Water.ResolutionBits = def.Water.ResolutionBits
	}
}

func (p *HardwareProfile) validate() error {
	if p.Water.ResolutionBits < 9 || p.Water.ResolutionBits > 12 {
		return fmt.Errorf("water.resolution_bits must be 9..12, got %d", p.Water.ResolutionBits)
	}
	if p.Display.Height != 32 && p.Display.Height != 48 && p.Display.Height != 64 {
		return fmt.Errorf("display.height must be 32, 48 or 64, got %d", p.Display.Height)
	}
	return nil
}
