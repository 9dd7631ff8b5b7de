package hardware

import (
	"fmt"

	"cloudpico-tankmonitor/internal/config"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
)

// OpenDisplay binds the SSD1306 panel on bus with the profile's geometry.
func OpenDisplay(bus i2c.Bus, p config.DisplayProfile) (*ssd1306.Dev, error) {
	opts := ssd1306.DefaultOpts
	opts.W = p.Width
	opts.H = p.Height
	opts.Rotated = p.Rotated

	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: %w", err)
	}
	return dev, nil
}
