package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHardwareProfile(t *testing.T) {
	p := DefaultHardwareProfile()

	assert.Equal(t, 128, p.Display.Width)
	assert.Equal(t, 64, p.Display.Height)
	assert.Equal(t, uint16(0x23), p.Light.Address)
	assert.Equal(t, 12, p.Water.ResolutionBits)
}

func TestLoadHardwareProfile_EmptyPathAndMissingFile(t *testing.T) {
	p, err := LoadHardwareProfile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultHardwareProfile(), p)

	p, err = LoadHardwareProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHardwareProfile(), p)
}

func TestLoadHardwareProfile_PartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hw.yaml")
	content := `
i2c_bus: "/dev/i2c-3"
display:
  height: 32
  rotated: true
light:
  address: 0x5c
water:
  onewire_bus: "w1-bus-master1"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadHardwareProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/i2c-3", p.I2CBus)
	assert.Equal(t, 128, p.Display.Width, "width falls back to default")
	assert.Equal(t, 32, p.Display.Height)
	assert.True(t, p.Display.Rotated)
	assert.Equal(t, uint16(0x5c), p.Light.Address)
	assert.Equal(t, "w1-bus-master1", p.Water.OneWireBus)
	assert.Equal(t, 12, p.Water.ResolutionBits)
}

func TestLoadHardwareProfile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "display: [unterminated"},
		{name: "resolution too high", content: "water:\n  resolution_bits: 16\n"},
		{name: "odd panel height", content: "display:\n  height: 50\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hw.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadHardwareProfile(path)
			assert.Error(t, err)
		})
	}
}
