package hardware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestLightMeter_OpenAndRead(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x23, W: []byte{0x01}},
			{Addr: 0x23, W: []byte{0x10}},
			{Addr: 0x23, R: []byte{0x01, 0xE0}},
		},
	}

	m, err := OpenLightMeter(bus, 0x23)
	require.NoError(t, err)

	lux, err := m.Lux()
	require.NoError(t, err)
	assert.InDelta(t, 400.0, lux, 1e-9)
	assert.NoError(t, bus.Close())
}

func TestLightMeter_OpenFails(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}

	_, err := OpenLightMeter(bus, 0x23)
	assert.Error(t, err)
}
