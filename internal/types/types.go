package types

import "time"

// Sentinel marks a reading that could not be acquired. It sits below any
// physically possible temperature or light level.
const Sentinel = -999.0

// Valid reports whether v is a real measurement rather than the sentinel.
func Valid(v float64) bool {
	return v > Sentinel
}

// Reading is one sampling cycle's worth of sensor values. Either field may
// hold Sentinel.
type Reading struct {
	Temperature float64
	PAR         float64
}

// Identity is the operator-configurable part of the device.
type Identity struct {
	Name           string
	SampleInterval time.Duration
}
