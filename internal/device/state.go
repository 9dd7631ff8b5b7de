package device

import "time"

// State is the boot lifecycle. Transitions run forward only and Operational is
// terminal.
type State int

const (
	Booting State = iota
	ShowingSplash
	Operational
)

func (s State) String() string {
	switch s {
	case Booting:
		return "booting"
	case ShowingSplash:
		return "showing_splash"
	case Operational:
		return "operational"
	default:
		return "unknown"
	}
}

// Timeline holds elapsed time since boot. LastSample and SplashStart never
// exceed Now.
type Timeline struct {
	Now         time.Duration
	LastSample  time.Duration
	SplashStart time.Duration
}

// Clock reports monotonic time elapsed since boot.
type Clock interface {
	Now() time.Duration
}

type monotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts counting from the moment it is created.
func NewMonotonicClock() Clock {
	return monotonicClock{start: time.Now()}
}

func (c monotonicClock) Now() time.Duration {
	return time.Since(c.start)
}
