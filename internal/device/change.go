package device

import (
	"time"

	"cloudpico-tankmonitor/internal/types"
)

type changeKind int

const (
	renameChange changeKind = iota + 1
	intervalChange
)

// Change is an identity update handed to the control loop from another
// goroutine. It is applied at the start of the next tick.
type Change struct {
	kind     changeKind
	name     string
	interval time.Duration
}

func RenameTo(name string) Change {
	return Change{kind: renameChange, name: name}
}

func SetInterval(d time.Duration) Change {
	return Change{kind: intervalChange, interval: d}
}

func (c Change) apply(id *types.Identity) bool {
	switch c.kind {
	case renameChange:
		if c.name == "" {
			return false
		}
		id.Name = c.name
	case intervalChange:
		if c.interval <= 0 {
			return false
		}
		id.SampleInterval = c.interval
	default:
		return false
	}
	return true
}
