package device

import (
	"cloudpico-tankmonitor/internal/connectivity"
	"cloudpico-tankmonitor/internal/types"
)

// Status is a read-only snapshot taken at the end of each control step.
type Status struct {
	State     State
	Identity  types.Identity
	Timeline  Timeline
	SetupDone bool
	Cycles    uint64
	Network   connectivity.State
	Broker    connectivity.State
}

// Status returns the latest snapshot. Safe from any goroutine.
func (o *Orchestrator) Status() Status {
	return *o.status.Load()
}

func (o *Orchestrator) publishStatus() {
	o.status.Store(&Status{
		State:     o.state,
		Identity:  o.identity,
		Timeline:  o.timeline,
		SetupDone: o.setupDone,
		Cycles:    o.cycles,
		Network:   o.conn.NetworkState(),
		Broker:    o.conn.BrokerState(),
	})
}
