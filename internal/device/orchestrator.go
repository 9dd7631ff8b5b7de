package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"cloudpico-tankmonitor/internal/connectivity"
	"cloudpico-tankmonitor/internal/types"
)

// ErrDisplayInit is the one condition the device cannot run without.
var ErrDisplayInit = errors.New("display init failed")

const defaultInboxSize = 16

type Connectivity interface {
	EnsureNetwork(maxAttempts int) bool
	EnsureBroker(id types.Identity, maxAttempts int) bool
	NetworkConnected() bool
	NetworkState() connectivity.State
	BrokerState() connectivity.State
}

type Sensors interface {
	ReadTemperature() float64
	ReadLight() float64
}

type Publisher interface {
	Publish(r types.Reading, id types.Identity) bool
}

type Display interface {
	Init() error
	ShowSplash() error
	ShowReadings(r types.Reading, id types.Identity) error
}

type Options struct {
	SplashDuration       time.Duration
	NetworkSetupAttempts int
	BrokerSetupAttempts  int
	InboxSize            int
}

// Orchestrator is the device control loop. Boot, SetupConnectivity and Tick
// must all be called from the same goroutine; Submit and Status are safe from
// any goroutine.
type Orchestrator struct {
	clock     Clock
	conn      Connectivity
	sensors   Sensors
	publisher Publisher
	display   Display
	opts      Options
	logger    *slog.Logger

	state     State
	timeline  Timeline
	identity  types.Identity
	setupDone bool
	cycles    uint64

	inbox  chan Change
	status atomic.Pointer[Status]
}

func New(
	clock Clock,
	conn Connectivity,
	sensors Sensors,
	publisher Publisher,
	display Display,
	identity types.Identity,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NetworkSetupAttempts <= 0 {
		opts.NetworkSetupAttempts = 5
	}
	if opts.BrokerSetupAttempts <= 0 {
		opts.BrokerSetupAttempts = 3
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}
	o := &Orchestrator{
		clock:     clock,
		conn:      conn,
		sensors:   sensors,
		publisher: publisher,
		display:   display,
		opts:      opts,
		logger:    logger,
		identity:  identity,
		inbox:     make(chan Change, opts.InboxSize),
	}
	o.publishStatus()
	return o
}

// Boot brings the display up and starts the splash. Only the first successful
// call has any effect.
func (o *Orchestrator) Boot() error {
	if o.state != Booting {
		return nil
	}
	o.timeline.Now = o.clock.Now()
	if err := o.display.Init(); err != nil {
		o.publishStatus()
		return fmt.Errorf("%w: %w", ErrDisplayInit, err)
	}
	if err := o.display.ShowSplash(); err != nil {
		o.logger.Warn("splash render failed", "error", err)
	}

	o.timeline.Now = o.clock.Now()
	o.timeline.SplashStart = o.timeline.Now
	o.transition(ShowingSplash)
	o.publishStatus()
	return nil
}

// SetupConnectivity runs the boot-time connection sequence. It marks setup
// complete whatever the outcome.
func (o *Orchestrator) SetupConnectivity() {
	if o.conn.EnsureNetwork(o.opts.NetworkSetupAttempts) {
		o.conn.EnsureBroker(o.identity, o.opts.BrokerSetupAttempts)
	}
	o.setupDone = true
	o.timeline.Now = o.clock.Now()
	o.logger.Info("connectivity setup complete",
		"network", o.conn.NetworkState().String(),
		"broker", o.conn.BrokerState().String(),
	)
	o.publishStatus()
}

// Tick advances the loop by one step. It does work only when the splash gate
// opens or a sample is due.
func (o *Orchestrator) Tick() {
	o.drainInbox()

	now := o.clock.Now()
	o.timeline.Now = now

	if o.state == ShowingSplash && o.setupDone && now-o.timeline.SplashStart >= o.opts.SplashDuration {
		o.transition(Operational)
	}

	if o.state == Operational && now-o.timeline.LastSample >= o.identity.SampleInterval {
		o.sample()
		o.timeline.LastSample = now
		o.cycles++
	}

	o.publishStatus()
}

func (o *Orchestrator) sample() {
	id := o.identity
	r := types.Reading{
		Temperature: o.sensors.ReadTemperature(),
		PAR:         o.sensors.ReadLight(),
	}

	if !o.conn.NetworkConnected() {
		o.logger.Warn("network lost, reconnecting")
		if o.conn.EnsureNetwork(1) {
			o.conn.EnsureBroker(id, o.opts.BrokerSetupAttempts)
		}
	}
	if o.conn.NetworkConnected() {
		o.publisher.Publish(r, id)
	}

	if err := o.display.ShowReadings(r, id); err != nil {
		o.logger.Warn("display refresh failed", "error", err)
	}
}

// Submit queues a change for the next tick. It never blocks and returns false
// when the inbox is full.
func (o *Orchestrator) Submit(c Change) bool {
	select {
	case o.inbox <- c:
		return true
	default:
		return false
	}
}

func (o *Orchestrator) drainInbox() {
	for {
		select {
		case c := <-o.inbox:
			if !c.apply(&o.identity) {
				o.logger.Warn("ignored invalid identity change")
				continue
			}
			o.logger.Info("identity updated",
				"tank", o.identity.Name,
				"sensor_read_interval_ms", o.identity.SampleInterval.Milliseconds(),
			)
		default:
			return
		}
	}
}

func (o *Orchestrator) transition(to State) {
	if to <= o.state {
		return
	}
	o.logger.Info("state change", "from", o.state.String(), "to", to.String())
	o.state = to
}

func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) Timeline() Timeline { return o.timeline }

func (o *Orchestrator) Identity() types.Identity { return o.identity }
