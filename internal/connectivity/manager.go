package connectivity

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"cloudpico-tankmonitor/internal/mqtt"
	"cloudpico-tankmonitor/internal/types"
)

// maxClientIDLen is the MQTT 3.1 client identifier limit.
const maxClientIDLen = 23

// State of one link.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Link is the network interface the device publishes over.
type Link interface {
	Associate() error
	Connected() bool
	LocalIP() string
}

// Broker is the MQTT session.
type Broker interface {
	IsConnected() bool
	Connect(clientID string) error
}

type Options struct {
	ClientIDPrefix    string
	NetworkRetryDelay time.Duration
	BrokerRetryDelay  time.Duration

	// Sleep blocks between attempts. Defaults to time.Sleep.
	Sleep  func(time.Duration)
	Logger *slog.Logger
}

// Manager brings the network link and the broker session up with a bounded
// number of attempts. Failures are never fatal; callers get false and carry on.
type Manager struct {
	link   Link
	broker Broker
	opts   Options
	logger *slog.Logger

	mu      sync.RWMutex
	network State
	session State
}

func NewManager(link Link, broker Broker, opts Options) *Manager {
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		link:   link,
		broker: broker,
		opts:   opts,
		logger: opts.Logger,
	}
}

// EnsureNetwork returns true at once when the link is up. Otherwise it
// requests association and checks up to maxAttempts times, sleeping the
// network backoff before each check.
func (m *Manager) EnsureNetwork(maxAttempts int) bool {
	if m.link.Connected() {
		m.setNetwork(Connected)
		return true
	}

	m.setNetwork(Connecting)
	if err := m.link.Associate(); err != nil {
		m.logger.Warn("network association request failed", "error", err)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		m.opts.Sleep(m.opts.NetworkRetryDelay)
		if m.link.Connected() {
			m.setNetwork(Connected)
			m.logger.Info("network connected", "ip", m.link.LocalIP(), "attempt", attempt)
			return true
		}
		m.logger.Info("network not connected", "attempt", attempt, "max_attempts", maxAttempts)
	}

	m.setNetwork(Disconnected)
	m.logger.Warn("network setup gave up", "attempts", maxAttempts)
	return false
}

// EnsureBroker returns false without trying when the network is down and true
// without trying when the session is already live. Otherwise it makes up to
// maxAttempts connects, sleeping the broker backoff before each.
func (m *Manager) EnsureBroker(id types.Identity, maxAttempts int) bool {
	if !m.link.Connected() {
		m.setNetwork(Disconnected)
		m.setSession(Disconnected)
		m.logger.Debug("broker setup skipped, network down")
		return false
	}
	m.setNetwork(Connected)

	if m.broker.IsConnected() {
		m.setSession(Connected)
		return true
	}

	clientID := ClientID(m.opts.ClientIDPrefix, id.Name)
	m.setSession(Connecting)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		m.opts.Sleep(m.opts.BrokerRetryDelay)

		err := m.broker.Connect(clientID)
		if err == nil {
			m.setSession(Connected)
			m.logger.Info("broker connected", "client_id", clientID, "attempt", attempt)
			return true
		}
		m.logger.Warn("broker connect failed",
			"client_id", clientID,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"rc", reasonCode(err),
			"error", err,
		)
	}

	m.setSession(Disconnected)
	return false
}

// reasonCode extracts the CONNACK code, or -1 when the failure carried none.
func reasonCode(err error) int {
	var ce *mqtt.ConnectError
	if errors.As(err, &ce) {
		return int(ce.Code)
	}
	return -1
}

// ClientID derives the broker client identifier from the tank name, capped at
// the MQTT 3.1 limit so reconnects reuse a stable id. Long ids keep a prefix
// and end in a hash of the full id, so names sharing a prefix stay distinct.
func ClientID(prefix, name string) string {
	id := name
	if prefix != "" {
		id = prefix + "-" + name
	}
	if len(id) <= maxClientIDLen {
		return id
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	suffix := fmt.Sprintf("-%06x", h.Sum32()&0xffffff)

	n := maxClientIDLen - len(suffix)
	for n > 0 && !utf8.RuneStart(id[n]) {
		n--
	}
	return id[:n] + suffix
}

func (m *Manager) LocalIP() string { return m.link.LocalIP() }

func (m *Manager) NetworkConnected() bool { return m.link.Connected() }

func (m *Manager) NetworkState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.network
}

func (m *Manager) BrokerState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *Manager) setNetwork(s State) {
	m.mu.Lock()
	m.network = s
	m.mu.Unlock()
}

func (m *Manager) setSession(s State) {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
}
