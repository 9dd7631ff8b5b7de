package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"cloudpico-tankmonitor/internal/types"
)

// Payload is the JSON body published per cycle. Field order is the wire key
// order; failed readings are omitted.
type Payload struct {
	Temperature *float64 `json:"Temperature,omitempty"`
	PAR         *float64 `json:"PAR,omitempty"`
	IPAddress   string   `json:"IPAddress"`
}

func NewPayload(r types.Reading, ip string) Payload {
	p := Payload{IPAddress: ip}
	if types.Valid(r.Temperature) {
		t := r.Temperature
		p.Temperature = &t
	}
	if types.Valid(r.PAR) {
		par := r.PAR
		p.PAR = &par
	}
	return p
}

// Topic is where a tank's readings go.
func Topic(name string) string {
	return fmt.Sprintf("Tanks/%s/SensorData", name)
}

type Session interface {
	IsConnected() bool
	Publish(topic string, payload []byte) error
}

type Connectivity interface {
	EnsureBroker(id types.Identity, maxAttempts int) bool
	LocalIP() string
}

// Publisher sends readings fire-and-forget: a dropped reading is never
// retried or buffered.
type Publisher struct {
	session Session
	conn    Connectivity
	logger  *slog.Logger
}

func NewPublisher(session Session, conn Connectivity, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{session: session, conn: conn, logger: logger}
}

// Publish reports whether the reading was handed to the broker. With no live
// session it tries one reconnect and otherwise drops the reading.
func (p *Publisher) Publish(r types.Reading, id types.Identity) bool {
	if !p.session.IsConnected() && !p.conn.EnsureBroker(id, 1) {
		p.logger.Debug("reading dropped, broker not connected", "tank", id.Name)
		return false
	}

	body, err := json.Marshal(NewPayload(r, p.conn.LocalIP()))
	if err != nil {
		p.logger.Error("marshal payload", "error", err)
		return false
	}

	topic := Topic(id.Name)
	if err := p.session.Publish(topic, body); err != nil {
		p.logger.Warn("publish failed", "topic", topic, "error", err)
		return false
	}

	p.logger.Info("published", "topic", topic, "payload", string(body))
	return true
}
