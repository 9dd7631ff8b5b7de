package mqtt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloudpico-tankmonitor/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 5 * time.Second
)

// ErrNotConnected is returned by Publish when there is no live session.
var ErrNotConnected = errors.New("mqtt session not connected")

// ConnectError carries the CONNACK return code of a refused or failed connect.
type ConnectError struct {
	Code byte
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("mqtt connect rc=%d: %v", e.Code, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// client is the part of the paho client the session drives.
type client interface {
	Connect() mqtt.Token
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Session is a single broker session. Reconnection is driven from outside
// (bounded attempts), so paho's own retry loops are disabled.
type Session struct {
	broker string
	port   int
	logger *slog.Logger

	newClient func(*mqtt.ClientOptions) client

	mu        sync.RWMutex
	client    client
	clientID  string
	connected bool
}

func NewSession(cfg config.Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		broker: cfg.MQTTBroker,
		port:   cfg.MQTTPort,
		logger: logger,
		newClient: func(o *mqtt.ClientOptions) client {
			return mqtt.NewClient(o)
		},
	}
}

func (s *Session) options(clientID string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", s.broker, s.port))
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(connectTimeout)

	opts.SetKeepAlive(15 * time.Second)
	opts.SetPingTimeout(5 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		s.setConnected(true)
		s.logger.Info("mqtt connected", "broker", s.broker, "port", s.port, "client_id", clientID)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		s.logger.Warn("mqtt connection lost", "error", err)
	})
	return opts
}

// Connect makes one connection attempt with clientID. A new paho client is
// built when the id changes (tank renamed). A failed attempt returns a
// *ConnectError.
func (s *Session) Connect(clientID string) error {
	s.mu.Lock()
	if s.client == nil || s.clientID != clientID {
		if s.client != nil {
			s.client.Disconnect(0)
		}
		s.client = s.newClient(s.options(clientID))
		s.clientID = clientID
		s.connected = false
	}
	c := s.client
	s.mu.Unlock()

	token := c.Connect()
	if !token.WaitTimeout(connectTimeout + time.Second) {
		return &ConnectError{Code: returnCode(token), Err: errors.New("connect timed out")}
	}
	if err := token.Error(); err != nil {
		return &ConnectError{Code: returnCode(token), Err: err}
	}
	if rc := returnCode(token); rc != 0 {
		return &ConnectError{Code: rc, Err: errors.New("connection refused")}
	}

	s.setConnected(true)
	return nil
}

func returnCode(t mqtt.Token) byte {
	if rc, ok := t.(interface{ ReturnCode() byte }); ok {
		return rc.ReturnCode()
	}
	return 0
}

// Publish sends payload at QoS 0, not retained.
func (s *Session) Publish(topic string, payload []byte) error {
	s.mu.RLock()
	c := s.client
	s.mu.RUnlock()

	if c == nil || !s.IsConnected() {
		return ErrNotConnected
	}

	token := c.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	s.logger.Debug("published", "topic", topic, "bytes", len(payload))
	return nil
}

// IsConnected reports whether the session is live.
func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected && s.client != nil && s.client.IsConnected()
}

func (s *Session) ClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientID
}

// Disconnect closes the session. Safe to call more than once.
func (s *Session) Disconnect() {
	s.mu.Lock()
	c := s.client
	s.connected = false
	s.mu.Unlock()

	if c != nil {
		c.Disconnect(250)
	}
	s.logger.Info("mqtt disconnected")
}

func (s *Session) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
