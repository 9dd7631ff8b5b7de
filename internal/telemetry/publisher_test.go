package telemetry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cloudpico-tankmonitor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	topic   string
	payload string
}

type fakeSession struct {
	connected bool
	err       error
	sent      []message
}

func (s *fakeSession) IsConnected() bool { return s.connected }

func (s *fakeSession) Publish(topic string, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, message{topic, string(payload)})
	return nil
}

type fakeConn struct {
	session  *fakeSession
	canReach bool
	ensured  []int
}

func (c *fakeConn) EnsureBroker(_ types.Identity, maxAttempts int) bool {
	c.ensured = append(c.ensured, maxAttempts)
	if c.canReach {
		c.session.connected = true
	}
	return c.canReach
}

func (c *fakeConn) LocalIP() string { return "10.0.0.5" }

var q2 = types.Identity{Name: "Q2", SampleInterval: 2 * time.Second}

func TestPayload_KeyOrderAndOmission(t *testing.T) {
	tests := []struct {
		name    string
		reading types.Reading
		want    string
	}{
		{
			name:    "both valid",
			reading: types.Reading{Temperature: 25.5, PAR: 120.4},
			want:    `{"Temperature":25.5,"PAR":120.4,"IPAddress":"10.0.0.5"}`,
		},
		{
			name:    "temperature failed",
			reading: types.Reading{Temperature: types.Sentinel, PAR: 120.4},
			want:    `{"PAR":120.4,"IPAddress":"10.0.0.5"}`,
		},
		{
			name:    "light failed",
			reading: types.Reading{Temperature: 24, PAR: types.Sentinel},
			want:    `{"Temperature":24,"IPAddress":"10.0.0.5"}`,
		},
		{
			name:    "both failed",
			reading: types.Reading{Temperature: types.Sentinel, PAR: types.Sentinel},
			want:    `{"IPAddress":"10.0.0.5"}`,
		},
		{
			name:    "zero is a real value",
			reading: types.Reading{Temperature: 0, PAR: 0},
			want:    `{"Temperature":0,"PAR":0,"IPAddress":"10.0.0.5"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(NewPayload(tt.reading, "10.0.0.5"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "Tanks/Q2/SensorData", Topic("Q2"))
	assert.Equal(t, "Tanks/Reef North/SensorData", Topic("Reef North"))
}

func TestPublish_Connected(t *testing.T) {
	s := &fakeSession{connected: true}
	c := &fakeConn{session: s}
	p := NewPublisher(s, c, nil)

	ok := p.Publish(types.Reading{Temperature: types.Sentinel, PAR: 120.4}, q2)

	assert.True(t, ok)
	assert.Empty(t, c.ensured, "no reconnect when already connected")
	require.Len(t, s.sent, 1)
	assert.Equal(t, "Tanks/Q2/SensorData", s.sent[0].topic)
	assert.Equal(t, `{"PAR":120.4,"IPAddress":"10.0.0.5"}`, s.sent[0].payload)
}

func TestPublish_ReconnectsOnceThenSends(t *testing.T) {
	s := &fakeSession{}
	c := &fakeConn{session: s, canReach: true}
	p := NewPublisher(s, c, nil)

	assert.True(t, p.Publish(types.Reading{Temperature: 25, PAR: 1}, q2))
	assert.Equal(t, []int{1}, c.ensured)
	assert.Len(t, s.sent, 1)
}

func TestPublish_DropsWhenBrokerUnreachable(t *testing.T) {
	s := &fakeSession{}
	c := &fakeConn{session: s}
	p := NewPublisher(s, c, nil)

	assert.False(t, p.Publish(types.Reading{Temperature: 25, PAR: 1}, q2))
	assert.Equal(t, []int{1}, c.ensured)
	assert.Empty(t, s.sent)
}

func TestPublish_SessionError(t *testing.T) {
	s := &fakeSession{connected: true, err: errors.New("broken pipe")}
	p := NewPublisher(s, &fakeConn{session: s}, nil)

	assert.False(t, p.Publish(types.Reading{Temperature: 25, PAR: 1}, q2))
}
