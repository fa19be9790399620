// internal/hub/nats.go
package hub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erilali/chatrelay/internal/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Mirror receives a copy of everything the hub fans out. Implementations
// must not block the hub loop.
type Mirror interface {
	Relayed(sender uuid.UUID, event string, data json.RawMessage)
	Presence(count int)
}

type nopMirror struct{}

func (nopMirror) Relayed(uuid.UUID, string, json.RawMessage) {}
func (nopMirror) Presence(int)                               {}

// NatsMirror publishes relayed events and presence counts to core NATS.
// Nothing is stored on the NATS side.
type NatsMirror struct {
	conn   *nats.Conn
	prefix string
	logger *logger.Logger
}

type relayRecord struct {
	ClientID  string          `json:"client_id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type presenceRecord struct {
	Count     int   `json:"count"`
	Timestamp int64 `json:"timestamp"`
}

// NewNatsMirror returns a mirror publishing under prefix. A nil conn yields
// a mirror that does nothing.
func NewNatsMirror(nc *nats.Conn, prefix string, logger *logger.Logger) Mirror {
	if nc == nil {
		return nopMirror{}
	}
	return &NatsMirror{conn: nc, prefix: prefix, logger: logger}
}

func (m *NatsMirror) RelaySubject(event string) string {
	return fmt.Sprintf("%s.relay.%s", m.prefix, event)
}

func (m *NatsMirror) PresenceSubject() string {
	return m.prefix + ".presence"
}

func (m *NatsMirror) Relayed(sender uuid.UUID, event string, data json.RawMessage) {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	m.publish(m.RelaySubject(event), relayRecord{
		ClientID:  sender.String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (m *NatsMirror) Presence(count int) {
	m.publish(m.PresenceSubject(), presenceRecord{
		Count:     count,
		Timestamp: time.Now().Unix(),
	})
}

// publish is fire-and-forget; nats buffers internally so this never waits on the network.
func (m *NatsMirror) publish(subject string, record interface{}) {
	data, err := json.Marshal(record)
	if err != nil {
		m.logger.Errorf("Failed to marshal mirror record for %s: %v", subject, err)
		return
	}
	if err := m.conn.Publish(subject, data); err != nil {
		m.logger.Errorf("Failed to publish to NATS subject %s: %v", subject, err)
	}
}
