// internal/hub/client.go
package hub

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client represents one live connection.
type Client struct {
	ID         uuid.UUID
	Conn       *websocket.Conn
	Send       chan []byte
	LastActive time.Time

	// closed is owned by the hub loop; once set the client never becomes Active again.
	closed bool
}

// NewClient assigns a fresh identity to conn. conn may be nil for clients
// that are driven directly through their Send channel.
func NewClient(conn *websocket.Conn, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Client{
		ID:         uuid.New(),
		Conn:       conn,
		Send:       make(chan []byte, sendBuffer),
		LastActive: time.Now(),
	}
}

// deliver queues frame without blocking. A full buffer means the writer has
// fallen behind or the peer is gone; the frame is dropped.
// Only the hub loop calls this, so Send is never closed underneath it.
func (c *Client) deliver(frame []byte) bool {
	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}
