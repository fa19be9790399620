// internal/hub/websocket.go
package hub

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/erilali/chatrelay/internal/message"
	"github.com/gorilla/websocket"
)

const (
	webSocketReadDeadline  = 60 * time.Second
	webSocketWriteDeadline = 10 * time.Second
	webSocketPingPeriod    = (webSocketReadDeadline * 9) / 10 // Must be less than readDeadline
)

func (h *Hub) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
}

// checkOrigin accepts any origin when no allow-list is configured, and
// requests without an Origin header (non-browser clients) always.
func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.options.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.options.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// ServeWs upgrades the HTTP connection to a WebSocket and activates the client.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	client := NewClient(conn, h.options.SendBuffer)
	if !h.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	go h.WritePump(client)
	go h.ReadPump(client)
}

// ReadPump decodes frames from the connection and hands them to the hub in
// the order they were read. Any read error ends the session.
func (h *Hub) ReadPump(client *Client) {
	defer func() {
		h.Unregister(client)
		client.Conn.Close()
	}()

	if h.options.MaxMessageSize > 0 {
		client.Conn.SetReadLimit(h.options.MaxMessageSize)
	}
	client.Conn.SetReadDeadline(time.Now().Add(webSocketReadDeadline))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(webSocketReadDeadline))
		return nil
	})

	for {
		_, frame, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.Logger.LogEvent("error", "read_error", client.ID.String(), err.Error())
			}
			return
		}
		client.LastActive = time.Now()
		client.Conn.SetReadDeadline(client.LastActive.Add(webSocketReadDeadline))

		event, err := message.Decode(frame)
		if err != nil {
			if errors.Is(err, message.ErrUnknownEvent) {
				h.Logger.Debugf("Ignoring frame from %s: %v", client.ID, err)
			} else {
				h.Logger.Debugf("Malformed frame from %s: %v", client.ID, err)
			}
			continue
		}
		h.Dispatch(client, event)
	}
}

// WritePump writes queued frames to the connection, one frame per message,
// and keeps the connection alive with pings.
func (h *Hub) WritePump(client *Client) {
	ticker := time.NewTicker(webSocketPingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(webSocketWriteDeadline))
			if !ok {
				// The hub closed the channel.
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(webSocketWriteDeadline))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
