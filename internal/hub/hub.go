// internal/hub/hub.go
// Provides the Hub: the single event loop that owns the connection registry
// and drives presence announcements and relays.
package hub

import (
	"context"
	"time"

	"github.com/erilali/chatrelay/internal/logger"
	"github.com/erilali/chatrelay/internal/message"
)

const defaultSendBuffer = 256

// Options tune the transport side of the hub.
type Options struct {
	SendBuffer     int
	MaxMessageSize int64 // 0 means no read limit
	AllowedOrigins []string
}

type inbound struct {
	client *Client
	event  message.Event
}

// Hub owns the registry. Registry, Notifier and Router are only touched from
// the Run goroutine; everything else talks to the hub through channels.
type Hub struct {
	registry *Registry
	notifier *Notifier
	router   *Router

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	countReq   chan chan int
	done       chan struct{}

	options   Options
	StartTime time.Time
	Logger    *logger.Logger
}

// NewHub wires a registry, notifier and router together. A nil mirror disables mirroring.
func NewHub(options Options, mirror Mirror, logger *logger.Logger) *Hub {
	if mirror == nil {
		mirror = nopMirror{}
	}
	if options.SendBuffer <= 0 {
		options.SendBuffer = defaultSendBuffer
	}
	registry := NewRegistry()
	return &Hub{
		registry:   registry,
		notifier:   NewNotifier(registry, mirror, logger),
		router:     NewRouter(registry, mirror, logger),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		countReq:   make(chan chan int),
		done:       make(chan struct{}),
		options:    options,
		StartTime:  time.Now(),
		Logger:     logger,
	}
}

// Run processes connects, disconnects and inbound events one at a time until
// ctx is cancelled. On return every remaining client's Send channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.activate(client)

		case client := <-h.unregister:
			h.close(client)

		case in := <-h.inbound:
			h.dispatch(in.client, in.event)

		case reply := <-h.countReq:
			reply <- h.registry.Size()
		}
	}
}

func (h *Hub) activate(client *Client) {
	if client.closed || h.registry.Contains(client) {
		return
	}
	h.registry.Register(client)
	h.Logger.LogEvent("info", "client_connected", client.ID.String(), "")
	h.notifier.Announce(h.registry.Size())
}

func (h *Hub) close(client *Client) {
	if !h.registry.Unregister(client) {
		return
	}
	client.closed = true
	close(client.Send)
	h.Logger.LogEvent("info", "client_disconnected", client.ID.String(), "")
	h.notifier.Announce(h.registry.Size())
}

func (h *Hub) dispatch(client *Client, event message.Event) {
	if !h.registry.Contains(client) {
		return
	}
	n := h.router.Relay(event.Kind, client, event.Payload)
	if event.Kind == message.KindAudio {
		h.Logger.Debugf("Audio clip from %s (%d bytes) relayed to %d clients", client.ID, len(event.Payload), n)
		return
	}
	h.Logger.LogEvent("debug", "event_relayed", client.ID.String(), event.Kind.Outbound())
}

func (h *Hub) shutdown() {
	n := h.registry.Size()
	h.registry.Each(func(c *Client) {
		h.registry.Unregister(c)
		c.closed = true
		close(c.Send)
	})
	h.Logger.Infof("Hub stopped, closed %d clients", n)
}

// Register moves client into the Active state. It reports false if the hub
// has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister moves client into the Closed state. Repeated calls are harmless.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Dispatch hands an inbound event from client to the router.
func (h *Hub) Dispatch(client *Client, event message.Event) {
	select {
	case h.inbound <- inbound{client: client, event: event}:
	case <-h.done:
	}
}

// Count returns the number of connected clients, or 0 once the hub has stopped.
func (h *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.countReq <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
