package hub

import (
	"encoding/json"

	"github.com/erilali/chatrelay/internal/logger"
	"github.com/erilali/chatrelay/internal/message"
)

// Router fans an inbound event out to every registered client except its sender.
type Router struct {
	registry *Registry
	mirror   Mirror
	logger   *logger.Logger
}

func NewRouter(registry *Registry, mirror Mirror, logger *logger.Logger) *Router {
	return &Router{registry: registry, mirror: mirror, logger: logger}
}

// Relay re-tags payload with the outbound name for kind and queues it for
// every client other than sender. It returns how many clients it was queued for.
// A recipient whose buffer is full simply misses the event.
func (r *Router) Relay(kind message.Kind, sender *Client, payload json.RawMessage) int {
	event := kind.Outbound()
	if event == "" {
		r.logger.Warnf("No route for %s", kind)
		return 0
	}
	frame, err := message.Encode(event, payload)
	if err != nil {
		// Only possible for payloads that did not come through message.Decode.
		r.logger.Errorf("Failed to encode %s from %s: %v", event, sender.ID, err)
		return 0
	}

	delivered := 0
	r.registry.Each(func(c *Client) {
		if c.ID == sender.ID {
			return
		}
		if c.deliver(frame) {
			delivered++
			return
		}
		r.logger.Debugf("Dropped %s for %s: send buffer full", event, c.ID)
	})

	r.mirror.Relayed(sender.ID, event, payload)
	return delivered
}
