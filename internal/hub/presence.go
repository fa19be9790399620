package hub

import (
	"github.com/erilali/chatrelay/internal/logger"
	"github.com/erilali/chatrelay/internal/message"
)

// Notifier announces the connected-client count to every registered client.
type Notifier struct {
	registry *Registry
	mirror   Mirror
	logger   *logger.Logger
}

func NewNotifier(registry *Registry, mirror Mirror, logger *logger.Logger) *Notifier {
	return &Notifier{registry: registry, mirror: mirror, logger: logger}
}

// Announce sends count to all registered clients, the one that triggered the
// change included.
func (n *Notifier) Announce(count int) {
	frame, err := message.EncodePresence(count)
	if err != nil {
		n.logger.Errorf("Failed to encode presence count %d: %v", count, err)
		return
	}
	n.registry.Each(func(c *Client) {
		if !c.deliver(frame) {
			n.logger.Debugf("Dropped presence update for %s: send buffer full", c.ID)
		}
	})
	n.mirror.Presence(count)
}
