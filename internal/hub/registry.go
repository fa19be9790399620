package hub

import "github.com/google/uuid"

// Registry is the set of live connections, keyed by identity.
// It is owned by the hub loop and is not safe for concurrent use.
type Registry struct {
	clients map[uuid.UUID]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[uuid.UUID]*Client)}
}

// Register inserts client. Registering the same identity twice keeps one entry.
func (r *Registry) Register(client *Client) {
	r.clients[client.ID] = client
}

// Unregister removes client and reports whether it was present.
func (r *Registry) Unregister(client *Client) bool {
	if _, ok := r.clients[client.ID]; !ok {
		return false
	}
	delete(r.clients, client.ID)
	return true
}

func (r *Registry) Contains(client *Client) bool {
	_, ok := r.clients[client.ID]
	return ok
}

func (r *Registry) Size() int {
	return len(r.clients)
}

// Each calls fn for every registered client, in no particular order.
func (r *Registry) Each(fn func(*Client)) {
	for _, c := range r.clients {
		fn(c)
	}
}
