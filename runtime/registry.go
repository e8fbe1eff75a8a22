package runtime

import (
	"chat-relay/domain"
	"chat-relay/protocol"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Registry is the set of live connections, in registration order.
// Every read and every mutation happens under one mutex, and a broadcast
// keeps it for the whole iteration so nobody observes a torn list.
type Registry struct {
	mu          sync.Mutex
	connections []*Connection
	log         *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log}
}

// Add registers a connection. It returns false if the same connection is
// already registered.
func (r *Registry) Add(c *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(c.ID()) >= 0 {
		return false
	}
	r.connections = append(r.connections, c)
	return true
}

// Join registers a newcomer and, under the same lock, writes it one CONNECTED
// line per connection already there, as that connection was last announced.
// Presence broadcasts take this lock too, so each of them reaches the
// newcomer either through this seed or live, never both.
func (r *Registry) Join(c *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(c.ID()) >= 0 {
		return false
	}
	for _, other := range r.connections {
		line := protocol.ConnectedLine(other.announced.Name, other.announced.Address)
		if err := c.WriteLine(line); err != nil {
			r.log.Debug("Failed to send participant list", "connection_id", c.ID(), "error", err)
			break
		}
	}
	r.connections = append(r.connections, c)
	return true
}

// Remove unregisters a connection. Removing an absent connection is a no-op
// reported as false.
func (r *Registry) Remove(c *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(c.ID())
	if i < 0 {
		return false
	}
	r.connections = slices.Delete(r.connections, i, i+1)
	return true
}

// ForEach visits every connection while holding the lock.
// The visitor must not call back into the registry.
func (r *Registry) ForEach(visit func(c *Connection)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.connections {
		visit(c)
	}
}

// Broadcast writes the line to every connection under a single lock
// acquisition. A failed write is logged and skipped; it returns the number of
// successful and failed writes.
func (r *Registry) Broadcast(line string) (delivered, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.broadcast(line)
}

// Announce records p as the public face of connection id and broadcasts the
// lines in one critical section. An id no longer registered is only
// broadcast.
func (r *Registry) Announce(id uuid.UUID, p domain.Participant, lines ...string) (delivered, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		r.connections[i].announced = p
	}
	for _, line := range lines {
		d, f := r.broadcast(line)
		delivered += d
		failed += f
	}
	return delivered, failed
}

func (r *Registry) broadcast(line string) (delivered, failed int) {
	for _, c := range r.connections {
		if err := c.WriteLine(line); err != nil {
			failed++
			r.log.Warn("Broadcast write failed", "connection_id", c.ID(), "address", c.Address(), "error", err)
			continue
		}
		delivered++
	}
	return delivered, failed
}

// SendTo writes to a single connection without taking the registry lock.
func (r *Registry) SendTo(c *Connection, line string) error {
	return c.WriteLine(line)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.connections)
}

// Participants snapshots who is connected, in registration order.
func (r *Registry) Participants() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Map(r.connections, func(c *Connection, _ int) domain.Participant {
		return c.Participant()
	})
}

// HasOther reports whether a connection other than id already shows the
// same (name, address) pair on the wire.
func (r *Registry) HasOther(p domain.Participant, id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.ContainsBy(r.connections, func(c *Connection) bool {
		return c.ID() != id && c.Participant() == p
	})
}

// Clear empties the registry and hands back what it held.
func (r *Registry) Clear() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	connections := r.connections
	r.connections = nil
	return connections
}

func (r *Registry) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(r.connections, func(c *Connection) bool {
		return c.ID() == id
	})
}
