package runtime

import (
	"chat-relay/domain"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// nullAddress is reported once the transport has been released.
const nullAddress = "null"

type State int32

const (
	StateOpen State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateRunning:
		return "RUNNING"
	case StateClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Connection is the server side of one connected client.
//
// Its transport is read by exactly one ConnectionWorker and written by
// whoever holds a reference, one whole line at a time.
// Two flags govern its end of life: closed is won exactly once, either by the
// worker (the peer went away) or by the server (shutdown); released guards
// the transport close.
type Connection struct {
	id        uuid.UUID
	transport Transport
	address   string
	limiter   *rate.Limiter

	mu    sync.RWMutex
	name  string
	named bool

	// announced is what the other connections were last told about this one.
	// Guarded by the registry mutex.
	announced domain.Participant

	writeMu  sync.Mutex
	state    atomic.Int32
	closed   atomic.Bool
	released atomic.Bool
}

// NewConnection wraps a transport. A nil limiter lets every message through.
func NewConnection(transport Transport, limiter *rate.Limiter) *Connection {
	address := transport.RemoteHost()
	return &Connection{
		id:        uuid.New(),
		transport: transport,
		address:   address,
		limiter:   limiter,
		name:      domain.DefaultName,
		announced: domain.NewParticipant(domain.DefaultName, address),
	}
}

func (c *Connection) ID() uuid.UUID { return c.id }

func (c *Connection) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Rename sets the display name. It returns the previous name and whether a
// name had already been set by an earlier HELLO.
func (c *Connection) Rename(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous, named := c.name, c.named
	c.name, c.named = name, true
	return previous, named
}

// Address is the peer host, or "null" once the transport is released.
func (c *Connection) Address() string {
	if c.released.Load() {
		return nullAddress
	}
	return c.address
}

// Participant snapshots the (name, address) pair.
func (c *Connection) Participant() domain.Participant {
	return domain.NewParticipant(c.Name(), c.Address())
}

func (c *Connection) State() State { return State(c.state.Load()) }

func (c *Connection) setState(s State) { c.state.Store(int32(s)) }

func (c *Connection) ReadLine() (string, error) {
	return c.transport.ReadLine()
}

// WriteLine writes one complete line. Concurrent callers never interleave.
func (c *Connection) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.released.Load() {
		return net.ErrClosed
	}
	return c.transport.WriteLine(line)
}

// AllowMessage applies the per-connection flood control.
func (c *Connection) AllowMessage() bool {
	return c.limiter == nil || c.limiter.Allow()
}

// MarkClosed reports true to the single caller that closes the connection.
func (c *Connection) MarkClosed() bool {
	return c.closed.CompareAndSwap(false, true)
}

func (c *Connection) Closed() bool { return c.closed.Load() }

// Release closes the transport once and reports whether this call did it.
// Close errors are dropped, nothing can be done about them.
func (c *Connection) Release() bool {
	if !c.released.CompareAndSwap(false, true) {
		return false
	}
	c.setState(StateClosed)
	_ = c.transport.Close()
	return true
}

func (c *Connection) String() string {
	return c.Participant().String()
}
