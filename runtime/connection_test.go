package runtime

import (
	"chat-relay/domain"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestConnection_Defaults(t *testing.T) {
	req := require.New(t)
	c := NewConnection(newFakeTransport("10.0.0.1"), nil)

	req.Equal(domain.DefaultName, c.Name())
	req.Equal("10.0.0.1", c.Address())
	req.Equal(StateOpen, c.State())
	req.Equal("Anonymous@10.0.0.1", c.String())
	req.True(c.AllowMessage())
}

func TestConnection_Rename(t *testing.T) {
	req := require.New(t)
	c := NewConnection(newFakeTransport("10.0.0.1"), nil)

	previous, named := c.Rename("alex")
	req.Equal(domain.DefaultName, previous)
	req.False(named)

	previous, named = c.Rename("alexandre")
	req.Equal("alex", previous)
	req.True(named)
}

func TestConnection_CloseOnce(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport("10.0.0.1")
	c := NewConnection(tr, nil)

	// Only the first caller wins the close guard
	req.True(c.MarkClosed())
	req.False(c.MarkClosed())

	// Release closes the transport once
	req.True(c.Release())
	req.False(c.Release())
	req.True(tr.IsClosed())

	// Then the connection reports the null address and refuses writes
	req.Equal(StateClosed, c.State())
	req.Equal("null", c.Address())
	req.ErrorIs(c.WriteLine("CONNECTED bob 10.0.0.2"), net.ErrClosed)
}

func TestConnection_RateLimit(t *testing.T) {
	req := require.New(t)
	c := NewConnection(newFakeTransport("10.0.0.1"), rate.NewLimiter(rate.Limit(0.001), 2))

	req.True(c.AllowMessage())
	req.True(c.AllowMessage())
	req.False(c.AllowMessage())
}

func TestState_String(t *testing.T) {
	req := require.New(t)
	req.Equal("OPEN", StateOpen.String())
	req.Equal("RUNNING", StateRunning.String())
	req.Equal("CLOSED", StateClosed.String())
}
