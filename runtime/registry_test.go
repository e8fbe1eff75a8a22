package runtime

import (
	"chat-relay/domain"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_AddRemove(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	alex := NewConnection(newFakeTransport("10.0.0.1"), nil)

	// Given an empty registry
	req.Equal(0, registry.Len())

	// When the same connection is added twice
	req.True(registry.Add(alex))
	req.False(registry.Add(alex))

	// Then it is held once
	req.Equal(1, registry.Len())

	// And removal is idempotent
	req.True(registry.Remove(alex))
	req.False(registry.Remove(alex))
	req.Equal(0, registry.Len())
}

func TestRegistry_BroadcastSurvivesFailedWrite(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	healthy1 := newFakeTransport("10.0.0.1")
	broken := newFakeTransport("10.0.0.2")
	broken.failWrite = true
	healthy2 := newFakeTransport("10.0.0.3")

	for _, tr := range []*fakeTransport{healthy1, broken, healthy2} {
		registry.Add(NewConnection(tr, nil))
	}

	// When a line is broadcast
	delivered, failed := registry.Broadcast("CONNECTED alex 10.0.0.1")

	// Then the broken connection does not stop the others
	req.Equal(2, delivered)
	req.Equal(1, failed)
	req.Equal([]string{"CONNECTED alex 10.0.0.1"}, healthy1.Lines())
	req.Equal([]string{"CONNECTED alex 10.0.0.1"}, healthy2.Lines())
}

func TestRegistry_ConcurrentBroadcastKeepsLinesWhole(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	tr := newFakeTransport("10.0.0.1")
	registry.Add(NewConnection(tr, nil))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.Broadcast("MSG alex 10.0.0.1 1 aGk=")
		}()
	}
	wg.Wait()

	lines := tr.Lines()
	req.Len(lines, 50)
	for _, line := range lines {
		req.Equal("MSG alex 10.0.0.1 1 aGk=", line)
	}
}

func TestRegistry_ForEachParticipantsAndClear(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	alex := NewConnection(newFakeTransport("10.0.0.1"), nil)
	bob := NewConnection(newFakeTransport("10.0.0.2"), nil)
	alex.Rename("alex")
	bob.Rename("bob")
	registry.Add(alex)
	registry.Add(bob)

	// Then participants come back in registration order
	req.Equal([]domain.Participant{
		domain.NewParticipant("alex", "10.0.0.1"),
		domain.NewParticipant("bob", "10.0.0.2"),
	}, registry.Participants())

	var visited []string
	registry.ForEach(func(c *Connection) { visited = append(visited, c.Name()) })
	req.Equal([]string{"alex", "bob"}, visited)

	// When the registry is cleared
	cleared := registry.Clear()

	// Then it hands back every connection and is empty
	req.Len(cleared, 2)
	req.Equal(0, registry.Len())
}

func TestRegistry_HasOther(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	first := NewConnection(newFakeTransport("127.0.0.1"), nil)
	second := NewConnection(newFakeTransport("127.0.0.1"), nil)
	first.Rename("alex")
	second.Rename("alex")
	registry.Add(first)

	req.False(registry.HasOther(first.Participant(), first.ID()))
	req.True(registry.HasOther(second.Participant(), second.ID()))
}

func TestRegistry_JoinSeedsWithAnnouncedParticipants(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	alex := NewConnection(newFakeTransport("10.0.0.1"), nil)
	anonymous := NewConnection(newFakeTransport("10.0.0.2"), nil)
	registry.Join(alex)
	registry.Join(anonymous)

	// Given alex is announced while the other HELLO is still queued
	registry.Announce(alex.ID(), domain.NewParticipant("alex", "10.0.0.1"), "CONNECTED alex 10.0.0.1")
	anonymous.Rename("bob")

	// When a newcomer joins
	tr := newFakeTransport("10.0.0.3")
	newcomer := NewConnection(tr, nil)
	req.True(registry.Join(newcomer))
	req.False(registry.Join(newcomer))

	// Then it is seeded with what was announced, not with the queued name
	req.Equal([]string{"CONNECTED alex 10.0.0.1", "CONNECTED Anonymous 10.0.0.2"}, tr.Lines())

	// And the queued announcement reaches it live, once
	registry.Announce(anonymous.ID(), domain.NewParticipant("bob", "10.0.0.2"), "CONNECTED bob 10.0.0.2")
	req.Equal([]string{
		"CONNECTED alex 10.0.0.1",
		"CONNECTED Anonymous 10.0.0.2",
		"CONNECTED bob 10.0.0.2",
	}, tr.Lines())
}

func TestRegistry_ConcurrentJoinAndAnnounceNeverDuplicate(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	alex := NewConnection(newFakeTransport("10.0.0.1"), nil)
	registry.Join(alex)

	// When newcomers join while alex is being announced
	transports := make([]*fakeTransport, 30)
	var wg sync.WaitGroup
	for i := range transports {
		transports[i] = newFakeTransport("10.0.1.1")
		wg.Add(1)
		go func(tr *fakeTransport) {
			defer wg.Done()
			registry.Join(NewConnection(tr, nil))
		}(transports[i])
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		registry.Announce(alex.ID(), domain.NewParticipant("alex", "10.0.0.1"), "CONNECTED alex 10.0.0.1")
	}()
	wg.Wait()

	// Then every newcomer heard of alex by name exactly once
	for _, tr := range transports {
		count := 0
		for _, line := range tr.Lines() {
			if line == "CONNECTED alex 10.0.0.1" {
				count++
			}
		}
		req.Equal(1, count, "lines: %v", tr.Lines())
	}
}
