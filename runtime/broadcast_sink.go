package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/protocol"
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// BroadcastSink turns events into protocol lines written to every
// registered connection.
type BroadcastSink struct {
	log        *slog.Logger
	registry   *Registry
	monitoring *observability.MonitoringManager
}

var _ contract.EventSink = (*BroadcastSink)(nil)

func NewBroadcastSink(log *slog.Logger, registry *Registry, monitoring *observability.MonitoringManager) *BroadcastSink {
	return &BroadcastSink{log: log, registry: registry, monitoring: monitoring}
}

func (b *BroadcastSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ParticipantConnected:
		b.announce(evt.ID, evt.Participant, protocol.ConnectedLine(evt.Participant.Name, evt.Participant.Address))
	case event.ParticipantRenamed:
		b.announce(evt.ID, evt.Current,
			protocol.DisconnectedLine(evt.Previous.Name, evt.Previous.Address),
			protocol.ConnectedLine(evt.Current.Name, evt.Current.Address))
	case event.ParticipantDisconnected:
		b.broadcast(protocol.DisconnectedLine(evt.Participant.Name, evt.Participant.Address))
	case event.MessageRelayed:
		b.broadcast(protocol.MessageLine(evt.From.Name, evt.From.Address, evt.At, evt.Payload))
	default:
		b.log.Debug("Event not broadcast", "event", e)
	}
	return nil
}

func (b *BroadcastSink) announce(id uuid.UUID, p domain.Participant, lines ...string) {
	_, failed := b.registry.Announce(id, p, lines...)
	b.monitoring.AddBroadcastFailures(failed)
}

func (b *BroadcastSink) broadcast(line string) {
	_, failed := b.registry.Broadcast(line)
	b.monitoring.AddBroadcastFailures(failed)
}
