package runtime

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/protocol"
	"context"
	"log/slog"
	"time"
)

// publisher accepts events for the fan-out.
type publisher interface {
	Publish(ctx context.Context, e event.DomainEvent) error
}

// ChatProtocol turns client lines into events. It never writes to the
// network itself: broadcasts happen when the fan-out consumes the events.
type ChatProtocol struct {
	log        *slog.Logger
	registry   *Registry
	publisher  publisher
	moderator  *moderation.Moderator
	monitoring *observability.MonitoringManager
	now        func() time.Time
}

func NewChatProtocol(
	log *slog.Logger,
	registry *Registry,
	publisher publisher,
	moderator *moderation.Moderator,
	monitoring *observability.MonitoringManager,
	now func() time.Time,
) *ChatProtocol {
	return &ChatProtocol{
		log:        log,
		registry:   registry,
		publisher:  publisher,
		moderator:  moderator,
		monitoring: monitoring,
		now:        now,
	}
}

// ProcessClientInput handles one line read from c. The returned reply, if
// any, is meant for c only; the chat protocol itself never replies.
func (p *ChatProtocol) ProcessClientInput(ctx context.Context, c *Connection, line string) (string, bool) {
	cmd, err := protocol.ParseClientLine(line)
	if err != nil {
		p.monitoring.IncrMalformedLines()
		p.log.Warn("Malformed command", "connection_id", c.ID(), "address", c.Address(), "error", err)
		return "", false
	}
	if protocol.HasControl(cmd.Name) || protocol.HasControl(cmd.Payload) {
		p.monitoring.IncrMalformedLines()
		p.log.Warn("Control character in command", "connection_id", c.ID(), "address", c.Address(), "keyword", cmd.Keyword)
		return "", false
	}

	switch cmd.Keyword {
	case protocol.Hello:
		p.hello(ctx, c, cmd.Name)
	case protocol.Msg:
		p.message(ctx, c, cmd.Payload)
	}
	return "", false
}

func (p *ChatProtocol) hello(ctx context.Context, c *Connection, requested string) {
	name := p.sanitizeName(requested)
	previous, named := c.Rename(name)
	current := c.Participant()

	var evt event.DomainEvent
	switch {
	case !named:
		p.log.Info("New connection", "connection_id", c.ID(), "name", name, "address", current.Address)
		if p.registry.HasOther(current, c.ID()) {
			p.log.Warn("Participant is indistinguishable from another connection",
				"connection_id", c.ID(), "participant", current.String())
		}
		evt = event.ParticipantConnected{ID: c.ID(), Participant: current, At: p.now()}
	case previous == name:
		p.log.Debug("Repeated HELLO ignored", "connection_id", c.ID(), "name", name)
		return
	default:
		p.log.Info("Participant renamed", "connection_id", c.ID(), "from", previous, "to", name)
		evt = event.ParticipantRenamed{
			ID:       c.ID(),
			Previous: domain.NewParticipant(previous, current.Address),
			Current:  current,
			At:       p.now(),
		}
	}
	p.publish(ctx, c, evt)
}

func (p *ChatProtocol) message(ctx context.Context, c *Connection, payload string) {
	if !c.AllowMessage() {
		p.monitoring.IncrRateLimited()
		p.log.Warn("Message dropped, rate limit exceeded", "connection_id", c.ID(), "name", c.Name())
		return
	}
	p.log.Debug("Message received", "connection_id", c.ID(), "name", c.Name(), "size", len(payload))
	p.publish(ctx, c, event.MessageRelayed{ID: c.ID(), From: c.Participant(), Payload: payload, At: p.now()})
}

func (p *ChatProtocol) publish(ctx context.Context, c *Connection, evt event.DomainEvent) {
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.log.Debug("Event dropped", "connection_id", c.ID(), "error", err)
	}
}

// sanitizeName keeps a name a single protocol token: NFC form, inner
// whitespace turned into underscores, banned words masked.
func (p *ChatProtocol) sanitizeName(name string) string {
	name = protocol.NormalizeName(name)
	censored, words := p.moderator.Censor(name)
	if len(words) > 0 {
		p.log.Info("Display name censored", "words", words)
	}
	return censored
}
