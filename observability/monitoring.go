package observability

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// RelayStats is a point-in-time copy of the relay counters.
type RelayStats struct {
	Uptime            time.Duration
	Accepted          uint64
	Active            int64
	Joined            uint64
	Renamed           uint64
	Left              uint64
	MessagesRelayed   uint64
	MalformedLines    uint64
	RateLimited       uint64
	BroadcastFailures uint64
}

// MonitoringManager counts what goes through the relay.
// Connection counters are bumped by the server, presence and message
// counters are fed as an event sink.
type MonitoringManager struct {
	log       *slog.Logger
	startedAt time.Time

	accepted          atomic.Uint64
	active            atomic.Int64
	joined            atomic.Uint64
	renamed           atomic.Uint64
	left              atomic.Uint64
	messagesRelayed   atomic.Uint64
	malformedLines    atomic.Uint64
	rateLimited       atomic.Uint64
	broadcastFailures atomic.Uint64
}

var _ contract.EventSink = (*MonitoringManager)(nil)

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, startedAt: time.Now()}
}

func (mm *MonitoringManager) IncrAccepted() {
	mm.accepted.Add(1)
	mm.active.Add(1)
}

func (mm *MonitoringManager) DecrActive() {
	mm.active.Add(-1)
}

func (mm *MonitoringManager) IncrMalformedLines() {
	mm.malformedLines.Add(1)
}

func (mm *MonitoringManager) IncrRateLimited() {
	mm.rateLimited.Add(1)
}

func (mm *MonitoringManager) AddBroadcastFailures(n int) {
	if n > 0 {
		mm.broadcastFailures.Add(uint64(n))
	}
}

// Consume counts presence and message events. It never fails.
func (mm *MonitoringManager) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.ParticipantConnected:
		mm.joined.Add(1)
	case event.ParticipantRenamed:
		mm.renamed.Add(1)
	case event.ParticipantDisconnected:
		mm.left.Add(1)
	case event.MessageRelayed:
		mm.messagesRelayed.Add(1)
	default:
		mm.log.Debug("Unknown event type", "event", e)
	}
	return nil
}

// GetLatest returns a snapshot of every counter.
func (mm *MonitoringManager) GetLatest() RelayStats {
	return RelayStats{
		Uptime:            time.Since(mm.startedAt).Round(time.Second),
		Accepted:          mm.accepted.Load(),
		Active:            mm.active.Load(),
		Joined:            mm.joined.Load(),
		Renamed:           mm.renamed.Load(),
		Left:              mm.left.Load(),
		MessagesRelayed:   mm.messagesRelayed.Load(),
		MalformedLines:    mm.malformedLines.Load(),
		RateLimited:       mm.rateLimited.Load(),
		BroadcastFailures: mm.broadcastFailures.Load(),
	}
}
