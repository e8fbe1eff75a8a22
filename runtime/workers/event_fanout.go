package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// EventFanout hands every server event to its sinks, one event at a time and
// in sink order. The first sink is expected to be the broadcast sink, so
// relayed lines leave in the order events were produced.
//
// A sink error is logged and does not stop the other sinks.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

var _ contract.Worker = (*EventFanout)(nil)

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent, sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{log: log, events: events, sinks: sinks, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fan-out")
			return nil
		}
	}
}

// Fanout delivers one event to every sink, each bounded by the sink timeout.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := w.sinkContext(ctx)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Sink failed to consume event",
				"sink", fmt.Sprintf("%T", sink), "connection_id", evt.ConnectionID(), "error", err)
		}
		cancel()
	}
}

func (w *EventFanout) sinkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.sinkTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, w.sinkTimeout)
}
