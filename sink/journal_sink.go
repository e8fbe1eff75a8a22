package sink

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/repositories"
	"context"
	"fmt"
	"log/slog"
)

// JournalSink writes presence changes to the journal. Relayed messages are
// skipped: their payloads stay opaque to the server.
type JournalSink struct {
	repository repositories.IJournalRepository
	log        *slog.Logger
}

var _ contract.EventSink = JournalSink{}

func NewJournalSink(repository repositories.IJournalRepository, log *slog.Logger) JournalSink {
	return JournalSink{repository: repository, log: log}
}

func (j JournalSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ParticipantConnected:
		return j.repository.Append(repositories.PresenceRecord{
			ConnectionID: evt.ID, Kind: repositories.Joined, Participant: evt.Participant, At: evt.At,
		})
	case event.ParticipantRenamed:
		return j.repository.Append(repositories.PresenceRecord{
			ConnectionID: evt.ID, Kind: repositories.Renamed, Participant: evt.Current, Previous: evt.Previous.Name, At: evt.At,
		})
	case event.ParticipantDisconnected:
		return j.repository.Append(repositories.PresenceRecord{
			ConnectionID: evt.ID, Kind: repositories.Left, Participant: evt.Participant, At: evt.At,
		})
	default:
		j.log.Debug(fmt.Sprintf("Not journaled event : %T", evt))
		return nil
	}
}
