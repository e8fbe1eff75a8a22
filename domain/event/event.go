package event

import (
	"chat-relay/domain"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is anything the server pushes to its fan-out.
// Events carry value snapshots, never connection handles.
type DomainEvent interface {
	ConnectionID() uuid.UUID
}

// ParticipantConnected is produced by the first HELLO of a connection.
type ParticipantConnected struct {
	ID          uuid.UUID
	Participant domain.Participant
	At          time.Time
}

func (e ParticipantConnected) ConnectionID() uuid.UUID { return e.ID }

// ParticipantRenamed is produced by a later HELLO carrying a different name.
type ParticipantRenamed struct {
	ID       uuid.UUID
	Previous domain.Participant
	Current  domain.Participant
	At       time.Time
}

func (e ParticipantRenamed) ConnectionID() uuid.UUID { return e.ID }

// ParticipantDisconnected is produced once, when a connection ends on its own.
type ParticipantDisconnected struct {
	ID          uuid.UUID
	Participant domain.Participant
	At          time.Time
}

func (e ParticipantDisconnected) ConnectionID() uuid.UUID { return e.ID }

// MessageRelayed carries an encoded payload the server never inspects.
type MessageRelayed struct {
	ID      uuid.UUID
	From    domain.Participant
	Payload string
	At      time.Time
}

func (e MessageRelayed) ConnectionID() uuid.UUID { return e.ID }
