// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"fmt"
	"time"
)

// DefaultName is the display name of a connection that has not said HELLO yet.
const DefaultName = "Anonymous"

// LocalAddress is the address under which a client records its own user.
const LocalAddress = "127.0.0.1"

// Participant is a remote peer as seen on the wire.
// Two participants are the same when both Name and Address match.
type Participant struct {
	Name    string
	Address string
}

func NewParticipant(name, address string) Participant {
	return Participant{Name: name, Address: address}
}

// Is reports whether p designates the given (name, address) pair.
func (p Participant) Is(name, address string) bool {
	return p.Name == name && p.Address == address
}

func (p Participant) String() string {
	return fmt.Sprintf("%s@%s", p.Name, p.Address)
}

// LogEntry is one decoded line of conversation.
type LogEntry struct {
	At     time.Time
	Author Participant
	Text   string
}

func (l LogEntry) String() string {
	return fmt.Sprintf("[%s] %s: %s", l.At.Format(time.DateTime), l.Author.Name, l.Text)
}
