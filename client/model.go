package client

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/protocol"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Model holds what a client knows about the chat: the local user and the
// participants announced by the server. Observers are called synchronously
// while the model lock is held, so they must not call back into the model.
type Model struct {
	mu        sync.Mutex
	current   domain.Participant
	users     []domain.Participant
	observers []contract.ModelObserver
}

// NewModel registers the local user under domain.LocalAddress, with the name
// normalised the way the relay will announce it.
func NewModel(userName string, observers ...contract.ModelObserver) *Model {
	m := &Model{observers: observers}
	name := protocol.NormalizeName(userName)
	if name == "" {
		name = domain.DefaultName
	}
	m.current = domain.NewParticipant(name, domain.LocalAddress)
	m.AddUser(m.current)
	return m
}

func (m *Model) AddObserver(o contract.ModelObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

func (m *Model) CurrentUser() domain.Participant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// AddUser returns false when the (name, address) pair is already known.
func (m *Model) AddUser(p domain.Participant) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lo.Contains(m.users, p) {
		return false
	}
	m.users = append(m.users, p)
	m.notifyUser(p, true)
	return true
}

// RemoveUser is a no-op returning false when the pair is unknown.
func (m *Model) RemoveUser(name, address string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed, i, found := lo.FindIndexOf(m.users, func(p domain.Participant) bool { return p.Is(name, address) })
	if !found {
		return false
	}
	m.users = slices.Delete(m.users, i, i+1)
	m.notifyUser(removed, false)
	return true
}

// RemoveOthers forgets every participant except the local user.
func (m *Model) RemoveOthers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept, removed := lo.FilterReject(m.users, func(p domain.Participant, _ int) bool { return p == m.current })
	m.users = kept
	for _, p := range removed {
		m.notifyUser(p, false)
	}
}

func (m *Model) FindUser(name, address string) (domain.Participant, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Find(m.users, func(p domain.Participant) bool { return p.Is(name, address) })
}

// Users returns a copy in arrival order.
func (m *Model) Users() []domain.Participant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.users)
}

func (m *Model) AddLog(entry domain.LogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.observers {
		o.OnLogReceived(entry)
	}
}

func (m *Model) notifyUser(p domain.Participant, connected bool) {
	for _, o := range m.observers {
		o.OnUserEvent(p, connected)
	}
}
