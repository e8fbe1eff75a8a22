//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes server events in the order they were produced.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Presenter is the user-facing side of a chat client.
type Presenter interface {
	// AppendOutput receives one line of user-visible text.
	AppendOutput(text string)
	ModelObserver
}

// ModelObserver is notified synchronously by the client model on every
// effective change.
type ModelObserver interface {
	OnUserEvent(participant domain.Participant, connected bool)
	OnLogReceived(entry domain.LogEntry)
}
