//go:generate go run go.uber.org/mock/mockgen -source=journal.go -destination=../mocks/mock_journal_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const JournalPrefix = "journal:"

type PresenceKind string

const (
	Joined  PresenceKind = "joined"
	Renamed PresenceKind = "renamed"
	Left    PresenceKind = "left"
)

// PresenceRecord is one line of the presence journal. Message payloads are
// never journaled.
type PresenceRecord struct {
	ConnectionID uuid.UUID
	Kind         PresenceKind
	Participant  domain.Participant
	// Previous is only set for Renamed.
	Previous string
	At       time.Time
}

type IJournalRepository interface {
	Append(record PresenceRecord) error
	List(limit int) ([]PresenceRecord, error)
}

type JournalRepository struct {
	db  *badger.DB
	log *slog.Logger
}

var _ IJournalRepository = JournalRepository{}

func NewJournalRepository(db *badger.DB, log *slog.Logger) JournalRepository {
	return JournalRepository{db: db, log: log}
}

// Append stores a record under "journal:{unix_nano_padded}:{connection_id}:{kind}"
// so a prefix scan returns records in chronological order.
func (j JournalRepository) Append(record PresenceRecord) error {
	value, err := structpb.NewStruct(map[string]any{
		"connection_id": record.ConnectionID.String(),
		"kind":          string(record.Kind),
		"name":          record.Participant.Name,
		"address":       record.Participant.Address,
		"previous":      record.Previous,
		"at":            record.At.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	bytes, err := proto.Marshal(value)
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(JournalKey(record), bytes)
	})
}

// List returns the latest limit records, oldest first. A non-positive limit
// returns the whole journal.
func (j JournalRepository) List(limit int) ([]PresenceRecord, error) {
	var records []PresenceRecord
	err := j.db.View(func(txn *badger.Txn) error {
		prefix := []byte(JournalPrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) == limit {
				break
			}
			item := it.Item()
			err := item.Value(func(value []byte) error {
				record, err := DecodePresenceRecord(value)
				if err != nil {
					return fmt.Errorf("journal key %s: %w", item.Key(), err)
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(records)
	return records, nil
}

func JournalKey(record PresenceRecord) []byte {
	return fmt.Appendf(nil, "%s%019d:%s:%s", JournalPrefix, record.At.UnixNano(), record.ConnectionID, record.Kind)
}

// DecodePresenceRecord reads a journal value back.
func DecodePresenceRecord(value []byte) (PresenceRecord, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(value, &s); err != nil {
		return PresenceRecord{}, err
	}
	fields := s.GetFields()
	str := func(key string) string { return fields[key].GetStringValue() }

	id, err := uuid.Parse(str("connection_id"))
	if err != nil {
		return PresenceRecord{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, str("at"))
	if err != nil {
		return PresenceRecord{}, err
	}
	return PresenceRecord{
		ConnectionID: id,
		Kind:         PresenceKind(str("kind")),
		Participant:  domain.NewParticipant(str("name"), str("address")),
		Previous:     str("previous"),
		At:           at.UTC(),
	}, nil
}
