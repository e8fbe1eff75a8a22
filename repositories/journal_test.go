package repositories

import (
	"chat-relay/domain"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newJournal(t *testing.T, path string) JournalRepository {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)
	db, err := OpenBadger(path, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewJournalRepository(db, log)
}

func Test_Journal_Lists_Records_In_Chronological_Order(t *testing.T) {
	req := require.New(t)

	// Given a journal with a join, a rename and a leave
	journal := newJournal(t, t.TempDir())
	id := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []PresenceRecord{
		{ConnectionID: id, Kind: Joined, Participant: domain.NewParticipant("alex", "10.0.0.1"), At: at},
		{ConnectionID: id, Kind: Renamed, Participant: domain.NewParticipant("alexandre", "10.0.0.1"), Previous: "alex", At: at.Add(time.Second)},
		{ConnectionID: id, Kind: Left, Participant: domain.NewParticipant("alexandre", "10.0.0.1"), At: at.Add(2 * time.Second)},
	}
	// stored out of order on purpose
	for _, i := range []int{2, 0, 1} {
		req.NoError(journal.Append(records[i]))
	}

	// When the whole journal is listed
	listed, err := journal.List(0)

	// Then records come back oldest first and intact
	req.NoError(err)
	req.Equal(records, listed)
}

func Test_Journal_List_Keeps_The_Latest_Records(t *testing.T) {
	req := require.New(t)

	// Given five joins one minute apart
	journal := newJournal(t, "")
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := range 5 {
		req.NoError(journal.Append(PresenceRecord{
			ConnectionID: uuid.New(),
			Kind:         Joined,
			Participant:  domain.NewParticipant(string(rune('a'+i)), domain.LocalAddress),
			At:           at.Add(time.Duration(i) * time.Minute),
		}))
	}

	// When only two are asked for
	listed, err := journal.List(2)

	// Then the two most recent are returned, oldest first
	req.NoError(err)
	req.Len(listed, 2)
	req.Equal("d", listed[0].Participant.Name)
	req.Equal("e", listed[1].Participant.Name)
}

func Test_Journal_Is_Empty_At_First(t *testing.T) {
	req := require.New(t)
	journal := newJournal(t, "")

	listed, err := journal.List(10)

	req.NoError(err)
	req.Empty(listed)
}

func Test_Decode_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := DecodePresenceRecord([]byte{0xFF, 0x01})

	req.Error(err)
}
