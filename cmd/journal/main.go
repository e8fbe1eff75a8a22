// Command journal prints the presence journal written by chatd.
package main

import (
	"chat-relay/repositories"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Journal error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("journal", flag.ContinueOnError)
	dbPath := flags.String("db", "journal", "Path to the badger journal")
	limit := flags.Int("limit", 50, "Number of latest records to show, 0 for all")
	if err := flags.Parse(args); err != nil {
		return err
	}

	db, err := openReadOnly(*dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *dbPath, err)
	}
	defer db.Close()

	records, err := repositories.NewJournalRepository(db, logs.GetLoggerFromLevel(slog.LevelError)).List(*limit)
	if err != nil {
		return err
	}
	printRecords(out, records)
	return nil
}

// The relay may still hold the lock, reading does not need it.
func openReadOnly(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}

func printRecords(out io.Writer, records []repositories.PresenceRecord) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"At", "Event", "Name", "Address", "Previous", "Connection"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, r := range records {
		table.Append([]string{
			r.At.Local().Format("2006-01-02 15:04:05.000"),
			string(r.Kind),
			r.Participant.Name,
			r.Participant.Address,
			r.Previous,
			shortID(r),
		})
	}
	table.Render()
}

func shortID(r repositories.PresenceRecord) string {
	id := r.ConnectionID.String()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

