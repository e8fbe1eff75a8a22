package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// badgerLogger forwards badger's own logging to the application logger,
// tagged with the store it belongs to.
type badgerLogger struct {
	logger *slog.Logger
	store  string
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(l.format(format, args...), "store", l.store)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(l.format(format, args...), "store", l.store)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(l.format(format, args...), "store", l.store)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(l.format(format, args...), "store", l.store)
}

// badger terminates most of its lines with a newline
func (l *badgerLogger) format(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

// OpenBadger opens the store at path, or an in-memory one when path is empty.
func OpenBadger(path string, log *slog.Logger) (*badger.DB, error) {
	options := badger.DefaultOptions(path)
	if path == "" {
		options = options.WithInMemory(true)
	}
	options = options.WithLogger(&badgerLogger{logger: log, store: "journal"})
	if log.Enabled(context.Background(), slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", path, err)
	}
	return db, nil
}
