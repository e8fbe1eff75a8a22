package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"context"
	goerrors "errors"
	"io"
	"log/slog"
	"net"
	"time"
)

// lineHandler is the server-side protocol.
type lineHandler interface {
	ProcessClientInput(ctx context.Context, c *Connection, line string) (string, bool)
}

// relay is what a worker needs from the server when its connection ends.
type relay interface {
	publisher
	Unregister(c *Connection) bool
	Release(c *Connection)
}

// ConnectionWorker reads one connection until EOF, error or shutdown.
type ConnectionWorker struct {
	log      *slog.Logger
	conn     *Connection
	handler  lineHandler
	relay    relay
	registry *Registry
}

var _ contract.Worker = (*ConnectionWorker)(nil)

func NewConnectionWorker(log *slog.Logger, conn *Connection, handler lineHandler, relay relay, registry *Registry) *ConnectionWorker {
	return &ConnectionWorker{log: log, conn: conn, handler: handler, relay: relay, registry: registry}
}

// Run never returns an error: a read failure only ends this connection.
func (w *ConnectionWorker) Run(ctx context.Context) error {
	w.conn.setState(StateRunning)
	defer w.finish(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := w.conn.ReadLine()
		if err != nil {
			if !w.conn.Closed() && !isClosedConnError(err) {
				w.log.Warn("Connection read failed", "connection_id", w.conn.ID(), "address", w.conn.Address(), "error", err)
			}
			return nil
		}
		if reply, ok := w.handler.ProcessClientInput(ctx, w.conn, line); ok {
			if err := w.registry.SendTo(w.conn, reply); err != nil {
				w.log.Warn("Reply failed", "connection_id", w.conn.ID(), "error", err)
			}
		}
	}
}

// finish notifies the disconnection unless the server already closed the
// connection, then releases the transport.
func (w *ConnectionWorker) finish(ctx context.Context) {
	if w.conn.MarkClosed() {
		participant := w.conn.Participant()
		if w.relay.Unregister(w.conn) {
			w.log.Info("Connection closed", "connection_id", w.conn.ID(), "participant", participant.String())
			evt := event.ParticipantDisconnected{ID: w.conn.ID(), Participant: participant, At: time.Now()}
			if err := w.relay.Publish(ctx, evt); err != nil {
				w.log.Debug("Disconnection not broadcast", "connection_id", w.conn.ID(), "error", err)
			}
		}
	}
	w.relay.Release(w.conn)
}

func isClosedConnError(err error) bool {
	return goerrors.Is(err, io.EOF) || goerrors.Is(err, net.ErrClosed)
}
