package runtime

import (
	"chat-relay/contract"
	"context"
	goerrors "errors"
	"log/slog"
	"net"
	"time"
)

const acceptRetryDelay = 50 * time.Millisecond

type deadliner interface {
	SetDeadline(t time.Time) error
}

// acceptor is the TCP accept loop. Each Accept waits at most timeout so the
// loop notices cancellation.
type acceptor struct {
	log      *slog.Logger
	listener net.Listener
	server   *Server
	timeout  time.Duration
}

var _ contract.Worker = (*acceptor)(nil)

func (a *acceptor) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if d, ok := a.listener.(deadliner); ok && a.timeout > 0 {
			_ = d.SetDeadline(time.Now().Add(a.timeout))
		}

		conn, err := a.listener.Accept()
		if err != nil {
			var netErr net.Error
			switch {
			case goerrors.As(err, &netErr) && netErr.Timeout():
				continue
			case goerrors.Is(err, net.ErrClosed):
				return nil
			default:
				a.log.Error("Accept failed", "error", err)
				time.Sleep(acceptRetryDelay)
				continue
			}
		}

		transport := NewTCPTransport(conn, a.server.cfg.MaxLineBytes, a.server.cfg.WriteTimeout)
		if _, err := a.server.Admit(transport); err != nil {
			a.log.Debug("Connection refused", "address", HostOf(conn.RemoteAddr()), "error", err)
		}
	}
}
