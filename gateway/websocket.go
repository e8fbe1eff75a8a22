// Package gateway lets websocket clients join the relay. Each text frame
// carries exactly one protocol line.
package gateway

import (
	"chat-relay/contract"
	"chat-relay/errors"
	"chat-relay/runtime"
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	Path            = "/ws"
	shutdownTimeout = 5 * time.Second
)

// admitter is the relay side of the gateway.
type admitter interface {
	Admit(t runtime.Transport) (*runtime.Connection, error)
}

type Config struct {
	Addr           string
	AllowedOrigins []string
	MaxLineBytes   int
	WriteTimeout   time.Duration
}

// Gateway upgrades HTTP requests and hands the resulting connections to the
// relay, which treats them exactly like TCP clients.
type Gateway struct {
	log      *slog.Logger
	relay    admitter
	cfg      Config
	origins  originPolicy
	upgrader websocket.Upgrader
}

var _ contract.Worker = (*Gateway)(nil)

func NewGateway(log *slog.Logger, relay admitter, cfg Config) *Gateway {
	g := &Gateway{log: log, relay: relay, cfg: cfg, origins: newOriginPolicy(cfg.AllowedOrigins)}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// Handler routes the websocket endpoint.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, g.serveWebsocket)
	return mux
}

// Run serves HTTP on the configured address until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              g.cfg.Addr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		g.log.Info("Websocket gateway listening", "address", g.cfg.Addr, "path", Path)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("websocket gateway: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			g.log.Warn("Websocket gateway shutdown failed", "error", err)
		}
		return nil
	}
}

func (g *Gateway) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "websocket endpoint only accepts GET", http.StatusMethodNotAllowed)
		return
	}
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Debug("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	if g.cfg.MaxLineBytes > 0 {
		conn.SetReadLimit(int64(g.cfg.MaxLineBytes))
	}

	transport := &wsTransport{conn: conn, host: remoteHost(r.RemoteAddr), writeTimeout: g.cfg.WriteTimeout}
	if _, err := g.relay.Admit(transport); err != nil {
		g.log.Debug("Websocket connection refused", "remote", r.RemoteAddr, "error", err)
	}
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if g.origins.allows(origin) {
		return true
	}
	g.log.Warn("Blocked websocket connection from disallowed origin", "origin", origin)
	return false
}

// wsTransport adapts a websocket connection to runtime.Transport.
type wsTransport struct {
	conn         *websocket.Conn
	host         string
	writeTimeout time.Duration
	closeOnce    sync.Once
	// pending holds the lines of a frame not yet handed to the reader.
	pending []string
}

var _ runtime.Transport = (*wsTransport)(nil)

// ReadLine hands out one line at a time. A text frame holding several
// lines is queued and drained before the next frame is read.
func (t *wsTransport) ReadLine() (string, error) {
	for len(t.pending) == 0 {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			return "", translateReadError(err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		t.pending = splitLines(string(data))
	}
	line := t.pending[0]
	t.pending = t.pending[1:]
	return line, nil
}

// splitLines cuts a frame on CR and LF, dropping empty lines.
func splitLines(frame string) []string {
	return strings.FieldsFunc(frame, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}

func (t *wsTransport) WriteLine(line string) error {
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (t *wsTransport) RemoteHost() string { return t.host }

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = t.conn.Close()
	})
	return err
}

func translateReadError(err error) error {
	switch {
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		return io.EOF
	case goerrors.Is(err, websocket.ErrReadLimit):
		return fmt.Errorf("%w: %w", errors.ErrLineTooLong, err)
	default:
		return err
	}
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
