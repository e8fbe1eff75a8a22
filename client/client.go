// Package client is the participant side of the relay: it dials the server,
// sends HELLO and MSG lines and turns server lines into user-visible text.
package client

import (
	"bufio"
	"chat-relay/contract"
	"chat-relay/cypher"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/protocol"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	AlreadyConnectedText = "You are already connected!"
	DisconnectedText     = "Disconnected from server."
	InvalidMessageText   = "invalid message from server"
	ReadErrorText        = "Error: unable to read from the socket"
)

type Option func(*Client)

func WithCypher(c cypher.Cypher) Option {
	return func(cl *Client) { cl.cypher = c }
}

// WithModerator censors names and decoded text before they are displayed.
func WithModerator(m *moderation.Moderator) Option {
	return func(cl *Client) { cl.moderator = m }
}

func WithDialTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.dialTimeout = d }
}

func WithMaxLineBytes(n int) Option {
	return func(cl *Client) { cl.maxLineBytes = n }
}

type Client struct {
	log          *slog.Logger
	model        *Model
	presenter    contract.Presenter
	moderator    *moderation.Moderator
	dialTimeout  time.Duration
	maxLineBytes int

	mu     sync.Mutex
	cypher cypher.Cypher
	conn   net.Conn
	done   chan struct{}
}

func NewClient(log *slog.Logger, model *Model, presenter contract.Presenter, opts ...Option) *Client {
	c := &Client{
		log:          log,
		model:        model,
		presenter:    presenter,
		cypher:       cypher.ClearText{},
		dialTimeout:  5 * time.Second,
		maxLineBytes: 64 * 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the server, starts reading it and introduces the local user.
// A failed dial is reported to the presenter and leaves the client ready for
// another attempt.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.presenter.AppendOutput(AlreadyConnectedText)
		return errors.ErrAlreadyConnected
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return c.connectFailed(address, err)
	}

	if _, err := fmt.Fprintf(conn, "%s\n", protocol.HelloLine(c.model.CurrentUser().Name)); err != nil {
		_ = conn.Close()
		return c.connectFailed(address, err)
	}

	c.conn = conn
	c.done = make(chan struct{})
	c.presenter.AppendOutput(fmt.Sprintf("Connected to %s", address))
	c.log.Info("Connected", "address", address)
	go c.readLoop(conn, c.done)
	return nil
}

func (c *Client) connectFailed(address string, err error) error {
	connectErr := &errors.ConnectError{Address: address, Err: err}
	c.presenter.AppendOutput(fmt.Sprintf("Error: unable to connect, %v", err))
	c.log.Warn("Connection failed", "address", address, "error", err)
	return connectErr
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SendMessage encodes text with the active cypher and sends it as a MSG.
// Blank text is ignored.
func (c *Client) SendMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.ErrNotConnected
	}
	_, err := fmt.Fprintf(c.conn, "%s\n", protocol.MsgLine(c.cypher.Encode(text)))
	return err
}

func (c *Client) SetCypher(cy cypher.Cypher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cypher = cy
	c.log.Debug("Cypher changed", "cypher", cy.String())
}

func (c *Client) Cypher() cypher.Cypher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cypher
}

func (c *Client) Model() *Model { return c.model }

// Stop closes the connection and waits for the read loop to report it.
func (c *Client) Stop() {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		c.log.Debug("Close failed", "error", err)
	}
	<-done
}

func (c *Client) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), c.maxLineBytes)
	for scanner.Scan() {
		if text := c.ProcessServerInput(scanner.Text()); text != "" {
			c.presenter.AppendOutput(text)
		}
	}
	if err := scanner.Err(); err != nil && !goerrors.Is(err, net.ErrClosed) {
		c.log.Warn("Read failed", "error", err)
		c.presenter.AppendOutput(ReadErrorText)
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	c.model.RemoveOthers()
	c.presenter.AppendOutput(DisconnectedText)
}

// ProcessServerInput applies one server line to the model and returns the
// text to display.
func (c *Client) ProcessServerInput(line string) string {
	evt, err := protocol.ParseServerLine(line)
	switch {
	case goerrors.Is(err, errors.ErrUnknownCommand):
		return fmt.Sprintf("invalid command %s from server", evt.Keyword)
	case err != nil:
		c.log.Warn("Invalid line from server", "line", line, "error", err)
		return InvalidMessageText
	}

	switch evt.Keyword {
	case protocol.Msg:
		text := c.decode(evt.Payload)
		author := domain.NewParticipant(c.censor(evt.Name), evt.Address)
		c.model.AddLog(domain.LogEntry{At: evt.At, Author: author, Text: text})
		return fmt.Sprintf("%s said: %s", author.Name, text)
	case protocol.Connected:
		c.model.AddUser(domain.NewParticipant(evt.Name, evt.Address))
		return fmt.Sprintf("* %s just connected (%s)", c.censor(evt.Name), evt.Address)
	default:
		c.model.RemoveUser(evt.Name, evt.Address)
		return fmt.Sprintf("* %s just disconnected (%s)", c.censor(evt.Name), evt.Address)
	}
}

// decode falls back to the raw payload when the active cypher cannot read it,
// typically because the sender uses another one.
func (c *Client) decode(payload string) string {
	cy := c.Cypher()
	text, err := cy.Decode(payload)
	if err != nil {
		c.log.Warn("Unable to decode message", "cypher", cy.String(), "error", err)
		return payload
	}
	text, _ = c.moderator.Censor(text)
	return text
}

func (c *Client) censor(s string) string {
	censored, _ := c.moderator.Censor(s)
	return censored
}

// ParseAddress splits "host[:port]". The default port applies when none is
// given.
func ParseAddress(input string, defaultPort int) (string, int, error) {
	input = strings.TrimSpace(input)
	host, portStr, err := net.SplitHostPort(input)
	if err != nil {
		host, portStr = input, ""
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "", 0, fmt.Errorf("%w: missing host in %q", errors.ErrInvalidConfig, input)
	}
	if portStr == "" {
		return host, defaultPort, nil
	}
	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("%w: invalid port in %q", errors.ErrInvalidConfig, input)
	}
	return host, port, nil
}
