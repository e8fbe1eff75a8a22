package main

import (
	"chat-relay/client"
	"chat-relay/cypher"
	"chat-relay/ui"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
)

const helpText = `Commands:
  /connect host[:port]  connect to a relay
  /cypher <name>        switch text transform (cleartext, base64, secretbox)
  /who                  list known participants
  /history              show the latest messages
  /quit                 disconnect and exit
Any other text is sent as a message, or used as host[:port] when disconnected.`

// shell turns typed lines into client actions.
type shell struct {
	log         *slog.Logger
	client      *client.Client
	terminal    *ui.Terminal
	out         io.Writer
	defaultPort int
	secret      string
}

// handle runs one input line and reports whether the user asked to quit.
func (s *shell) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		if !s.client.Connected() {
			s.connect(ctx, line)
			return false
		}
		if err := s.client.SendMessage(line); err != nil {
			s.terminal.AppendOutput(fmt.Sprintf("Error: %v", err))
		}
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(command) {
	case "/connect":
		s.connect(ctx, arg)
	case "/cypher":
		s.switchCypher(arg)
	case "/who":
		ui.PrintParticipants(s.out, s.client.Model().Users(), s.client.Model().CurrentUser())
	case "/history":
		for _, entry := range s.terminal.History() {
			s.terminal.AppendOutput(entry.String())
		}
	case "/quit":
		s.client.Stop()
		return true
	case "/help":
		s.terminal.AppendOutput(helpText)
	default:
		s.terminal.AppendOutput(fmt.Sprintf("Error: unknown command %s, try /help", command))
	}
	return false
}

func (s *shell) connect(ctx context.Context, address string) {
	host, port, err := client.ParseAddress(address, s.defaultPort)
	if err != nil {
		s.terminal.AppendOutput(fmt.Sprintf("Error: %v", err))
		return
	}
	s.terminal.AppendOutput(fmt.Sprintf("Connecting to %s ...", net.JoinHostPort(host, strconv.Itoa(port))))
	if err := s.client.Connect(ctx, host, port); err != nil {
		s.log.Debug("Connect failed", "error", err)
	}
}

func (s *shell) switchCypher(name string) {
	cy, err := cypher.New(name, s.secret)
	if err != nil {
		s.terminal.AppendOutput(fmt.Sprintf("Error: %v (available: %s)", err, strings.Join(cypher.Names(), ", ")))
		return
	}
	s.client.SetCypher(cy)
	s.terminal.AppendOutput(fmt.Sprintf("Messages now use %s", cy))
}
