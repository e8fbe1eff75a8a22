package protocol

import (
	"chat-relay/errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ClientCommand is a parsed client-to-server line.
type ClientCommand struct {
	Keyword Keyword
	// Name is set for HELLO.
	Name string
	// Payload is the still-encoded text of a MSG.
	Payload string
}

// ServerEvent is a parsed server-to-client line.
type ServerEvent struct {
	Keyword Keyword
	Name    string
	Address string
	// At and Payload are only set for MSG.
	At      time.Time
	Payload string
}

// Split trims the line and cuts it at the first run of whitespace.
// A line with fewer than two tokens is malformed.
func Split(line string) (Keyword, string, error) {
	fields := splitN(line, 2)
	if len(fields) < 2 {
		return "", "", fmt.Errorf("%w: %q", errors.ErrMalformedLine, line)
	}
	return ParseKeyword(fields[0]), fields[1], nil
}

// HasControl reports whether s holds a control character other than a tab.
// A relayed token carrying one could split into several wire lines.
func HasControl(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return r != '\t' && unicode.IsControl(r)
	})
}

// NormalizeName turns a display name into the single token the relay
// announces: NFC form, inner whitespace runs replaced by underscores.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), "_")
}

// ParseClientLine decodes a line received by the server.
func ParseClientLine(line string) (ClientCommand, error) {
	keyword, rest, err := Split(line)
	if err != nil {
		return ClientCommand{}, err
	}
	switch keyword {
	case Hello:
		return ClientCommand{Keyword: Hello, Name: rest}, nil
	case Msg:
		return ClientCommand{Keyword: Msg, Payload: rest}, nil
	default:
		return ClientCommand{Keyword: keyword}, fmt.Errorf("%w: %s", errors.ErrUnknownCommand, keyword)
	}
}

// ParseServerLine decodes a line received by a client.
// The returned keyword is filled even when the command is unknown.
func ParseServerLine(line string) (ServerEvent, error) {
	keyword, rest, err := Split(line)
	if err != nil {
		return ServerEvent{}, err
	}
	switch keyword {
	case Msg:
		fields := splitN(rest, 4)
		if len(fields) < 4 {
			return ServerEvent{Keyword: keyword}, fmt.Errorf("%w: %q", errors.ErrMalformedLine, line)
		}
		millis, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return ServerEvent{Keyword: keyword}, fmt.Errorf("%w: bad timestamp %q", errors.ErrMalformedLine, fields[2])
		}
		return ServerEvent{
			Keyword: Msg,
			Name:    fields[0],
			Address: fields[1],
			At:      time.UnixMilli(millis),
			Payload: fields[3],
		}, nil
	case Connected, Disconnected:
		fields := splitN(rest, 2)
		if len(fields) < 2 {
			return ServerEvent{Keyword: keyword}, fmt.Errorf("%w: %q", errors.ErrMalformedLine, line)
		}
		return ServerEvent{Keyword: keyword, Name: fields[0], Address: fields[1]}, nil
	default:
		return ServerEvent{Keyword: keyword}, fmt.Errorf("%w: %s", errors.ErrUnknownCommand, keyword)
	}
}

func HelloLine(name string) string {
	return fmt.Sprintf("%s %s", Hello, strings.TrimSpace(name))
}

func MsgLine(encoded string) string {
	return fmt.Sprintf("%s %s", Msg, encoded)
}

// MessageLine is the relayed form of a MSG, stamped with epoch milliseconds.
func MessageLine(name, address string, at time.Time, encoded string) string {
	return fmt.Sprintf("%s %s %s %d %s", Msg, name, address, at.UnixMilli(), encoded)
}

func ConnectedLine(name, address string) string {
	return fmt.Sprintf("%s %s %s", Connected, name, address)
}

func DisconnectedLine(name, address string) string {
	return fmt.Sprintf("%s %s %s", Disconnected, name, address)
}

// splitN behaves like a regexp split on \s+ of the trimmed input, limited to n
// fields. The last field keeps its inner whitespace.
func splitN(s string, n int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	fields := make([]string, 0, n)
	for len(fields) < n-1 {
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			break
		}
		fields = append(fields, s[:i])
		s = strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	}
	return append(fields, s)
}
