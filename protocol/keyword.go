// Package protocol serializes and parses the line protocol spoken between
// chat clients and the relay. It holds no state and performs no I/O.
package protocol

import "strings"

// Keyword is the first token of a protocol line.
type Keyword string

const (
	Hello        Keyword = "HELLO"
	Msg          Keyword = "MSG"
	Connected    Keyword = "CONNECTED"
	Disconnected Keyword = "DISCONNECTED"
)

// ParseKeyword upper-cases the token so matching is case-insensitive.
func ParseKeyword(token string) Keyword {
	return Keyword(strings.ToUpper(token))
}

func (k Keyword) String() string { return string(k) }
