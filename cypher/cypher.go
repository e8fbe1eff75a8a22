//go:generate go run go.uber.org/mock/mockgen -source=cypher.go -destination=../mocks/mock_cypher.go -package=mocks
package cypher

import (
	"chat-relay/errors"
	"fmt"
	"strings"
)

// Cypher is a reversible text transform applied to chat payloads before
// they leave a client. The relay never calls it.
type Cypher interface {
	Encode(text string) string
	Decode(text string) (string, error)
	String() string
}

const (
	ClearTextName = "cleartext"
	Base64Name    = "base64"
	SecretboxName = "secretbox"
)

// Names lists the strategies accepted by New.
func Names() []string {
	return []string{ClearTextName, Base64Name, SecretboxName}
}

// New builds a strategy by name. The secret is only used by secretbox.
func New(name, secret string) (Cypher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ClearTextName:
		return ClearText{}, nil
	case Base64Name:
		return Base64{}, nil
	case SecretboxName:
		if secret == "" {
			return nil, fmt.Errorf("%w: secretbox needs a secret", errors.ErrInvalidConfig)
		}
		return NewSecretbox(secret), nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownCypher, name)
	}
}
