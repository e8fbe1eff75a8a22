package cypher

import (
	"chat-relay/errors"
	"encoding/base64"
	"fmt"
)

// Base64 is a reversible encoding, not a secret. Its output never contains
// whitespace, so a payload always stays one protocol token.
type Base64 struct{}

var _ Cypher = Base64{}

func (Base64) Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

func (Base64) Decode(text string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrDecode, err)
	}
	return string(b), nil
}

func (Base64) String() string { return Base64Name }
