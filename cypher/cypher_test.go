package cypher

import (
	"chat-relay/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var samples = []string{
	"",
	"hello",
	"hello big world",
	"Un été avec un blaireau",
	"tabs\tand  spaces",
	"symbols !@#$%^&*()_+-=[]{};':\",./<>?",
}

func TestCypher_RoundTrip(t *testing.T) {
	strategies := []Cypher{ClearText{}, Base64{}, NewSecretbox("correct horse")}

	for _, c := range strategies {
		t.Run(c.String(), func(t *testing.T) {
			req := require.New(t)
			for _, text := range samples {
				decoded, err := c.Decode(c.Encode(text))
				req.NoError(err)
				req.Equal(text, decoded)
			}
		})
	}
}

func TestBase64_KnownValue(t *testing.T) {
	req := require.New(t)

	req.Equal("aGVsbG8=", Base64{}.Encode("hello"))
	decoded, err := Base64{}.Decode("aGVsbG8=")
	req.NoError(err)
	req.Equal("hello", decoded)

	_, err = Base64{}.Decode("not base64 !")
	req.ErrorIs(err, errors.ErrDecode)
}

func TestEncodedPayloadIsOneToken(t *testing.T) {
	req := require.New(t)

	for _, c := range []Cypher{Base64{}, NewSecretbox("s3cret")} {
		encoded := c.Encode("a message with spaces")
		req.False(strings.ContainsAny(encoded, " \t\n"), "cypher=%s", c)
	}
}

func TestSecretbox_WrongPassphrase(t *testing.T) {
	req := require.New(t)

	// Given a payload sealed by one passphrase
	sealed := NewSecretbox("alpha").Encode("hello")

	// When another passphrase opens it
	_, err := NewSecretbox("beta").Decode(sealed)

	// Then decoding fails instead of returning garbage
	req.ErrorIs(err, errors.ErrDecode)

	_, err = NewSecretbox("alpha").Decode("c2hvcnQ")
	req.ErrorIs(err, errors.ErrDecode)
}

func TestSecretbox_NonceChangesCiphertext(t *testing.T) {
	req := require.New(t)
	box := NewSecretbox("alpha")

	req.NotEqual(box.Encode("hello"), box.Encode("hello"))
}

func TestNew(t *testing.T) {
	req := require.New(t)

	c, err := New("", "")
	req.NoError(err)
	req.Equal(ClearTextName, c.String())

	c, err = New("BASE64", "")
	req.NoError(err)
	req.Equal(Base64Name, c.String())

	c, err = New("secretbox", "pass")
	req.NoError(err)
	req.Equal(SecretboxName, c.String())

	_, err = New("secretbox", "")
	req.ErrorIs(err, errors.ErrInvalidConfig)

	_, err = New("rot13", "")
	req.ErrorIs(err, errors.ErrUnknownCypher)
}
