package main

import (
	"chat-relay/errors"
	"chat-relay/internal"
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_FromEnvironment(t *testing.T) {
	req := require.New(t)

	// Given the relay settings in the environment
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "6000")
	t.Setenv("POOL_SIZE", "8")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("CENSORED_WORDS", "darn, heck ,")
	t.Setenv("ADMIN_PORT", "6001")
	t.Setenv("LOG_LEVEL", "DEBUG")

	// When it is loaded
	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)
	req.NoError(internal.Validate(config))

	// Then the relay receives the same values
	server := config.server()
	req.Equal("127.0.0.1", server.Host)
	req.Equal(6000, server.Port)
	req.Equal(8, server.PoolSize)
	req.Equal(3*time.Second, server.WriteTimeout)
	req.InDelta(2.5, server.RateLimit, 0.001)
	req.Equal([]string{"darn", "heck"}, config.censoredWords())
	req.Equal("127.0.0.1:6001", config.adminAddress())
}

func TestConfig_AdminAddressOnIPv6Host(t *testing.T) {
	req := require.New(t)

	config := Config{Host: "::1", AdminPort: 6001}

	req.Equal("[::1]:6001", config.adminAddress())
}

func TestConfig_RejectsOutOfRangeValues(t *testing.T) {
	req := require.New(t)

	config := Config{
		Port:            70000,
		PoolSize:        0,
		AcceptTimeout:   time.Second,
		MaxLineBytes:    1024,
		EventBufferSize: 1,
		SinkTimeout:     time.Second,
		RestartInterval: time.Second,
		RateBurst:       1,
		LogLevel:        "INFO",
	}

	req.ErrorIs(internal.Validate(config), errors.ErrInvalidConfig)
}
