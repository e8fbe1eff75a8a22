package main

import (
	"chat-relay/internal"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerHost    string        `envconfig:"SERVER_HOST" default:"localhost" validate:"required"`
	ServerPort    int           `envconfig:"SERVER_PORT" default:"5000" validate:"gte=1,lte=65535"`
	User          string        `envconfig:"USER"`
	Cypher        string        `envconfig:"CYPHER" default:"cleartext" validate:"oneof=cleartext base64 secretbox"`
	Secret        string        `envconfig:"SECRET" validate:"required_if=Cypher secretbox"`
	DialTimeout   time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s" validate:"gt=0"`
	CensoredWords string        `envconfig:"CENSORED_WORDS"`
	// Colours can be turned off for terminals without ANSI support.
	Colours  bool   `envconfig:"COLOURS" default:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"WARN"`
}

// LoadConfig reads CHAT_* variables. The user name falls back to $USER.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("CHAT", &cfg); err != nil {
		return cfg, err
	}
	if cfg.User == "" {
		cfg.User = os.Getenv("USER")
	}
	if cfg.User == "" {
		cfg.User = "Anonymous"
	}
	return cfg, internal.Validate(cfg)
}
