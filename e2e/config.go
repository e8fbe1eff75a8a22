package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_RELAY_ADDR points at a running chatd, the suite is skipped when empty
	RelayAddr string `envconfig:"E2E_RELAY_ADDR"`
	// E2E_HEALTH_ADDR points at its gRPC health server, optional
	HealthAddr string `envconfig:"E2E_HEALTH_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
