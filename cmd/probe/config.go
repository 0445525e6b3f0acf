package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RelayAddr string `envconfig:"RELAY_ADDR" default:"ws://localhost:3000/ws"`
	// PROBE_COLOURS enables colorized output for better readability
	Colours bool          `envconfig:"PROBE_COLOURS" default:"true"`
	Timeout time.Duration `envconfig:"PROBE_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
