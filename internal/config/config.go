// internal/config/config.go
//
// Environment configuration for the manor server.
// A .env file (if present) is loaded by main before Load is called.

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/samber/oops"
)

// Config holds every runtime setting. There are no CLI flags.
type Config struct {
	Port            string        `env:"PORT" envDefault:"5175"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin    string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	// LedgerPath is the SQLite file for the escape ledger. Empty disables it.
	LedgerPath      string `env:"LEDGER_PATH"`
	DefaultPlayerID string `env:"DEFAULT_PLAYER_ID" envDefault:"player1"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").With("operation", "parse env").Wrap(err)
	}
	if cfg.DefaultPlayerID == "" {
		return Config{}, oops.Code("CONFIG_INVALID").Errorf("DEFAULT_PLAYER_ID must not be empty")
	}
	return cfg, nil
}

// Addr returns the listen address for Port.
func (c Config) Addr() string { return ":" + c.Port }
