// Package config reads the server configuration from the environment.
package config

import (
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/minaorangina/deckhub/deck"
	"github.com/minaorangina/deckhub/game"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var ErrInvalidConfig = eris.New("invalid config")

// Config is read from DECKHUB_* environment variables
type Config struct {
	Port     string `env:"DECKHUB_PORT,default=8000"`
	DeckFile string `env:"DECKHUB_DECK_FILE,default=./decks/decks.yaml"`
	LogLevel string `env:"DECKHUB_LOG_LEVEL,default=info"`

	// Decks come from Redis when RedisAddr is set, from DeckFile otherwise
	RedisAddr     string `env:"DECKHUB_REDIS_ADDR"`
	RedisPassword string `env:"DECKHUB_REDIS_PASSWORD"`
	RedisDB       int    `env:"DECKHUB_REDIS_DB,default=0"`

	MinPlayers  int `env:"DECKHUB_MIN_PLAYERS,default=2"`
	MaxPlayers  int `env:"DECKHUB_MAX_PLAYERS,default=4"`
	HandSize    int `env:"DECKHUB_HAND_SIZE,default=7"`
	MinDeckSize int `env:"DECKHUB_MIN_DECK_SIZE,default=40"`
	MaxCopies   int `env:"DECKHUB_MAX_COPIES,default=4"`
}

// Load reads and validates the configuration
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !eris.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, eris.Wrap(err, "could not read config from environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration makes sense
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Port) == "":
		return eris.Wrap(ErrInvalidConfig, "port must be set")
	case c.MinPlayers < 1:
		return eris.Wrapf(ErrInvalidConfig, "minimum players must be at least 1, got %d", c.MinPlayers)
	case c.MinPlayers > c.MaxPlayers:
		return eris.Wrapf(ErrInvalidConfig,
			"minimum players (%d) is more than maximum players (%d)", c.MinPlayers, c.MaxPlayers)
	case c.HandSize < 0:
		return eris.Wrapf(ErrInvalidConfig, "hand size cannot be negative, got %d", c.HandSize)
	case c.MinDeckSize < 0 || c.MaxCopies < 0:
		return eris.Wrap(ErrInvalidConfig, "deck rules cannot be negative")
	}

	if _, err := c.Level(); err != nil {
		return eris.Wrapf(ErrInvalidConfig, "unknown log level '%s'", c.LogLevel)
	}
	return nil
}

// Addr is the address to listen on
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Level is the log level
func (c *Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

// DeckRules are the rules decks are built with
func (c *Config) DeckRules() deck.Rules {
	return deck.Rules{MinCards: c.MinDeckSize, MaxCopies: c.MaxCopies}
}

// GameRules are the rules games are played with
func (c *Config) GameRules() game.Rules {
	return game.Rules{MinPlayers: c.MinPlayers, HandSize: c.HandSize}
}
