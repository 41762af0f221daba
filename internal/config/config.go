// Package config loads the raffled host configuration from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/raffled/internal/random"
)

const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"

	RandomSeeded = "seeded"
	RandomCrypto = "crypto"
)

// Config holds every setting the host reads at startup
type Config struct {
	HTTPAddr string `env:"RAFFLE_HTTP_ADDR" envDefault:":8080"`

	// Store selects the raffle repository, redis or sqlite.
	// Events are always delivered to a Redis stream.
	Store string `env:"RAFFLE_STORE" envDefault:"redis"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// EventStreamMaxLen trims each raffle's event stream. Zero keeps everything.
	EventStreamMaxLen int64 `env:"RAFFLE_EVENT_STREAM_MAXLEN" envDefault:"0"`

	SQLitePath string `env:"RAFFLE_SQLITE_PATH" envDefault:"raffle.db"`

	Countdown        time.Duration `env:"RAFFLE_COUNTDOWN" envDefault:"15m"`
	RequireCountdown bool          `env:"RAFFLE_REQUIRE_COUNTDOWN" envDefault:"false"`

	// Random selects the draw source, seeded or crypto
	Random string `env:"RAFFLE_RANDOM" envDefault:"seeded"`
	Seed   string `env:"RAFFLE_SEED" envDefault:"0101010101010101"`

	Verbose bool `env:"RAFFLE_VERBOSE" envDefault:"false"`
}

// Load reads an optional .env file from files, or ./.env when none are
// given, then parses the environment. Variables already set win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the host cannot start with
func (c *Config) Validate() error {
	switch c.Store {
	case StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	switch c.Random {
	case RandomSeeded, RandomCrypto:
	default:
		return fmt.Errorf("unknown random source %q", c.Random)
	}

	if _, err := random.ParseSeed(c.Seed); err != nil {
		return err
	}

	if c.Countdown < 0 {
		return fmt.Errorf("countdown cannot be negative: %s", c.Countdown)
	}
	if c.EventStreamMaxLen < 0 {
		return fmt.Errorf("event stream max length cannot be negative: %d", c.EventStreamMaxLen)
	}

	return nil
}

// SeedBytes returns the decoded draw seed
func (c *Config) SeedBytes() []byte {
	seed, _ := random.ParseSeed(c.Seed)
	return seed
}
