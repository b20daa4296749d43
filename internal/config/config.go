// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable name
const Prefix = "CREWMATE_"

// Config is the process configuration
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	Debug      bool   `env:"DEBUG"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"crewmate.db"`
	PostgresURL   string `env:"POSTGRES_URL"`

	NotifyRate    float64       `env:"NOTIFY_RATE" envDefault:"5"`
	NotifyBurst   int           `env:"NOTIFY_BURST" envDefault:"10"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"1s"`

	FillWithBots bool `env:"FILL_WITH_BOTS" envDefault:"true"`

	Tuning Tuning `envPrefix:"TUNING_"`
}

// Load reads an optional .env file and then the environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from prefixed environment variables
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Default returns the configuration with every default applied and the
// environment ignored
func Default() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// DefaultTuning returns the default game tuning
func DefaultTuning() Tuning {
	return Default().Tuning
}
