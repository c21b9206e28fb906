// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration
type Config struct {
	RPCAddr string `env:"MINDROLL_RPC_ADDR" envDefault:":8080"`
	// OpsAddr is the ops HTTP listen address; OpsDisabled turns the ops server off
	OpsAddr string `env:"MINDROLL_OPS_ADDR" envDefault:":8081"`

	Storage    string `env:"MINDROLL_STORAGE"     envDefault:"memory"`
	RedisURL   string `env:"MINDROLL_REDIS_URL"   envDefault:"redis://localhost:6379"`
	SQLitePath string `env:"MINDROLL_SQLITE_PATH" envDefault:"mindroll.db"`

	// TokenSecret keys token signatures; a random secret is used when empty
	TokenSecret          string        `env:"MINDROLL_TOKEN_SECRET"`
	TokenTTL             time.Duration `env:"MINDROLL_TOKEN_TTL"              envDefault:"1h"`
	TokenJanitorInterval time.Duration `env:"MINDROLL_TOKEN_JANITOR_INTERVAL" envDefault:"5m"`
	AdminUsers           []string      `env:"MINDROLL_ADMIN_USERS"            envSeparator:","`

	ReconnectWindow   time.Duration `env:"MINDROLL_RECONNECT_WINDOW"    envDefault:"120s"`
	DisconnectTimeout time.Duration `env:"MINDROLL_DISCONNECT_TIMEOUT"  envDefault:"120s"`
	ResultDisplay     time.Duration `env:"MINDROLL_RESULT_DISPLAY"      envDefault:"5s"`
	DrawResultDisplay time.Duration `env:"MINDROLL_DRAW_RESULT_DISPLAY" envDefault:"3s"`

	LogLevel string `env:"MINDROLL_LOG_LEVEL" envDefault:"info"`
}

// OpsDisabled is the OpsAddr value that turns the ops server off
const OpsDisabled = "off"

// OpsEnabled reports whether the ops HTTP server should run
func (c Config) OpsEnabled() bool {
	return c.OpsAddr != OpsDisabled
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given variables only
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	admins := cfg.AdminUsers[:0]
	for _, name := range cfg.AdminUsers {
		if name = strings.TrimSpace(name); name != "" {
			admins = append(admins, name)
		}
	}
	cfg.AdminUsers = admins

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot
func (c Config) Validate() error {
	var errs []error
	if c.RPCAddr == "" {
		errs = append(errs, errors.New("MINDROLL_RPC_ADDR must not be empty"))
	}
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MINDROLL_TOKEN_TTL", c.TokenTTL},
		{"MINDROLL_TOKEN_JANITOR_INTERVAL", c.TokenJanitorInterval},
		{"MINDROLL_RECONNECT_WINDOW", c.ReconnectWindow},
		{"MINDROLL_DISCONNECT_TIMEOUT", c.DisconnectTimeout},
		{"MINDROLL_RESULT_DISPLAY", c.ResultDisplay},
		{"MINDROLL_DRAW_RESULT_DISPLAY", c.DrawResultDisplay},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.value))
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("MINDROLL_LOG_LEVEL: %w", err)
	}
	return level, nil
}
