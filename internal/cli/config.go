package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration
type Config struct {
	ServerAddr string `env:"MINDROLL_SERVER"     envDefault:"localhost:8080"`
	OpsURL     string `env:"MINDROLL_OPS_URL"    envDefault:"http://localhost:8081"`
	TokenFile  string `env:"MINDROLL_TOKEN_FILE"`
	Output     string
	Timeout    time.Duration
}

// Session is what login leaves behind for later commands
type Session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// errNotLoggedIn is returned when a command needs a saved session
var errNotLoggedIn = errors.New("not logged in: run 'mindroll login <username> <password>' first")

// DefaultConfig returns a Config from the environment and defaults
func DefaultConfig() *Config {
	cfg := &Config{
		Output:  "text",
		Timeout: 10 * time.Second,
	}
	_ = env.Parse(cfg)
	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}
	return cfg
}

// LoadSession reads the saved session, returning errNotLoggedIn if there is none
func (c *Config) LoadSession() (*Session, error) {
	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errNotLoggedIn
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("read session from %s: %w", c.TokenFile, err)
	}
	if s.Username == "" || s.Token == "" {
		return nil, errNotLoggedIn
	}
	return &s, nil
}

// SaveSession writes the session to the token file
func (c *Config) SaveSession(s Session) error {
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0700); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, data, 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mindroll/session"
	}
	return filepath.Join(home, ".mindroll", "session")
}
