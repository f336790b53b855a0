package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthMode selects how bearer credentials are judged when auth is required.
const (
	// AuthModePresence authorizes any request carrying a credential.
	AuthModePresence = "presence"
	// AuthModeVerify additionally checks bearer tokens against the token
	// table's expiry predicate.
	AuthModeVerify = "verify"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	HTTPAddr           string `json:"httpAddr" yaml:"httpAddr"`
	RequireAuth        bool   `json:"requireAuth" yaml:"requireAuth"`
	AuthMode           string `json:"authMode" yaml:"authMode"`
	StreamTimeoutSecs  int    `json:"streamTimeoutSecs" yaml:"streamTimeoutSecs"`
	PollIntervalMillis int    `json:"pollIntervalMillis" yaml:"pollIntervalMillis"`
	StreamBuffer       int    `json:"streamBuffer" yaml:"streamBuffer"`
	LogLevel           string `json:"logLevel" yaml:"logLevel"`
	LogFormat          string `json:"logFormat" yaml:"logFormat"`
	Seed               bool   `json:"seed" yaml:"seed"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:           ":8080",
		AuthMode:           AuthModePresence,
		StreamTimeoutSecs:  0, // unbounded sessions
		PollIntervalMillis: 1000,
		StreamBuffer:       4,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// StreamTimeout returns the session lifetime bound; zero means unbounded.
func (c Config) StreamTimeout() time.Duration {
	if c.StreamTimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.StreamTimeoutSecs) * time.Second
}

// PollInterval returns the delivery polling interval.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMillis <= 0 {
		return time.Second
	}
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// Load reads configuration from a JSON or YAML file (by extension). An empty
// path returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
