package config

import (
	"os"
	"strconv"
)

// FromEnv overlays TERN_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("TERN_HTTP"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("TERN_REQUIRE_AUTH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RequireAuth = b
		}
	}
	if v := os.Getenv("TERN_AUTH_MODE"); v != "" {
		cfg.AuthMode = v
	}
	if v := os.Getenv("TERN_STREAM_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.StreamTimeoutSecs = n
		}
	}
	if v := os.Getenv("TERN_POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollIntervalMillis = n
		}
	}
	if v := os.Getenv("TERN_STREAM_BUF"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StreamBuffer = n
		}
	}
	if v := os.Getenv("TERN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TERN_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TERN_SEED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Seed = b
		}
	}
}
