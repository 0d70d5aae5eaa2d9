package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. SITE_ADDR.
const EnvPrefix = "SITE_"

// Original build-time names of the record store secrets, honored as a fallback.
const (
	legacyURLEnv = "VITE_SUPABASE_URL"
	legacyKeyEnv = "VITE_SUPABASE_ANON_KEY"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SITE_CONFIG is set
//  3. env (prefix SITE_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.SupabaseURL == "" {
		cfg.SupabaseURL = os.Getenv(legacyURLEnv)
	}
	if cfg.SupabaseAnonKey == "" {
		cfg.SupabaseAnonKey = os.Getenv(legacyKeyEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
// Missing record store secrets are not an error: persistence degrades instead.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ChatTypingMinMS < 0 || c.ChatTypingMaxMS < c.ChatTypingMinMS:
		return fmt.Errorf("%w: chat typing delay range [%d,%d]", ErrInvalidConfig, c.ChatTypingMinMS, c.ChatTypingMaxMS)
	case c.FrameIntervalMS <= 0:
		return fmt.Errorf("%w: frame_interval_ms must be positive", ErrInvalidConfig)
	case c.StatusDismissMS <= 0:
		return fmt.Errorf("%w: status_dismiss_ms must be positive", ErrInvalidConfig)
	}
	switch c.StoreBackend {
	case BackendSupabase, BackendDisabled:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty for the sqlite backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	return nil
}

// PersistenceConfigured reports whether the hosted record store secrets are present.
func (c *Config) PersistenceConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}
