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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if TALLY_CONFIG is set
//  3. env (prefix TALLY_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("TALLY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFileLoad, err)
		}
	}

	// Environment variables: TALLY_ADDR, TALLY_DB_PATH, ...
	// Map env keys like TALLY_DB_PATH -> db_path (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TALLY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tally_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvLoad, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshal, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalid)
	}
	if c.ProbeIntervalSeconds <= 0 {
		return fmt.Errorf("%w: probe_interval_seconds must be positive", ErrInvalid)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("%w: history_limit must be positive", ErrInvalid)
	}
	if c.ConfirmSplashMS <= 0 {
		return fmt.Errorf("%w: confirm_splash_ms must be positive", ErrInvalid)
	}
	if c.AdminTapThreshold <= 0 {
		return fmt.Errorf("%w: admin_tap_threshold must be positive", ErrInvalid)
	}
	if c.AdminTapWindowMS <= 0 {
		return fmt.Errorf("%w: admin_tap_window_ms must be positive", ErrInvalid)
	}
	if len(c.Roster) == 0 {
		return fmt.Errorf("%w: roster must not be empty", ErrInvalid)
	}
	seen := make(map[string]struct{}, len(c.Roster))
	for _, name := range c.Roster {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return fmt.Errorf("%w: roster contains a blank name", ErrInvalid)
		}
		if _, dup := seen[trimmed]; dup {
			return fmt.Errorf("%w: roster contains %q more than once", ErrInvalid, trimmed)
		}
		seen[trimmed] = struct{}{}
	}
	return nil
}
