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
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if WINGMATE_CONFIG is set
//  3. env (prefix WINGMATE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("WINGMATE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: WINGMATE_ADDR, WINGMATE_DATABASE_URL, ...
	// Map env keys like WINGMATE_DATABASE_URL -> database_url (flat keys),
	// preserving underscores to match the koanf tags on the struct.
	envProvider := env.Provider("WINGMATE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "wingmate_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatabaseURL == "":
		return fmt.Errorf("%w: database_url must not be empty", ErrInvalidConfig)
	case c.ProgressRetries < 1:
		return fmt.Errorf("%w: progress_retries must be at least 1", ErrInvalidConfig)
	case c.InsightStaleDays <= 0:
		return fmt.Errorf("%w: insight_stale_days must be positive", ErrInvalidConfig)
	case c.CoachTimeoutSec <= 0:
		return fmt.Errorf("%w: coach_timeout_sec must be positive", ErrInvalidConfig)
	}
	return nil
}
