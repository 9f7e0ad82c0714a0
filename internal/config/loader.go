package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "LINEUPS_"
	envConfigPath = "LINEUPS_CONFIG"
)

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	dotenv    string
	file      string
	overrides map[string]any
}

// WithDotEnv reads KEY=VALUE pairs from path into the environment before
// env vars are applied. A missing file is ignored. Variables already set in
// the environment win.
func WithDotEnv(path string) LoadOption {
	return func(o *loadOptions) { o.dotenv = path }
}

// WithFile reads a YAML file instead of the one named by LINEUPS_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) { o.file = path }
}

// WithOverride sets key after every other layer. The CLI uses it for flags
// the user set explicitly.
func WithOverride(key string, value any) LoadOption {
	return func(o *loadOptions) {
		if o.overrides == nil {
			o.overrides = map[string]any{}
		}
		o.overrides[key] = value
	}
}

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New(ctx))
//  2. .env file, if WithDotEnv is given
//  3. YAML file from WithFile, else the one named by LINEUPS_CONFIG
//  4. env (prefix LINEUPS_)
//  5. overrides
//
// The result is validated.
func Load(ctx context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	base := New(ctx)
	k := koanf.New(".")

	if o.dotenv != "" {
		if err := godotenv.Load(o.dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, o.dotenv, err)
		}
	}

	path := o.file
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// LINEUPS_COMBO_MIN_MINUTES -> combo_min_minutes. Underscores are kept to
	// match the flat koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The config path is not a config key.
	k.Delete("config")

	for key, v := range o.overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("%w: override %s: %w", ErrLoadConfig, key, err)
		}
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
