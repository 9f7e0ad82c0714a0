// Package config defines process configuration and its layered loading.
//
// Conventions:
//   - New(ctx) returns a Config holding every default.
//   - Load(ctx, opts...) layers .env, an optional YAML file, LINEUPS_* env
//     vars and explicit overrides on top of the defaults, then validates.
//   - Validation failures wrap ErrInvalidConfig and happen before any file I/O.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/lineups/internal/domain/interval"
)

// Supported values for Format and LogFormat.
var (
	formats    = []string{"csv", "json", "msgpack"}
	logFormats = []string{"text", "json"}
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// InputDir and Pattern locate the per-game stint files.
	InputDir string `koanf:"input_dir"`
	Pattern  string `koanf:"pattern"`

	// Intervals is a comma-separated list of interval sizes, e.g. "3,2,3".
	Intervals string `koanf:"intervals"`

	// RosterPath points at a pid,name,initial,height CSV. Optional.
	RosterPath string `koanf:"roster_path"`

	// TeamID keeps only this team's rows when the files carry a teamId column.
	TeamID string `koanf:"team_id"`

	// OutputPath is where tables are written; empty means stdout.
	OutputPath string `koanf:"output_path"`
	// Format is csv, json or msgpack.
	Format string `koanf:"format"`

	// SinkDSN optionally stores each report in sqlite ("sqlite:<path>") or
	// postgres ("postgres://...").
	SinkDSN string `koanf:"sink_dsn"`

	// Workers is the number of intervals processed concurrently.
	Workers int `koanf:"workers"`

	// ComboSize and ComboMinMinutes shape the combination table.
	ComboSize       int     `koanf:"combo_size"`
	ComboMinMinutes float64 `koanf:"combo_min_minutes"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RefreshSchedule is a cron spec for recomputing the served report, e.g.
	// "@every 5m". Empty disables refresh.
	RefreshSchedule string `koanf:"refresh_schedule"`

	// MaxLimit caps GET /lineups?limit.
	MaxLimit int `koanf:"max_limit"`

	// RequestTimeoutMS bounds each HTTP request, in milliseconds.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
}

// New creates a Config holding the defaults. Context is accepted first to
// follow the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		InputDir:        ".",
		Pattern:         "*.csv",
		Format:          "csv",
		Workers:         1,
		ComboSize:       3,
		ComboMinMinutes: 0,
		Addr:            ":9080",
		MaxLimit:        100,

		RequestTimeoutMS: 30000,
	}
}

// IntervalSizes parses Intervals.
func (c *Config) IntervalSizes() ([]int, error) {
	return interval.ParseSizes(c.Intervals)
}

// Validate checks every field that can be checked without touching disk.
func (c *Config) Validate() error {
	if !oneOf(c.Format, formats) {
		return fmt.Errorf("%w: format %q (want one of %s)", ErrInvalidConfig, c.Format, strings.Join(formats, ", "))
	}
	if !oneOf(c.LogFormat, logFormats) {
		return fmt.Errorf("%w: log_format %q (want one of %s)", ErrInvalidConfig, c.LogFormat, strings.Join(logFormats, ", "))
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.ComboSize < 2 || c.ComboSize > 5 {
		return fmt.Errorf("%w: combo_size must be between 2 and 5, got %d", ErrInvalidConfig, c.ComboSize)
	}
	if c.ComboMinMinutes < 0 {
		return fmt.Errorf("%w: combo_min_minutes must not be negative", ErrInvalidConfig)
	}
	if c.MaxLimit < 1 {
		return fmt.Errorf("%w: max_limit must be at least 1, got %d", ErrInvalidConfig, c.MaxLimit)
	}
	if c.RequestTimeoutMS < 1 {
		return fmt.Errorf("%w: request_timeout_ms must be at least 1, got %d", ErrInvalidConfig, c.RequestTimeoutMS)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Intervals) != "" {
		if _, err := c.IntervalSizes(); err != nil {
			return fmt.Errorf("%w: intervals: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
