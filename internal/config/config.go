// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and GROWTHBOARD_* env vars.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL is the root of every analytics feed.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// Feed paths relative to UpstreamBaseURL. Empty keeps the client default.
	RevenuePath     string `koanf:"revenue_path"`
	LegacyPath      string `koanf:"legacy_path"`
	SessionsPath    string `koanf:"sessions_path"`
	ProfessionsPath string `koanf:"professions_path"`

	// UpstreamTimeoutMS bounds each upstream call.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// Timezone is the IANA zone used to bucket legacy timestamps.
	Timezone string `koanf:"timezone"`

	// DayLabelFormat is the Go time layout of daily chart labels.
	DayLabelFormat string `koanf:"day_label_format"`

	// CacheRedisAddr enables the response cache when set, e.g. "localhost:6379".
	CacheRedisAddr string `koanf:"cache_redis_addr"`

	// CacheRedisDB selects the redis logical database.
	CacheRedisDB int `koanf:"cache_redis_db"`

	// CacheTTLSeconds is how long a cached response stays valid.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CORSAllowedOrigins is a comma separated origin list; "*" allows any.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	// MetricsEnabled turns prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsPrefix is prepended to every metric name after the subsystem.
	MetricsPrefix string `koanf:"metrics_prefix"`

	// MetricsLabels are constant labels on every metric, e.g. "env=prod,region=br".
	MetricsLabels string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		UpstreamBaseURL:    "http://localhost:9090",
		UpstreamTimeoutMS:  10_000,
		Timezone:           "America/Sao_Paulo",
		DayLabelFormat:     "02/01",
		CacheTTLSeconds:    300,
		CORSAllowedOrigins: "*",
		MetricsEnabled:     true,
	}
}

// UpstreamTimeout returns the per-call upstream timeout.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// CacheTTL returns the response cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// CacheEnabled reports whether a redis address was configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.CacheRedisAddr) != ""
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// CORSOrigins splits CORSAllowedOrigins.
func (c *Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// MetricsConstLabels parses MetricsLabels into a label map.
func (c *Config) MetricsConstLabels() (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(c.MetricsLabels, ",") {
		if pair = strings.TrimSpace(pair); pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("%w: metrics_labels entry %q must be key=value", ErrInvalidConfig, pair)
		}
		out[k] = v
	}
	return out, nil
}

// Validate checks the fields that have no safe fallback.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.UpstreamBaseURL) == "":
		return fmt.Errorf("%w: upstream_base_url must not be empty", ErrInvalidConfig)
	case c.UpstreamTimeoutMS <= 0:
		return fmt.Errorf("%w: upstream_timeout_ms must be positive", ErrInvalidConfig)
	case c.CacheEnabled() && c.CacheTTLSeconds <= 0:
		return fmt.Errorf("%w: cache_ttl_seconds must be positive when the cache is enabled", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.MetricsConstLabels(); err != nil {
		return err
	}
	return nil
}
