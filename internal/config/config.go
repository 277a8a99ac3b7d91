// Package config defines service configuration structures and loading hooks.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/okian/eventpulse/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RecommendationLimit is the default number of recommendations per view.
	RecommendationLimit int `koanf:"recommendation_limit"`

	// CalendarWindowMinutes is the busy-check window after an event's start.
	CalendarWindowMinutes int `koanf:"calendar_window_minutes"`

	// SessionTTLSeconds expires idle sessions.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// Weights are the recommendation component weights; they must sum to 1.
	Weights scoring.Weights `koanf:"weights"`

	Importer Importer `koanf:"importer"`

	Metrics Metrics `koanf:"metrics"`
}

// Metrics names the exported Prometheus series. LatencyBucketsMs must be
// strictly increasing; empty keeps the built-in buckets.
type Metrics struct {
	Namespace        string            `koanf:"namespace"`
	Subsystem        string            `koanf:"subsystem"`
	LatencyBucketsMs []float64         `koanf:"latency_buckets_ms"`
	Labels           map[string]string `koanf:"labels"`
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate rejects names and buckets Prometheus would refuse to register.
func (m *Metrics) Validate() error {
	for _, n := range []string{m.Namespace, m.Subsystem} {
		if n != "" && !metricName.MatchString(n) {
			return fmt.Errorf("metrics name %q is not a valid identifier", n)
		}
	}
	for k := range m.Labels {
		if !metricName.MatchString(k) {
			return fmt.Errorf("metrics label %q is not a valid identifier", k)
		}
	}
	for i := 1; i < len(m.LatencyBucketsMs); i++ {
		if m.LatencyBucketsMs[i] <= m.LatencyBucketsMs[i-1] {
			return errors.New("metrics latency buckets must be strictly increasing")
		}
	}
	return nil
}

// Importer configures the Discovery API import job. An empty APIKey disables
// it.
type Importer struct {
	APIKey          string  `koanf:"api_key"`
	BaseURL         string  `koanf:"base_url"`
	Latitude        float64 `koanf:"latitude"`
	Longitude       float64 `koanf:"longitude"`
	RadiusKm        int     `koanf:"radius_km"`
	PageSize        int     `koanf:"page_size"`
	MaxPages        int     `koanf:"max_pages"`
	IntervalSeconds int     `koanf:"interval_seconds"`
	TimeoutSeconds  int     `koanf:"timeout_seconds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		RecommendationLimit:   5,
		CalendarWindowMinutes: 120,
		SessionTTLSeconds:     1800,
		Weights:               scoring.DefaultWeights(),
		Importer: Importer{
			BaseURL:        "https://app.ticketmaster.com/discovery/v2",
			Latitude:       51.441642,
			Longitude:      5.469722,
			RadiusKm:       25,
			PageSize:       50,
			MaxPages:       5,
			TimeoutSeconds: 10,
		},
		Metrics: Metrics{
			Namespace: "eventpulse",
			Subsystem: "discovery",
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RecommendationLimit <= 0:
		return fmt.Errorf("%w: recommendation_limit must be positive", ErrInvalidConfig)
	case c.CalendarWindowMinutes <= 0:
		return fmt.Errorf("%w: calendar_window_minutes must be positive", ErrInvalidConfig)
	case c.SessionTTLSeconds <= 0:
		return fmt.Errorf("%w: session_ttl_seconds must be positive", ErrInvalidConfig)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	im := c.Importer
	if im.Latitude < -90 || im.Latitude > 90 || im.Longitude < -180 || im.Longitude > 180 {
		return fmt.Errorf("%w: importer centre out of range", ErrInvalidConfig)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// CalendarWindow returns the busy-check window.
func (c *Config) CalendarWindow() time.Duration {
	return time.Duration(c.CalendarWindowMinutes) * time.Minute
}

// SessionTTL returns the idle session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// ImportInterval returns the periodic import interval; zero disables it.
func (c *Config) ImportInterval() time.Duration {
	return time.Duration(c.Importer.IntervalSeconds) * time.Second
}

// ImportTimeout returns the per-request timeout of the ticketing client.
func (c *Config) ImportTimeout() time.Duration {
	return time.Duration(c.Importer.TimeoutSeconds) * time.Second
}
