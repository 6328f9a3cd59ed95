// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"time"

	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/internal/domain/normalize"
	"github.com/okian/attrib/internal/domain/scoring"
)

// Provider names accepted by the provider setting.
const (
	ProviderMock = "mock"
	ProviderESPN = "espn"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DefaultSport is used when a request does not name one.
	DefaultSport string `koanf:"default_sport"`

	// Provider selects the game-data source: mock or espn.
	Provider string `koanf:"provider"`

	// MockSeed seeds the mock provider's generator.
	MockSeed int64 `koanf:"mock_seed"`

	// ESPN client settings.
	ESPNBaseURL string        `koanf:"espn_base_url"`
	ESPNTimeout time.Duration `koanf:"espn_timeout"`
	ESPNRPS     float64       `koanf:"espn_rps"`
	ESPNBurst   int           `koanf:"espn_burst"`

	// Circuit breaker around the ESPN client.
	BreakerMaxRequests uint32        `koanf:"breaker_max_requests"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
	BreakerFailures    uint32        `koanf:"breaker_failures"`

	// ProviderTimeout bounds one stats fetch made by the service.
	ProviderTimeout time.Duration `koanf:"provider_timeout"`

	// Confidence is the data-tier confidence of profiles that set none.
	Confidence float64 `koanf:"confidence"`

	// Prometheus metric naming and collection.
	MetricsEnabled         bool          `koanf:"metrics_enabled"`
	MetricsNamespace       string        `koanf:"metrics_namespace"`
	MetricsSubsystem       string        `koanf:"metrics_subsystem"`
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
	MetricsLatencyBuckets  []float64     `koanf:"metrics_latency_buckets"`

	// Inputs are the fallbacks for missing raw statistics.
	Inputs normalize.Defaults `koanf:"inputs"`

	// Profiles are the per-sport weight profiles. A profile given in the
	// file only needs the fields it changes; a zero confidence inherits
	// Confidence.
	Profiles map[string]scoring.Profile `koanf:"profiles"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		DefaultSport:       string(model.SportNBA),
		Provider:           ProviderMock,
		MockSeed:           42,
		ESPNBaseURL:        "https://site.api.espn.com/apis/site/v2/sports",
		ESPNTimeout:        10 * time.Second,
		ESPNRPS:            5,
		ESPNBurst:          5,
		BreakerMaxRequests: 1,
		BreakerTimeout:     30 * time.Second,
		BreakerFailures:    5,
		ProviderTimeout:    15 * time.Second,
		Confidence:         65,

		MetricsEnabled:         true,
		MetricsNamespace:       "attrib",
		MetricsSubsystem:       "scoring",
		MetricsRefreshInterval: 10 * time.Second,

		Inputs:   normalize.DefaultInputs(),
		Profiles: defaultProfiles(),
	}
}

// defaultProfiles are the built-in profiles keyed by sport name, with the
// confidence left to the global setting.
func defaultProfiles() map[string]scoring.Profile {
	out := make(map[string]scoring.Profile)
	for sport, p := range scoring.DefaultProfiles() {
		p.Confidence = 0
		out[string(sport)] = p
	}
	return out
}

// profileFields flattens the weights of p into koanf paths relative to
// the profile key. Confidence is omitted so it stays inheritable.
func profileFields(p scoring.Profile) map[string]float64 {
	return map[string]float64{
		"logistic.intercept":    p.Logistic.Intercept,
		"logistic.performance":  p.Logistic.Performance,
		"logistic.fatigue":      p.Logistic.Fatigue,
		"logistic.risk":         p.Logistic.Risk,
		"logistic.morale":       p.Logistic.Morale,
		"comparative.net":       p.Comparative.Net,
		"comparative.offense":   p.Comparative.Offense,
		"comparative.defense":   p.Comparative.Defense,
		"comparative.home_edge": p.Comparative.HomeEdge,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultSport == "":
		return fmt.Errorf("%w: default_sport must not be empty", ErrInvalidConfig)
	case c.Provider != ProviderMock && c.Provider != ProviderESPN:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.Confidence <= 0 || c.Confidence > 100:
		return fmt.Errorf("%w: confidence must be in (0, 100]", ErrInvalidConfig)
	case c.ESPNRPS < 0 || c.ESPNBurst < 0:
		return fmt.Errorf("%w: espn rate settings must not be negative", ErrInvalidConfig)
	case c.ESPNTimeout <= 0 || c.ProviderTimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsLatencyBuckets); i++ {
		if c.MetricsLatencyBuckets[i] <= c.MetricsLatencyBuckets[i-1] {
			return fmt.Errorf("%w: metrics_latency_buckets must be increasing", ErrInvalidConfig)
		}
	}
	for sport, p := range c.Profiles {
		if p.Confidence < 0 || p.Confidence > 100 {
			return fmt.Errorf("%w: profiles.%s.confidence must be in [0, 100]", ErrInvalidConfig, sport)
		}
	}
	return nil
}
