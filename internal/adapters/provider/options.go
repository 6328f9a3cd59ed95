package provider

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/pkg/logger"
)

// ESPNOption applies a configuration option to the ESPN provider.
type ESPNOption func(*ESPN)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) ESPNOption {
	return func(e *ESPN) {
		if u != "" {
			e.baseURL = u
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) ESPNOption {
	return func(e *ESPN) {
		if c != nil {
			e.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ESPNOption {
	return func(e *ESPN) {
		if d > 0 {
			e.client = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit caps outbound requests per second. A non-positive rps
// disables limiting.
func WithRateLimit(rps float64, burst int) ESPNOption {
	return func(e *ESPN) {
		if rps <= 0 {
			e.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker configures the circuit breaker. Zero values keep defaults.
func WithBreaker(maxRequests uint32, timeout time.Duration, failures uint32) ESPNOption {
	return func(e *ESPN) {
		if maxRequests > 0 {
			e.breakerMaxRequests = maxRequests
		}
		if timeout > 0 {
			e.breakerTimeout = timeout
		}
		if failures > 0 {
			e.breakerFailures = failures
		}
	}
}

// WithSportPath maps a sport to an ESPN path such as "soccer/esp.1".
func WithSportPath(sport model.Sport, path string) ESPNOption {
	return func(e *ESPN) {
		if sport != "" && path != "" {
			e.sportPaths[sport] = path
		}
	}
}

// WithESPNLogger sets the logger.
func WithESPNLogger(l logger.Logger) ESPNOption {
	return func(e *ESPN) {
		if l != nil {
			e.log = l
		}
	}
}

// MockOption applies a configuration option to the Mock provider.
type MockOption func(*Mock)

// WithSeed sets the generator seed.
func WithSeed(seed int64) MockOption {
	return func(m *Mock) {
		m.seed = seed
	}
}

// WithTeams replaces the team pool of one sport.
func WithTeams(sport model.Sport, teams []string) MockOption {
	return func(m *Mock) {
		if len(teams) >= 2 {
			m.teams[sport] = append([]string(nil), teams...)
		}
	}
}

// WithScoreRange sets the per-game points range used for the recent form of
// one sport. Sports without a range use a generic one.
func WithScoreRange(sport model.Sport, lo, hi float64) MockOption {
	return func(m *Mock) {
		if lo >= 0 && hi > lo {
			m.scoring[sport] = scoreRange{lo: lo, hi: hi}
		}
	}
}

// WithLatency makes every call wait d, honoring context cancellation.
func WithLatency(d time.Duration) MockOption {
	return func(m *Mock) {
		if d > 0 {
			m.latency = d
		}
	}
}
