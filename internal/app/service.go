// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/attrib/internal/adapters/provider"
	"github.com/okian/attrib/internal/domain/levers"
	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/internal/domain/scoring"
	"github.com/okian/attrib/pkg/logger"
	"github.com/okian/attrib/pkg/metrics"
)

const (
	defaultProviderTimeout = 15 * time.Second
	fallbackHome           = "home"
	fallbackAway           = "away"
)

// Service implements the API dependencies for the attribution engine.
// It holds no per-request state.
type Service struct {
	calc            *scoring.Calculator
	provider        provider.Provider
	defaultSport    model.Sport
	providerTimeout time.Duration
	logger          logger.Logger
	startedAt       time.Time

	computations    atomic.Int64
	classifications atomic.Int64
	fallbacks       atomic.Int64
	rejected        atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCalculator sets the index calculator.
func WithCalculator(c *scoring.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calc = c
		}
	}
}

// WithProvider sets the game-data provider.
func WithProvider(p provider.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithDefaultSport sets the sport used when a request names none.
func WithDefaultSport(sport string) Option {
	return func(s *Service) {
		if sport = strings.TrimSpace(sport); sport != "" {
			s.defaultSport = model.Sport(strings.ToLower(sport))
		}
	}
}

// WithProviderTimeout bounds each provider call.
func WithProviderTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.providerTimeout = d
		}
	}
}

// WithLogger sets the logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new service with the given options.
func New(opts ...Option) *Service {
	s := &Service{
		defaultSport:    model.SportNBA,
		providerTimeout: defaultProviderTimeout,
		startedAt:       time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.calc == nil {
		s.calc = scoring.NewCalculator()
	}
	if s.provider == nil {
		s.provider = provider.NewMock()
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	return s
}

// ResolveSport maps a request value onto a sport, using the default when empty.
func (s *Service) ResolveSport(v string) model.Sport {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return s.defaultSport
	}
	return model.Sport(v)
}

// ComputeIndex scores caller-supplied statistics.
func (s *Service) ComputeIndex(ctx context.Context, sport model.Sport, mode model.Mode, stats model.GameStats) (model.IndexResult, error) {
	start := time.Now()
	res, err := s.calc.ComputeIndex(scoring.Input{Sport: sport, Stats: stats}, mode)
	if err != nil {
		s.reject(ctx, err, sport, mode)
		return model.IndexResult{}, err
	}
	s.observe(res, start)
	return res, nil
}

// ClassifyLevers compares observed levers against the expected set.
func (s *Service) ClassifyLevers(_ context.Context, expected, observed []model.Lever) []model.LeverWithStatus {
	out := levers.Classify(expected, observed)
	for _, l := range out {
		metrics.RecordLeverStatus(string(l.Status))
	}
	s.classifications.Add(int64(len(out)))
	return out
}

// Readiness computes the pre-game readiness index of a team.
func (s *Service) Readiness(ctx context.Context, sport model.Sport, gameID, teamID string) (model.ReadinessReport, error) {
	if _, err := s.calc.Profile(sport); err != nil {
		s.reject(ctx, err, sport, model.ModeLogistic)
		return model.ReadinessReport{}, err
	}

	start := time.Now()
	stats, fallback := s.fetchStats(ctx, sport, gameID, teamID, model.PhasePreGame)
	m := s.calc.Normalizer().Normalize(stats)
	res, err := s.calc.Logistic(sport, m)
	if err != nil {
		return model.ReadinessReport{}, err
	}
	s.observe(res, start)

	return model.ReadinessReport{
		GameID:   gameID,
		TeamID:   teamID,
		Stats:    stats,
		Metrics:  m,
		Index:    res,
		Fallback: fallback,
	}, nil
}

// Performance computes the post-game performance index of a team. The
// readiness index is recomputed from pre-game stats so nothing needs to be
// stored between the two.
func (s *Service) Performance(ctx context.Context, sport model.Sport, gameID, teamID string) (model.PerformanceReport, error) {
	ready, err := s.Readiness(ctx, sport, gameID, teamID)
	if err != nil {
		return model.PerformanceReport{}, err
	}

	start := time.Now()
	stats, fallback := s.fetchStats(ctx, sport, gameID, teamID, model.PhasePostGame)
	m := s.calc.Normalizer().Normalize(stats)
	res, err := s.calc.Logistic(sport, m)
	if err != nil {
		return model.PerformanceReport{}, err
	}
	s.observe(res, start)

	return model.PerformanceReport{
		GameID:      gameID,
		TeamID:      teamID,
		Stats:       stats,
		Metrics:     m,
		Readiness:   ready.Index,
		Performance: res,
		Levers:      s.ClassifyLevers(ctx, ready.Index.TopLevers, res.TopLevers),
		Fallback:    fallback || ready.Fallback,
	}, nil
}

// Matchup computes the comparative edge of the home team. Both teams'
// stats are fetched in parallel.
func (s *Service) Matchup(ctx context.Context, sport model.Sport, gameID string) (model.MatchupReport, error) {
	if _, err := s.calc.Profile(sport); err != nil {
		s.reject(ctx, err, sport, model.ModeComparative)
		return model.MatchupReport{}, err
	}

	start := time.Now()
	mu, fallback := s.fetchMatchup(ctx, sport, gameID)

	var (
		wg                     sync.WaitGroup
		home, away             model.GameStats
		homeFallback, awayFall bool
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		home, homeFallback = s.fetchStats(ctx, sport, gameID, mu.HomeTeamID, model.PhasePreGame)
	}()
	go func() {
		defer wg.Done()
		away, awayFall = s.fetchStats(ctx, sport, gameID, mu.AwayTeamID, model.PhasePreGame)
	}()
	wg.Wait()

	in := home
	in.TeamID = mu.HomeTeamID
	in.OpponentID = mu.AwayTeamID
	in.IsHome = true
	in.Neutral = mu.Neutral
	in.OpponentForm = away.Form

	res, err := s.calc.ComputeIndex(scoring.Input{Sport: sport, Stats: in}, model.ModeComparative)
	if err != nil {
		return model.MatchupReport{}, err
	}
	s.observe(res, start)

	return model.MatchupReport{
		Matchup:  mu,
		Index:    res,
		Fallback: fallback || homeFallback || awayFall,
	}, nil
}

// MasterLevers returns the versioned lever list.
func (s *Service) MasterLevers() scoring.Catalog {
	return scoring.MasterCatalog()
}

// GetStats returns service statistics.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"provider":             s.provider.Name(),
		"default_sport":        string(s.defaultSport),
		"lever_version":        scoring.MasterVersion,
		"uptime_seconds":       int64(time.Since(s.startedAt).Seconds()),
		"index_computations":   s.computations.Load(),
		"levers_classified":    s.classifications.Load(),
		"provider_fallbacks":   s.fallbacks.Load(),
		"rejected_computation": s.rejected.Load(),
	}
}

// fetchStats never fails: a provider error degrades to an empty record,
// which the normalizer fills with defaults and a neutral context.
func (s *Service) fetchStats(ctx context.Context, sport model.Sport, gameID, teamID string, phase model.Phase) (model.GameStats, bool) {
	cctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	stats, err := s.provider.TeamStats(cctx, sport, gameID, teamID, phase)
	if err != nil {
		s.fallback(ctx, err,
			logger.String("gameID", gameID),
			logger.String("teamID", teamID),
			logger.String("phase", string(phase)))
		return model.GameStats{TeamID: teamID, GameID: gameID}, true
	}
	return stats, false
}

func (s *Service) fetchMatchup(ctx context.Context, sport model.Sport, gameID string) (model.Matchup, bool) {
	cctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	mu, err := s.provider.Matchup(cctx, sport, gameID)
	if err != nil {
		s.fallback(ctx, err, logger.String("gameID", gameID))
		return model.Matchup{GameID: gameID, HomeTeamID: fallbackHome, AwayTeamID: fallbackAway}, true
	}
	return mu, false
}

func (s *Service) fallback(ctx context.Context, err error, fields ...logger.Field) {
	s.fallbacks.Add(1)
	metrics.RecordProviderFallback(s.provider.Name())
	fields = append(fields, logger.String("provider", s.provider.Name()), logger.Error(err))
	s.logger.Warn(ctx, "provider failed, scoring default inputs", fields...)
}

func (s *Service) observe(res model.IndexResult, start time.Time) {
	s.computations.Add(1)
	sport := string(res.Sport)
	metrics.RecordIndexComputation(string(res.Mode), sport)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if res.Mode == model.ModeComparative {
		metrics.ObserveComparativeEdge(sport, res.Edge)
		return
	}
	metrics.ObserveIndexScore(sport, res.Score)
}

func (s *Service) reject(ctx context.Context, err error, sport model.Sport, mode model.Mode) {
	s.rejected.Add(1)
	reason := "internal"
	if errors.Is(err, scoring.ErrInvalidConfiguration) {
		reason = "invalid_configuration"
	}
	metrics.RecordIndexError(reason)
	s.logger.Debug(ctx, "index computation rejected",
		logger.String("sport", string(sport)),
		logger.String("mode", string(mode)),
		logger.Error(fmt.Errorf("compute index: %w", err)))
}
