package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/pkg/metrics"
)

const (
	mockName       = "mock"
	recentWindow   = 5
	maxDaysRest    = 4
	maxInjuries    = 4
	neutralOneInN  = 20
	contextSection = "context"
	formSection    = "form"
)

// scoreRange bounds per-game points scored for a sport.
type scoreRange struct{ lo, hi float64 }

func defaultMockTeams() map[model.Sport][]string {
	return map[model.Sport][]string{
		model.SportNBA:    {"ATL", "BOS", "BKN", "CHI", "DAL", "DEN", "GSW", "LAL", "MIA", "MIL", "NYK", "PHX"},
		model.SportNFL:    {"BUF", "DAL", "DET", "GB", "KC", "PHI", "SF", "BAL"},
		model.SportSoccer: {"ARS", "AVL", "CHE", "LIV", "MCI", "MUN", "NEW", "TOT"},
	}
}

// fallbackScoring applies to sports added with WithTeams but no range.
var fallbackScoring = scoreRange{lo: 10, hi: 30} //nolint:gochecknoglobals // generator constant

func defaultMockScoring() map[model.Sport]scoreRange {
	return map[model.Sport]scoreRange{
		model.SportNBA:    {lo: 100, hi: 125},
		model.SportNFL:    {lo: 14, hi: 34},
		model.SportSoccer: {lo: 0.5, hi: 2.5},
	}
}

// Mock generates plausible game data. Output is a pure function of the
// seed and the request, so repeated calls agree and no state is shared.
type Mock struct {
	seed    int64
	teams   map[model.Sport][]string
	scoring map[model.Sport]scoreRange
	latency time.Duration
}

// NewMock creates a mock provider.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{teams: defaultMockTeams(), scoring: defaultMockScoring()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements Provider.
func (m *Mock) Name() string { return mockName }

// Matchup implements Provider.
func (m *Mock) Matchup(ctx context.Context, sport model.Sport, gameID string) (mu model.Matchup, err error) {
	start := time.Now()
	defer func() { m.record(start, err) }()

	if err = m.wait(ctx); err != nil {
		return model.Matchup{}, err
	}
	return m.matchup(sport, gameID)
}

// TeamStats implements Provider.
func (m *Mock) TeamStats(ctx context.Context, sport model.Sport, gameID, teamID string, phase model.Phase) (stats model.GameStats, err error) {
	start := time.Now()
	defer func() { m.record(start, err) }()

	if err = m.wait(ctx); err != nil {
		return model.GameStats{}, err
	}
	mu, err := m.matchup(sport, gameID)
	if err != nil {
		return model.GameStats{}, err
	}

	var opponentID string
	switch teamID {
	case mu.HomeTeamID:
		opponentID = mu.AwayTeamID
	case mu.AwayTeamID:
		opponentID = mu.HomeTeamID
	default:
		return model.GameStats{}, fmt.Errorf("%w: %s in %s", ErrTeamNotInGame, teamID, gameID)
	}

	stats = model.GameStats{
		TeamID:     teamID,
		GameID:     gameID,
		OpponentID: opponentID,
		IsHome:     teamID == mu.HomeTeamID,
		Neutral:    mu.Neutral,
	}
	m.applyBox(&stats, m.rng(gameID, teamID, string(phase)))
	m.applyContext(&stats, m.rng(gameID, teamID, contextSection))
	stats.Form = m.form(sport, m.rng(gameID, teamID, formSection))
	stats.OpponentForm = m.form(sport, m.rng(gameID, opponentID, formSection))
	return stats, nil
}

func (m *Mock) matchup(sport model.Sport, gameID string) (model.Matchup, error) {
	teams, ok := m.teams[sport]
	if !ok {
		return model.Matchup{}, fmt.Errorf("%w: %q", ErrUnsupportedSport, sport)
	}
	if gameID == "" {
		return model.Matchup{}, fmt.Errorf("%w: empty game id", ErrGameNotFound)
	}

	r := m.rng(gameID, string(sport))
	home := r.Intn(len(teams))
	away := (home + 1 + r.Intn(len(teams)-1)) % len(teams)
	return model.Matchup{
		GameID:     gameID,
		HomeTeamID: teams[home],
		AwayTeamID: teams[away],
		Neutral:    r.Intn(neutralOneInN) == 0,
	}, nil
}

func (m *Mock) applyBox(s *model.GameStats, r *rand.Rand) {
	s.FieldGoalPct = between(r, 40, 52)
	s.ThreePointPct = between(r, 30, 42)
	s.FreeThrowPct = between(r, 70, 88)
	s.Assists = math.Round(between(r, 18, 32))
	s.Turnovers = math.Round(between(r, 8, 18))
	s.Rebounds = math.Round(between(r, 38, 52))
	s.AvgMinutes = between(r, 30, 40)
}

func (m *Mock) applyContext(s *model.GameStats, r *rand.Rand) {
	s.DaysRest = r.Intn(maxDaysRest)
	s.IsBackToBack = s.DaysRest == 0
	s.InjuryCount = r.Intn(maxInjuries)
	s.HistoryGames = recentWindow

	// Newest result first.
	results := make([]bool, recentWindow)
	for i := range results {
		results[i] = r.Intn(2) == 0
		if results[i] {
			s.Last5Wins++
		}
	}
	for _, won := range results {
		if won != results[0] {
			break
		}
		if won {
			s.WinStreak++
		} else {
			s.WinStreak--
		}
	}
}

func (m *Mock) form(sport model.Sport, r *rand.Rand) model.FormLine {
	sr, ok := m.scoring[sport]
	if !ok {
		sr = fallbackScoring
	}
	off := between(r, sr.lo, sr.hi)
	def := between(r, sr.lo, sr.hi)
	return model.FormLine{NetRating: off - def, OffRating: off, DefRating: def}
}

// rng derives an independent generator for one slice of a request.
func (m *Mock) rng(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return rand.New(rand.NewSource(m.seed ^ int64(h.Sum64()))) //nolint:gosec // synthetic data only
}

func (m *Mock) wait(ctx context.Context) error {
	if m.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		return nil
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrUpstream, ctx.Err())
	case <-t.C:
		return nil
	}
}

func (m *Mock) record(start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordProviderRequest(mockName, outcome, float64(time.Since(start).Microseconds())/1000)
}

// between draws uniformly from [lo, hi) rounded to one decimal.
func between(r *rand.Rand, lo, hi float64) float64 {
	return math.Round((lo+r.Float64()*(hi-lo))*10) / 10
}
