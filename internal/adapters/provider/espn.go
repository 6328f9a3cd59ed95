package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/pkg/logger"
	"github.com/okian/attrib/pkg/metrics"
)

const (
	espnName = "espn"

	defaultESPNBaseURL     = "https://site.api.espn.com/apis/site/v2/sports"
	defaultESPNTimeout     = 10 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	defaultBreakerHalfOpen = 1
	percentScale           = 100
	hoursPerDay            = 24
	homeSide               = "home"
	recentResultWin        = "W"
	recentResultLoss       = "L"
)

// errAbandoned marks a request that ended because the caller's context was
// cancelled or ran out of time. The breaker does not count it.
var errAbandoned = errors.New("request abandoned by caller")

var espnDateLayouts = []string{ //nolint:gochecknoglobals // parse table
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02",
}

// DefaultSportPaths maps sports to ESPN URL path segments.
func DefaultSportPaths() map[model.Sport]string {
	return map[model.Sport]string{
		model.SportNBA:    "basketball/nba",
		model.SportNFL:    "football/nfl",
		model.SportSoccer: "soccer/eng.1",
	}
}

// ESPN reads game summaries from ESPN's public site API.
type ESPN struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	sportPaths map[model.Sport]string
	log        logger.Logger

	breakerMaxRequests uint32
	breakerTimeout     time.Duration
	breakerFailures    uint32
}

// NewESPN creates an ESPN provider.
func NewESPN(opts ...ESPNOption) *ESPN {
	e := &ESPN{
		baseURL:            defaultESPNBaseURL,
		client:             &http.Client{Timeout: defaultESPNTimeout},
		sportPaths:         DefaultSportPaths(),
		log:                logger.Nop(),
		breakerMaxRequests: defaultBreakerHalfOpen,
		breakerTimeout:     defaultBreakerTimeout,
		breakerFailures:    defaultBreakerFailures,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        espnName,
		MaxRequests: e.breakerMaxRequests,
		Timeout:     e.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= e.breakerFailures
		},
		// A missing game or an abandoned request says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrGameNotFound) || errors.Is(err, errAbandoned)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.log.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
			metrics.UpdateBreakerState(name, breakerStateValue(to))
		},
	})
	metrics.UpdateBreakerState(espnName, metrics.BreakerClosed)
	return e
}

// Name implements Provider.
func (e *ESPN) Name() string { return espnName }

// Matchup implements Provider.
func (e *ESPN) Matchup(ctx context.Context, sport model.Sport, gameID string) (model.Matchup, error) {
	s, err := e.fetchSummary(ctx, sport, gameID)
	if err != nil {
		return model.Matchup{}, err
	}
	comp, err := competition(s, gameID)
	if err != nil {
		return model.Matchup{}, err
	}

	m := model.Matchup{GameID: gameID, Neutral: comp.NeutralSite}
	for _, c := range comp.Competitors {
		if c.HomeAway == homeSide {
			m.HomeTeamID = teamKey(c)
		} else {
			m.AwayTeamID = teamKey(c)
		}
	}
	if m.HomeTeamID == "" || m.AwayTeamID == "" {
		return model.Matchup{}, fmt.Errorf("%w: %s has no home/away pair", ErrGameNotFound, gameID)
	}
	return m, nil
}

// TeamStats implements Provider. Pre-game stats never read the box score,
// so a finished game cannot leak its result into a readiness index.
func (e *ESPN) TeamStats(ctx context.Context, sport model.Sport, gameID, teamID string, phase model.Phase) (model.GameStats, error) {
	s, err := e.fetchSummary(ctx, sport, gameID)
	if err != nil {
		return model.GameStats{}, err
	}
	comp, err := competition(s, gameID)
	if err != nil {
		return model.GameStats{}, err
	}

	team, opp, ok := sides(comp, teamID)
	if !ok {
		return model.GameStats{}, fmt.Errorf("%w: %s in %s", ErrTeamNotInGame, teamID, gameID)
	}

	stats := model.GameStats{
		TeamID:     teamKey(team),
		GameID:     gameID,
		OpponentID: teamKey(opp),
		IsHome:     team.HomeAway == homeSide,
		Neutral:    comp.NeutralSite,
	}

	if phase == model.PhasePostGame {
		applyBoxscore(&stats, s, team.Team.ID)
	}

	gameDate, _ := parseESPNDate(comp.Date)
	recent := recentGames(s, team.Team.ID, gameDate)
	applyRecentForm(&stats, recent, team.Team.ID, gameDate)
	stats.OpponentForm = formLine(recentGames(s, opp.Team.ID, gameDate), opp.Team.ID)
	stats.InjuryCount = injuryCount(s, team.Team.ID)

	return stats, nil
}

func (e *ESPN) fetchSummary(ctx context.Context, sport model.Sport, gameID string) (*espnSummary, error) {
	path, ok := e.sportPaths[sport]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSport, sport)
	}
	if gameID == "" {
		return nil, fmt.Errorf("%w: empty game id", ErrGameNotFound)
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %w", ErrUpstream, err)
		}
	}

	u := fmt.Sprintf("%s/%s/summary?event=%s", strings.TrimRight(e.baseURL, "/"), path, url.QueryEscape(gameID))

	start := time.Now()
	out, err := e.breaker.Execute(func() (interface{}, error) {
		s, err := e.get(ctx, u)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w: %w", errAbandoned, ctx.Err(), err)
		}
		return s, err
	})
	latencyMs := float64(time.Since(start).Microseconds()) / 1000

	if errors.Is(err, errAbandoned) {
		metrics.RecordProviderRequest(espnName, "abandoned", latencyMs)
		return nil, err
	}
	if err != nil {
		metrics.RecordProviderRequest(espnName, "error", latencyMs)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}
	metrics.RecordProviderRequest(espnName, "ok", latencyMs)

	e.log.Debug(ctx, "fetched summary",
		logger.String("sport", string(sport)),
		logger.String("gameID", gameID),
		logger.Float64("latencyMs", latencyMs))
	return out.(*espnSummary), nil
}

func (e *ESPN) get(ctx context.Context, u string) (*espnSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrGameNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var s espnSummary
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: decode summary: %w", ErrUpstream, err)
	}
	return &s, nil
}

func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	default:
		return metrics.BreakerClosed
	}
}

func competition(s *espnSummary, gameID string) (espnCompetition, error) {
	if len(s.Header.Competitions) == 0 {
		return espnCompetition{}, fmt.Errorf("%w: %s has no competitions", ErrGameNotFound, gameID)
	}
	return s.Header.Competitions[0], nil
}

// sides finds teamID among the competitors by id or abbreviation.
func sides(comp espnCompetition, teamID string) (team, opp espnCompetitor, ok bool) {
	idx := -1
	for i, c := range comp.Competitors {
		if c.Team.ID == teamID || c.ID == teamID || strings.EqualFold(c.Team.Abbreviation, teamID) {
			idx = i
			break
		}
	}
	if idx < 0 || len(comp.Competitors) != 2 {
		return espnCompetitor{}, espnCompetitor{}, false
	}
	return comp.Competitors[idx], comp.Competitors[1-idx], true
}

func teamKey(c espnCompetitor) string {
	if c.Team.ID != "" {
		return c.Team.ID
	}
	return c.ID
}

func applyBoxscore(stats *model.GameStats, s *espnSummary, teamID string) {
	for _, bt := range s.Boxscore.Teams {
		if bt.Team.ID != teamID {
			continue
		}
		for _, st := range bt.Statistics {
			v, ok := parseStat(st.DisplayValue)
			if !ok {
				continue
			}
			switch st.Name {
			case "fieldGoalPct":
				stats.FieldGoalPct = percent(v)
			case "threePointFieldGoalPct":
				stats.ThreePointPct = percent(v)
			case "freeThrowPct":
				stats.FreeThrowPct = percent(v)
			case "assists":
				stats.Assists = v
			case "turnovers", "totalTurnovers":
				stats.Turnovers = v
			case "totalRebounds", "rebounds":
				stats.Rebounds = v
			}
		}
		return
	}
}

// recentGames returns teamID's games before the given date, newest first.
func recentGames(s *espnSummary, teamID string, before time.Time) []espnRecentGame {
	var out []espnRecentGame
	for _, tg := range s.LastFiveGames {
		if tg.Team.ID != teamID {
			continue
		}
		for _, g := range tg.Events {
			d, ok := parseESPNDate(g.GameDate)
			if ok && !before.IsZero() && !d.Before(before) {
				continue
			}
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := parseESPNDate(out[i].GameDate)
		dj, _ := parseESPNDate(out[j].GameDate)
		return di.After(dj)
	})
	return out
}

func applyRecentForm(stats *model.GameStats, recent []espnRecentGame, teamID string, gameDate time.Time) {
	stats.HistoryGames = len(recent)
	if len(recent) == 0 {
		return
	}

	for _, g := range recent {
		if g.GameResult == recentResultWin {
			stats.Last5Wins++
		}
	}
	stats.WinStreak = streak(recent)

	last, ok := parseESPNDate(recent[0].GameDate)
	if ok && !gameDate.IsZero() {
		days := int(gameDate.Sub(last).Hours()/hoursPerDay) - 1
		if days < 0 {
			days = 0
		}
		stats.DaysRest = days
		stats.IsBackToBack = days == 0
	}
	stats.Form = formLine(recent, teamID)
}

// streak is positive for consecutive wins and negative for losses.
func streak(recent []espnRecentGame) int {
	n := 0
	first := recent[0].GameResult
	for _, g := range recent {
		if g.GameResult != first {
			break
		}
		n++
	}
	switch first {
	case recentResultWin:
		return n
	case recentResultLoss:
		return -n
	default:
		return 0
	}
}

func formLine(recent []espnRecentGame, teamID string) model.FormLine {
	var scored, allowed float64
	var n int
	for _, g := range recent {
		home, okHome := parseStat(g.HomeTeamScore)
		away, okAway := parseStat(g.AwayTeamScore)
		if !okHome || !okAway {
			continue
		}
		switch teamID {
		case g.HomeTeamID:
			scored, allowed = scored+home, allowed+away
		case g.AwayTeamID:
			scored, allowed = scored+away, allowed+home
		default:
			continue
		}
		n++
	}
	if n == 0 {
		return model.FormLine{}
	}
	off, def := scored/float64(n), allowed/float64(n)
	return model.FormLine{NetRating: off - def, OffRating: off, DefRating: def}
}

func injuryCount(s *espnSummary, teamID string) int {
	for _, ti := range s.Injuries {
		if ti.Team.ID == teamID {
			return len(ti.Injuries)
		}
	}
	return 0
}

func parseStat(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "%"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// percent accepts both 0.465 and 46.5 style values.
func percent(v float64) float64 {
	if v > 0 && v <= 1 {
		return v * percentScale
	}
	return v
}

func parseESPNDate(v string) (time.Time, bool) {
	for _, layout := range espnDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
