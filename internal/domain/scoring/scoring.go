// Package scoring turns canonical metrics into readiness and performance
// indices and ranks the levers that drive them.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/internal/domain/normalize"
)

const maxScoreValue = 100

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithProfile replaces the weight profile for one sport.
func WithProfile(sport model.Sport, p Profile) Option {
	return func(c *Calculator) {
		if sport != "" {
			c.profiles[sport] = p
		}
	}
}

// WithProfilesFromConfig installs complete configured profiles, replacing
// the built-in profile of the same sport. A zero Confidence inherits the
// calculator default (see WithDefaultConfidence).
func WithProfilesFromConfig(profiles map[string]Profile) Option {
	return func(c *Calculator) {
		for sport, p := range profiles {
			c.profiles[model.Sport(strings.ToLower(sport))] = p
		}
	}
}

// WithDefaultConfidence sets the confidence of profiles that carry none.
func WithDefaultConfidence(confidence float64) Option {
	return func(c *Calculator) {
		if confidence > 0 && confidence <= maxScoreValue {
			c.confidence = confidence
		}
	}
}

// WithConfidence overrides the data-tier confidence of every profile.
func WithConfidence(confidence float64) Option {
	return func(c *Calculator) {
		if confidence <= 0 || confidence > maxScoreValue {
			return
		}
		for sport, p := range c.profiles {
			p.Confidence = confidence
			c.profiles[sport] = p
		}
	}
}

// WithNormalizer sets the normalizer used to derive canonical metrics.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(c *Calculator) {
		if n != nil {
			c.normalizer = n
		}
	}
}

// Input abstracts what an index computation needs.
type Input struct {
	Sport model.Sport
	Stats model.GameStats
}

// Calculator computes IndexResults. It holds no mutable state after
// construction and is safe for concurrent use.
type Calculator struct {
	profiles   map[model.Sport]Profile
	normalizer *normalize.Normalizer
	confidence float64
}

// NewCalculator creates a calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		profiles:   DefaultProfiles(),
		normalizer: normalize.New(),
		confidence: defaultConfidence,
	}
	for _, opt := range opts {
		opt(c)
	}
	for sport, p := range c.profiles {
		if p.Confidence <= 0 {
			p.Confidence = c.confidence
			c.profiles[sport] = p
		}
	}
	return c
}

// Profile returns the weight profile for sport.
func (c *Calculator) Profile(sport model.Sport) (Profile, error) {
	p, ok := c.profiles[sport]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown sport %q", ErrInvalidConfiguration, sport)
	}
	return p, nil
}

// Normalizer returns the normalizer backing logistic computations.
func (c *Calculator) Normalizer() *normalize.Normalizer {
	return c.normalizer
}

// ComputeIndex scores in with the selected mode. The only failure is an
// unknown mode or sport, reported as ErrInvalidConfiguration.
func (c *Calculator) ComputeIndex(in Input, mode model.Mode) (model.IndexResult, error) {
	p, err := c.Profile(in.Sport)
	if err != nil {
		return model.IndexResult{}, err
	}
	switch mode {
	case model.ModeLogistic:
		res := c.logistic(p, c.normalizer.Normalize(in.Stats))
		res.Sport = in.Sport
		return res, nil
	case model.ModeComparative:
		res := c.comparative(p, in.Stats)
		res.Sport = in.Sport
		return res, nil
	default:
		return model.IndexResult{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfiguration, mode)
	}
}

// Logistic scores already-normalized metrics with the absolute model.
func (c *Calculator) Logistic(sport model.Sport, m model.CanonicalMetrics) (model.IndexResult, error) {
	p, err := c.Profile(sport)
	if err != nil {
		return model.IndexResult{}, err
	}
	res := c.logistic(p, m)
	res.Sport = sport
	return res, nil
}

func (c *Calculator) logistic(p Profile, m model.CanonicalMetrics) model.IndexResult {
	w := p.Logistic
	levers := []model.Lever{
		logisticLever(LeverPerformance, m.Performance, w.Performance),
		logisticLever(LeverFatigue, m.Fatigue, w.Fatigue),
		logisticLever(LeverRisk, m.Risk, w.Risk),
		logisticLever(LeverMorale, m.Morale, w.Morale),
	}

	lp := w.Intercept
	for _, l := range levers {
		lp += l.Contribution
	}
	probability := 1 / (1 + math.Exp(-lp))

	return model.IndexResult{
		Mode:       model.ModeLogistic,
		Score:      math.Round(probability * maxScoreValue),
		Confidence: p.Confidence,
		TopLevers:  RankLevers(levers, topLeverCount),
		Levers:     levers,
	}
}

func logisticLever(key string, value, coef float64) model.Lever {
	return newLever(key, coef*value,
		fmt.Sprintf("%s %.1f weighted at %+.2f", key, value, coef))
}

func (c *Calculator) comparative(p Profile, s model.GameStats) model.IndexResult {
	w := p.Comparative
	team, opp := s.Form, s.OpponentForm

	home := 0.0
	venue := "neutral venue"
	if !s.Neutral {
		if s.IsHome {
			home, venue = w.HomeEdge, "home"
		} else {
			home, venue = -w.HomeEdge, "away"
		}
	}

	levers := []model.Lever{
		newLever(LeverNetRating, w.Net*(team.NetRating-opp.NetRating),
			fmt.Sprintf("net rating %.1f vs %.1f weighted at %.2f", team.NetRating, opp.NetRating, w.Net)),
		newLever(LeverOffensiveForm, w.Offense*(team.OffRating-opp.OffRating),
			fmt.Sprintf("points scored %.1f vs %.1f weighted at %.2f", team.OffRating, opp.OffRating, w.Offense)),
		// Lower points allowed is better, so the opponent's figure leads.
		newLever(LeverDefensiveForm, w.Defense*(opp.DefRating-team.DefRating),
			fmt.Sprintf("points allowed %.1f vs %.1f weighted at %.2f", team.DefRating, opp.DefRating, w.Defense)),
		newLever(LeverHomeContext, home,
			fmt.Sprintf("%s adjustment of %.2f", venue, w.HomeEdge)),
	}

	edge := 0.0
	for _, l := range levers {
		edge += l.Contribution
	}

	return model.IndexResult{
		Mode:       model.ModeComparative,
		Edge:       edge,
		Favored:    favored(edge, s.TeamID, s.OpponentID),
		Confidence: p.Confidence,
		TopLevers:  []model.Lever{},
		Levers:     levers,
	}
}

func favored(edge float64, teamID, opponentID string) string {
	switch {
	case edge > 0:
		if teamID == "" {
			return "team"
		}
		return teamID
	case edge < 0:
		if opponentID == "" {
			return "opponent"
		}
		return opponentID
	default:
		return ""
	}
}
