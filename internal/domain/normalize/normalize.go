// Package normalize maps raw game statistics onto the canonical metrics.
//
// Every formula here is fixed; weights must not drift between the
// pre-game and post-game passes or lever comparisons stop being meaningful.
package normalize

import (
	"math"

	"github.com/okian/attrib/internal/domain/model"
)

// Built-in fallbacks for missing box-score inputs.
const (
	defaultFieldGoalPct  = 45.0
	defaultThreePointPct = 35.0
	defaultFreeThrowPct  = 77.0
	defaultAssists       = 24.0
	defaultTurnovers     = 13.0
	defaultRebounds      = 44.0
)

// Neutral single-game context used when no history is available.
const (
	neutralDaysRest = 1
)

const (
	turnoverEpsilon = 1e-9
	reboundBaseline = 50.0
	assistRatioMul  = 50.0
	streakBase      = 60.0
	streakStep      = 13.3
	homeMorale      = 80.0
	awayMorale      = 40.0
	injuryStep      = 30.0
	cap             = 100.0
)

// Defaults holds the fallback value for each box-score input that a
// provider may leave at zero.
type Defaults struct {
	FieldGoalPct  float64 `koanf:"fg_pct" json:"fg_pct"`
	ThreePointPct float64 `koanf:"three_pct" json:"three_pct"`
	FreeThrowPct  float64 `koanf:"ft_pct" json:"ft_pct"`
	Assists       float64 `koanf:"assists" json:"assists"`
	Turnovers     float64 `koanf:"turnovers" json:"turnovers"`
	Rebounds      float64 `koanf:"rebounds" json:"rebounds"`
}

// DefaultInputs returns the built-in fallbacks.
func DefaultInputs() Defaults {
	return Defaults{
		FieldGoalPct:  defaultFieldGoalPct,
		ThreePointPct: defaultThreePointPct,
		FreeThrowPct:  defaultFreeThrowPct,
		Assists:       defaultAssists,
		Turnovers:     defaultTurnovers,
		Rebounds:      defaultRebounds,
	}
}

// Breakdown exposes every intermediate term of the four formulas.
type Breakdown struct {
	Shooting     float64 `json:"shooting"`      // fg*0.5 + three*0.3 + ft*0.2
	BallMovement float64 `json:"ball_movement"` // min(100, ast/tov*50)
	Rebounding   float64 `json:"rebounding"`    // min(100, reb/50*100)

	RestScore  float64 `json:"rest_score"`
	BackToBack float64 `json:"back_to_back"`

	InjuryLoad      float64 `json:"injury_load"`
	MinutesOverload float64 `json:"minutes_overload"`

	StreakMorale float64 `json:"streak_morale"`
	VenueMorale  float64 `json:"venue_morale"`
	FormMorale   float64 `json:"form_morale"`

	Metrics model.CanonicalMetrics `json:"metrics"`
}

// Normalizer converts GameStats into CanonicalMetrics. It is stateless
// beyond its defaults and safe for concurrent use.
type Normalizer struct {
	defaults Defaults
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{defaults: DefaultInputs()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Defaults returns the fallbacks in effect.
func (n *Normalizer) Defaults() Defaults {
	return n.defaults
}

// Normalize maps stats onto the canonical dimensions.
func (n *Normalizer) Normalize(s model.GameStats) model.CanonicalMetrics {
	return n.Explain(s).Metrics
}

// Explain computes the canonical dimensions and keeps the intermediate terms.
func (n *Normalizer) Explain(s model.GameStats) Breakdown {
	s = n.fill(s)

	var b Breakdown
	b.Shooting = s.FieldGoalPct*0.5 + s.ThreePointPct*0.3 + s.FreeThrowPct*0.2
	b.BallMovement = math.Min(cap, s.Assists/math.Max(s.Turnovers, turnoverEpsilon)*assistRatioMul)
	b.Rebounding = math.Min(cap, s.Rebounds/reboundBaseline*cap)
	performance := b.Shooting*0.4 + b.BallMovement*0.3 + b.Rebounding*0.3

	b.RestScore = restScore(s.DaysRest)
	if s.IsBackToBack {
		b.BackToBack = cap
	}
	fatigue := b.RestScore*0.6 + b.BackToBack*0.4

	b.InjuryLoad = math.Min(cap, float64(s.InjuryCount)*injuryStep)
	b.MinutesOverload = minutesOverload(s.AvgMinutes)
	risk := b.InjuryLoad*0.6 + b.MinutesOverload*0.4

	b.StreakMorale = model.Clamp(streakBase+float64(s.WinStreak)*streakStep, 0, cap)
	b.VenueMorale = awayMorale
	if s.IsHome {
		b.VenueMorale = homeMorale
	}
	b.FormMorale = float64(s.Last5Wins) / 5 * cap
	morale := b.StreakMorale*0.5 + b.VenueMorale*0.3 + b.FormMorale*0.2

	b.Metrics = model.NewCanonicalMetrics(performance, fatigue, risk, morale)
	return b
}

// fill substitutes defaults for missing inputs and the neutral context
// when the team has no usable history.
func (n *Normalizer) fill(s model.GameStats) model.GameStats {
	if s.FieldGoalPct == 0 {
		s.FieldGoalPct = n.defaults.FieldGoalPct
	}
	if s.ThreePointPct == 0 {
		s.ThreePointPct = n.defaults.ThreePointPct
	}
	if s.FreeThrowPct == 0 {
		s.FreeThrowPct = n.defaults.FreeThrowPct
	}
	if s.Assists == 0 {
		s.Assists = n.defaults.Assists
	}
	if s.Turnovers == 0 {
		s.Turnovers = n.defaults.Turnovers
	}
	if s.Rebounds == 0 {
		s.Rebounds = n.defaults.Rebounds
	}
	if s.HistoryGames < 1 {
		s.DaysRest = neutralDaysRest
		s.IsBackToBack = false
		s.InjuryCount = 0
	}
	return s
}

func restScore(daysRest int) float64 {
	switch {
	case daysRest <= 0:
		return 100
	case daysRest == 1:
		return 60
	case daysRest == 2:
		return 30
	default:
		return 10
	}
}

func minutesOverload(avgMinutes float64) float64 {
	switch {
	case avgMinutes > 38:
		return 80
	case avgMinutes > 36:
		return 50
	case avgMinutes > 34:
		return 20
	default:
		return 0
	}
}
