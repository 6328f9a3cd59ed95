package scoring

import "github.com/okian/attrib/internal/domain/model"

// Default model parameters.
const (
	defaultIntercept       = -4.0
	defaultPerformanceCoef = 0.06
	defaultFatigueCoef     = -0.05
	defaultRiskCoef        = -0.04
	defaultMoraleCoef      = 0.05
	defaultNetWeight       = 0.5
	defaultOffenseWeight   = 0.3
	defaultDefenseWeight   = 0.3
	defaultConfidence      = 65.0 // public-data-only provenance
	defaultNBAHomeEdge     = 2.5
	defaultNFLHomeEdge     = 1.5
	defaultSoccerHomeEdge  = 0.3
)

// LogisticWeights are the signed coefficients of the absolute index.
type LogisticWeights struct {
	Intercept   float64 `koanf:"intercept" json:"intercept"`
	Performance float64 `koanf:"performance" json:"performance"`
	Fatigue     float64 `koanf:"fatigue" json:"fatigue"`
	Risk        float64 `koanf:"risk" json:"risk"`
	Morale      float64 `koanf:"morale" json:"morale"`
}

// ComparativeWeights drive the team-vs-opponent edge. HomeEdge is added
// as-is and is not a 0-1 weight.
type ComparativeWeights struct {
	Net      float64 `koanf:"net" json:"net"`
	Offense  float64 `koanf:"offense" json:"offense"`
	Defense  float64 `koanf:"defense" json:"defense"`
	HomeEdge float64 `koanf:"home_edge" json:"home_edge"`
}

// Profile is the per-sport weight configuration.
type Profile struct {
	Logistic    LogisticWeights    `koanf:"logistic" json:"logistic"`
	Comparative ComparativeWeights `koanf:"comparative" json:"comparative"`
	Confidence  float64            `koanf:"confidence" json:"confidence"`
}

func baseProfile(homeEdge float64) Profile {
	return Profile{
		Logistic: LogisticWeights{
			Intercept:   defaultIntercept,
			Performance: defaultPerformanceCoef,
			Fatigue:     defaultFatigueCoef,
			Risk:        defaultRiskCoef,
			Morale:      defaultMoraleCoef,
		},
		Comparative: ComparativeWeights{
			Net:      defaultNetWeight,
			Offense:  defaultOffenseWeight,
			Defense:  defaultDefenseWeight,
			HomeEdge: homeEdge,
		},
		Confidence: defaultConfidence,
	}
}

// DefaultProfiles returns the built-in profile for every supported sport.
// Only the home constant differs between sports.
func DefaultProfiles() map[model.Sport]Profile {
	return map[model.Sport]Profile{
		model.SportNBA:    baseProfile(defaultNBAHomeEdge),
		model.SportNFL:    baseProfile(defaultNFLHomeEdge),
		model.SportSoccer: baseProfile(defaultSoccerHomeEdge),
	}
}

// DefaultProfile returns the built-in profile for sport. A sport without
// one gets the shared weights and no home edge.
func DefaultProfile(sport model.Sport) Profile {
	if p, ok := DefaultProfiles()[sport]; ok {
		return p
	}
	return baseProfile(0)
}
