package model

import "math"

const (
	metricFloor   = 0.0
	metricCeiling = 100.0
)

// CanonicalMetrics are the four 0-100 dimensions every index is built from.
// Construct with NewCanonicalMetrics so each field is clamped.
type CanonicalMetrics struct {
	Performance float64 `json:"performance"`
	Fatigue     float64 `json:"fatigue"`
	Risk        float64 `json:"risk"`
	Morale      float64 `json:"morale"`
}

// NewCanonicalMetrics clamps every dimension to [0,100].
func NewCanonicalMetrics(performance, fatigue, risk, morale float64) CanonicalMetrics {
	return CanonicalMetrics{
		Performance: Clamp(performance, metricFloor, metricCeiling),
		Fatigue:     Clamp(fatigue, metricFloor, metricCeiling),
		Risk:        Clamp(risk, metricFloor, metricCeiling),
		Morale:      Clamp(morale, metricFloor, metricCeiling),
	}
}

// Clamp bounds v to [lo,hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
