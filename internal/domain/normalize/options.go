// Package normalize maps raw game statistics onto the canonical metrics.
package normalize

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithDefaults replaces the fallback values used for missing inputs.
// Non-positive fields keep the built-in default.
func WithDefaults(d Defaults) Option {
	return func(n *Normalizer) {
		if d.FieldGoalPct > 0 {
			n.defaults.FieldGoalPct = d.FieldGoalPct
		}
		if d.ThreePointPct > 0 {
			n.defaults.ThreePointPct = d.ThreePointPct
		}
		if d.FreeThrowPct > 0 {
			n.defaults.FreeThrowPct = d.FreeThrowPct
		}
		if d.Assists > 0 {
			n.defaults.Assists = d.Assists
		}
		if d.Turnovers > 0 {
			n.defaults.Turnovers = d.Turnovers
		}
		if d.Rebounds > 0 {
			n.defaults.Rebounds = d.Rebounds
		}
	}
}
