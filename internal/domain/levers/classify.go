// Package levers compares post-game levers against the pre-game expectation.
package levers

import "github.com/okian/attrib/internal/domain/model"

// Classify annotates every observed lever with a status relative to the
// expected set. Only key membership is taken from expected; the verdict for
// a known key follows the sign of the observed contribution. Output order
// matches observed.
func Classify(expected, observed []model.Lever) []model.LeverWithStatus {
	known := make(map[string]struct{}, len(expected))
	for _, l := range expected {
		known[l.Key] = struct{}{}
	}

	out := make([]model.LeverWithStatus, 0, len(observed))
	for _, l := range observed {
		out = append(out, model.LeverWithStatus{Lever: l, Status: status(known, l)})
	}
	return out
}

func status(known map[string]struct{}, l model.Lever) model.Status {
	if _, ok := known[l.Key]; !ok {
		return model.StatusNew
	}
	switch {
	case l.Contribution < 0:
		return model.StatusWeaker
	case l.Contribution > 0:
		return model.StatusStronger
	default:
		return model.StatusExpected
	}
}

// Summary counts classified levers per status.
func Summary(classified []model.LeverWithStatus) map[model.Status]int {
	counts := make(map[model.Status]int, 4)
	for _, l := range classified {
		counts[l.Status]++
	}
	return counts
}
