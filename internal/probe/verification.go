package probe

import (
	"fmt"
	"math"
	"reflect"

	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/internal/domain/scoring"
)

// checkIndex validates a logistic index result.
func checkIndex(label string, res model.IndexResult) []string {
	var out []string
	if res.Mode != model.ModeLogistic {
		out = append(out, fmt.Sprintf("%s: mode %q, want %q", label, res.Mode, model.ModeLogistic))
	}
	if res.Score < 0 || res.Score > maxScore || res.Score != math.Trunc(res.Score) {
		out = append(out, fmt.Sprintf("%s: score %v is not an integer in [0, 100]", label, res.Score))
	}
	if len(res.TopLevers) > maxTopLevers {
		out = append(out, fmt.Sprintf("%s: %d top levers", label, len(res.TopLevers)))
	}
	for i := 1; i < len(res.TopLevers); i++ {
		if math.Abs(res.TopLevers[i].Contribution) > math.Abs(res.TopLevers[i-1].Contribution) {
			out = append(out, fmt.Sprintf("%s: top levers not ordered by magnitude", label))
			break
		}
	}
	return append(out, checkKeys(label, res.Levers)...)
}

// checkMatchup validates a comparative result.
func checkMatchup(rep model.MatchupReport) []string {
	var out []string
	res := rep.Index
	if res.Mode != model.ModeComparative {
		out = append(out, fmt.Sprintf("matchup: mode %q, want %q", res.Mode, model.ModeComparative))
	}
	if res.Score != 0 || len(res.TopLevers) != 0 {
		out = append(out, "matchup: comparative result carries a score or top levers")
	}

	want := ""
	switch {
	case res.Edge > 0:
		want = rep.Matchup.HomeTeamID
	case res.Edge < 0:
		want = rep.Matchup.AwayTeamID
	}
	if res.Favored != want {
		out = append(out, fmt.Sprintf("matchup: edge %.2f favors %q, want %q", res.Edge, res.Favored, want))
	}

	sum := 0.0
	for _, l := range res.Levers {
		sum += l.Contribution
	}
	if math.Abs(sum-res.Edge) > 1e-9 {
		out = append(out, fmt.Sprintf("matchup: levers sum to %.4f, edge is %.4f", sum, res.Edge))
	}
	return append(out, checkKeys("matchup", res.Levers)...)
}

// checkPerformance validates a performance report and its classified levers.
func checkPerformance(label string, rep model.PerformanceReport) []string {
	out := checkIndex(label+" readiness", rep.Readiness)
	out = append(out, checkIndex(label+" performance", rep.Performance)...)

	if len(rep.Levers) != len(rep.Performance.TopLevers) {
		out = append(out, fmt.Sprintf("%s: %d classified levers for %d top levers",
			label, len(rep.Levers), len(rep.Performance.TopLevers)))
		return out
	}

	expected := make(map[string]bool, len(rep.Readiness.TopLevers))
	for _, l := range rep.Readiness.TopLevers {
		expected[l.Key] = true
	}
	for i, l := range rep.Levers {
		if l.Key != rep.Performance.TopLevers[i].Key {
			out = append(out, fmt.Sprintf("%s: classified lever %d is %q, want %q",
				label, i, l.Key, rep.Performance.TopLevers[i].Key))
		}
		if want := expectedStatus(expected[l.Key], l.Contribution); l.Status != want {
			out = append(out, fmt.Sprintf("%s: lever %q is %q, want %q", label, l.Key, l.Status, want))
		}
	}
	return out
}

// checkRepeat reports a difference between two responses for the same request.
func checkRepeat(label string, first, second model.ReadinessReport) []string {
	if reflect.DeepEqual(first.Index, second.Index) {
		return nil
	}
	return []string{fmt.Sprintf("%s: repeated request scored %v then %v", label, first.Index.Score, second.Index.Score)}
}

func checkKeys(label string, levers []model.Lever) []string {
	var out []string
	for _, l := range levers {
		if !scoring.IsMasterKey(l.Key) {
			out = append(out, fmt.Sprintf("%s: lever %q is not in the master list", label, l.Key))
		}
	}
	return out
}

func expectedStatus(known bool, contribution float64) model.Status {
	switch {
	case !known:
		return model.StatusNew
	case contribution < 0:
		return model.StatusWeaker
	case contribution > 0:
		return model.StatusStronger
	default:
		return model.StatusExpected
	}
}
