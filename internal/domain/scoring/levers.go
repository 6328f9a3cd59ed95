package scoring

import (
	"math"
	"sort"

	"github.com/okian/attrib/internal/domain/model"
)

// MasterVersion identifies the lever list shared by pre-game and
// post-game computations. Bump it whenever a key is added or renamed.
const MasterVersion = "v1"

// Lever keys. The order of masterLevers below is the tie-break order.
const (
	LeverPerformance   = "performance"
	LeverFatigue       = "fatigue"
	LeverRisk          = "risk"
	LeverMorale        = "morale"
	LeverNetRating     = "net_rating_edge"
	LeverOffensiveForm = "offensive_form"
	LeverDefensiveForm = "defensive_form"
	LeverHomeContext   = "home_context"
)

// topLeverCount bounds IndexResult.TopLevers.
const topLeverCount = 3

// LeverSpec is one entry of the master lever list.
type LeverSpec struct {
	Key      string         `json:"key"`
	Label    string         `json:"label"`
	Category model.Category `json:"category"`
	Mode     model.Mode     `json:"mode"`
}

var masterLevers = []LeverSpec{ //nolint:gochecknoglobals // fixed, versioned declaration list
	{Key: LeverPerformance, Label: "Shot Quality Creation", Category: model.CategoryOffense, Mode: model.ModeLogistic},
	{Key: LeverFatigue, Label: "Rest & Schedule Load", Category: model.CategoryContext, Mode: model.ModeLogistic},
	{Key: LeverRisk, Label: "Injury & Minutes Risk", Category: model.CategoryContext, Mode: model.ModeLogistic},
	{Key: LeverMorale, Label: "Momentum & Morale", Category: model.CategoryExecution, Mode: model.ModeLogistic},
	{Key: LeverNetRating, Label: "Net Rating Edge", Category: model.CategoryExecution, Mode: model.ModeComparative},
	{Key: LeverOffensiveForm, Label: "Offensive Form", Category: model.CategoryOffense, Mode: model.ModeComparative},
	{Key: LeverDefensiveForm, Label: "Defensive Form", Category: model.CategoryDefense, Mode: model.ModeComparative},
	{Key: LeverHomeContext, Label: "Home Context", Category: model.CategoryContext, Mode: model.ModeComparative},
}

var leverOrder = func() map[string]int { //nolint:gochecknoglobals // derived from masterLevers
	m := make(map[string]int, len(masterLevers))
	for i, l := range masterLevers {
		m[l.Key] = i
	}
	return m
}()

// MasterLevers returns a copy of the versioned lever list in declaration order.
func MasterLevers() []LeverSpec {
	out := make([]LeverSpec, len(masterLevers))
	copy(out, masterLevers)
	return out
}

// Catalog is the versioned master lever list.
type Catalog struct {
	Version string      `json:"version"`
	Levers  []LeverSpec `json:"levers"`
}

// MasterCatalog returns the master list together with its version.
func MasterCatalog() Catalog {
	return Catalog{Version: MasterVersion, Levers: MasterLevers()}
}

// IsMasterKey reports whether key belongs to the master list.
func IsMasterKey(key string) bool {
	_, ok := leverOrder[key]
	return ok
}

// newLever builds a lever whose label and category come from the master list.
func newLever(key string, contribution float64, rationale string) model.Lever {
	spec := masterLevers[leverOrder[key]]
	return model.Lever{
		Key:          spec.Key,
		Label:        spec.Label,
		Category:     spec.Category,
		Contribution: contribution,
		Rationale:    rationale,
	}
}

// RankLevers orders levers by |contribution| descending, breaking ties by
// master declaration order, and keeps at most k of them. The input is not
// modified.
func RankLevers(levers []model.Lever, k int) []model.Lever {
	ranked := make([]model.Lever, len(levers))
	copy(ranked, levers)
	sort.SliceStable(ranked, func(i, j int) bool {
		ai, aj := math.Abs(ranked[i].Contribution), math.Abs(ranked[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return declOrder(ranked[i].Key) < declOrder(ranked[j].Key)
	})
	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// declOrder sorts unknown keys after every master key.
func declOrder(key string) int {
	if i, ok := leverOrder[key]; ok {
		return i
	}
	return len(masterLevers)
}
