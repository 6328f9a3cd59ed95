package model

// Mode selects the index calculator variant.
type Mode string

const (
	ModeLogistic    Mode = "logistic"
	ModeComparative Mode = "comparative"
)

// Category groups levers for presentation.
type Category string

const (
	CategoryOffense   Category = "offense"
	CategoryDefense   Category = "defense"
	CategoryContext   Category = "context"
	CategoryExecution Category = "execution"
)

// Status is the classifier verdict for an observed lever.
type Status string

const (
	StatusExpected Status = "expected"
	StatusStronger Status = "stronger"
	StatusWeaker   Status = "weaker"
	StatusNew      Status = "new"
)

// Lever is a named structural factor contributing to an index.
type Lever struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Category     Category `json:"category"`
	Contribution float64  `json:"contribution"`
	Rationale    string   `json:"rationale"`
}

// LeverWithStatus is an observed lever annotated by the classifier.
type LeverWithStatus struct {
	Lever
	Status Status `json:"status"`
}

// IndexResult is the immutable output of one index computation.
//
// Logistic results carry Score and TopLevers. Comparative results carry
// Edge and Favored; their Score is zero and TopLevers is empty. Levers
// always holds every term in master-list order.
type IndexResult struct {
	Mode       Mode    `json:"mode"`
	Sport      Sport   `json:"sport"`
	Score      float64 `json:"score"`
	Edge       float64 `json:"edge"`
	Favored    string  `json:"favored,omitempty"`
	Confidence float64 `json:"confidence"`
	TopLevers  []Lever `json:"top_levers"`
	Levers     []Lever `json:"levers"`
}
