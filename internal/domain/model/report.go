package model

// ReadinessReport is the pre-game readiness index for one team.
type ReadinessReport struct {
	GameID   string           `json:"game_id"`
	TeamID   string           `json:"team_id"`
	Stats    GameStats        `json:"stats"`
	Metrics  CanonicalMetrics `json:"metrics"`
	Index    IndexResult      `json:"index"`
	Fallback bool             `json:"fallback"`
}

// PerformanceReport is the post-game performance index for one team,
// with its top levers classified against the readiness expectation.
type PerformanceReport struct {
	GameID      string            `json:"game_id"`
	TeamID      string            `json:"team_id"`
	Stats       GameStats         `json:"stats"`
	Metrics     CanonicalMetrics  `json:"metrics"`
	Readiness   IndexResult       `json:"readiness"`
	Performance IndexResult       `json:"performance"`
	Levers      []LeverWithStatus `json:"levers"`
	Fallback    bool              `json:"fallback"`
}

// MatchupReport is the comparative edge of the home side over the away side.
type MatchupReport struct {
	Matchup  Matchup     `json:"matchup"`
	Index    IndexResult `json:"index"`
	Fallback bool        `json:"fallback"`
}
