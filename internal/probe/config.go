package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Games      int           // Number of synthetic game ids to probe
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Sport      string        // Sport query parameter; empty uses the server default
	OutputFile string        // Optional JSON report of every game
	Verbose    bool          // Log every game, not only failures
}

// GameResult is the probe outcome for one game.
type GameResult struct {
	GameID          string   `json:"game_id"`
	HomeTeamID      string   `json:"home_team_id,omitempty"`
	AwayTeamID      string   `json:"away_team_id,omitempty"`
	Edge            float64  `json:"edge"`
	Favored         string   `json:"favored,omitempty"`
	HomeReadiness   float64  `json:"home_readiness"`
	HomePerformance float64  `json:"home_performance"`
	AwayReadiness   float64  `json:"away_readiness"`
	AwayPerformance float64  `json:"away_performance"`
	Fallback        bool     `json:"fallback"`
	Violations      []string `json:"violations,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Passed reports whether the game was scored without errors or violations.
func (r GameResult) Passed() bool {
	return r.Error == "" && len(r.Violations) == 0
}

// Stats holds run statistics.
type Stats struct {
	GamesProbed int
	GamesPassed int
	GamesFailed int
	Errors      int
	Violations  int
	Fallbacks   int
	Requests    int64
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
