// Package model contains domain models passed between layers.
package model

// Phase identifies which side of the game a stats record describes.
type Phase string

const (
	PhasePreGame  Phase = "pre_game"
	PhasePostGame Phase = "post_game"
)

// Sport selects the weight profile used by the index calculator.
type Sport string

const (
	SportNBA    Sport = "nba"
	SportNFL    Sport = "nfl"
	SportSoccer Sport = "soccer"
)

// FormLine summarizes a team's recent form as per-game ratings.
type FormLine struct {
	NetRating float64 `json:"net_rating"`
	OffRating float64 `json:"off_rating"` // points scored per game
	DefRating float64 `json:"def_rating"` // points allowed per game
}

// GameStats is the raw statistics record handed over by a game-data
// provider for one team in one game context. Zero values mean "missing"
// and are defaulted by the normalizer.
type GameStats struct {
	TeamID string `json:"team_id,omitempty"`
	GameID string `json:"game_id,omitempty"`
	// OpponentID names the other side in comparative mode.
	OpponentID string `json:"opponent_id,omitempty"`

	FieldGoalPct  float64 `json:"fg_pct"`
	ThreePointPct float64 `json:"three_pct"`
	FreeThrowPct  float64 `json:"ft_pct"`
	Assists       float64 `json:"assists"`
	Turnovers     float64 `json:"turnovers"`
	Rebounds      float64 `json:"rebounds"`

	DaysRest     int     `json:"days_rest"`
	IsBackToBack bool    `json:"is_back_to_back"`
	InjuryCount  int     `json:"injury_count"`
	AvgMinutes   float64 `json:"avg_minutes"`
	HistoryGames int     `json:"history_games"` // games available to derive rest/injury context

	WinStreak int  `json:"win_streak"` // negative for a losing streak
	IsHome    bool `json:"is_home"`
	Neutral   bool `json:"neutral,omitempty"`
	Last5Wins int  `json:"last5_wins"`

	Form         FormLine `json:"form"`
	OpponentForm FormLine `json:"opponent_form"`
}

// Matchup identifies the two sides of a game.
type Matchup struct {
	GameID     string `json:"game_id"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	Neutral    bool   `json:"neutral"`
}
