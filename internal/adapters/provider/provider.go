// Package provider supplies raw game statistics to the scoring service.
package provider

import (
	"context"
	"errors"

	"github.com/okian/attrib/internal/domain/model"
)

// Sentinel error kinds for this package.
var (
	ErrUnsupportedSport = errors.New("unsupported sport")
	ErrGameNotFound     = errors.New("game not found")
	ErrTeamNotInGame    = errors.New("team not in game")
	ErrUpstream         = errors.New("upstream request failed")
	ErrUnavailable      = errors.New("provider unavailable")
)

// Provider fetches the raw inputs of an index computation. Implementations
// must be safe for concurrent use.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Matchup resolves the two sides of a game.
	Matchup(ctx context.Context, sport model.Sport, gameID string) (model.Matchup, error)
	// TeamStats returns one team's statistics for the given phase of a game.
	TeamStats(ctx context.Context, sport model.Sport, gameID, teamID string, phase model.Phase) (model.GameStats, error)
}
