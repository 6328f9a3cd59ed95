package api

import (
	"net/http"
	"strings"
)

// GameHandler scores games fetched from the configured provider.
type GameHandler struct {
	deps Dependencies
}

// NewGameHandler creates a new game handler.
func NewGameHandler(deps Dependencies) *GameHandler {
	return &GameHandler{deps: deps}
}

// HandleReadiness handles GET /v1/games/{gameID}/teams/{teamID}/readiness.
func (h *GameHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	const op = "api.readiness"

	gameID, teamID, err := pathIDs(r, true)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	rep, err := h.deps.Readiness(r.Context(), h.deps.ResolveSport(r.URL.Query().Get("sport")), gameID, teamID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandlePerformance handles GET /v1/games/{gameID}/teams/{teamID}/performance.
func (h *GameHandler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	const op = "api.performance"

	gameID, teamID, err := pathIDs(r, true)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	rep, err := h.deps.Performance(r.Context(), h.deps.ResolveSport(r.URL.Query().Get("sport")), gameID, teamID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleMatchup handles GET /v1/games/{gameID}/matchup.
func (h *GameHandler) HandleMatchup(w http.ResponseWriter, r *http.Request) {
	const op = "api.matchup"

	gameID, _, err := pathIDs(r, false)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	rep, err := h.deps.Matchup(r.Context(), h.deps.ResolveSport(r.URL.Query().Get("sport")), gameID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func pathIDs(r *http.Request, withTeam bool) (gameID, teamID string, err error) {
	gameID = strings.TrimSpace(r.PathValue("gameID"))
	if gameID == "" {
		return "", "", errMissingGameID
	}
	if !withTeam {
		return gameID, "", nil
	}
	teamID = strings.TrimSpace(r.PathValue("teamID"))
	if teamID == "" {
		return "", "", errMissingTeamID
	}
	return gameID, teamID, nil
}
