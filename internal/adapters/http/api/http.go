// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/internal/domain/scoring"
)

// maxBodyBytes caps request bodies on the POST routes.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ResolveSport maps the sport query parameter onto a profile key.
	ResolveSport(v string) model.Sport

	// Scoring on caller-supplied inputs.
	ComputeIndex(ctx context.Context, sport model.Sport, mode model.Mode, stats model.GameStats) (model.IndexResult, error)
	ClassifyLevers(ctx context.Context, expected, observed []model.Lever) []model.LeverWithStatus

	// Scoring on provider data.
	Readiness(ctx context.Context, sport model.Sport, gameID, teamID string) (model.ReadinessReport, error)
	Performance(ctx context.Context, sport model.Sport, gameID, teamID string) (model.PerformanceReport, error)
	Matchup(ctx context.Context, sport model.Sport, gameID string) (model.MatchupReport, error)

	MasterLevers() scoring.Catalog
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	indexHandler  *IndexHandler
	leverHandler  *LeverHandler
	gameHandler   *GameHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		indexHandler:  NewIndexHandler(deps),
		leverHandler:  NewLeverHandler(deps),
		gameHandler:   NewGameHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("POST /v1/index", "index", s.indexHandler.HandleComputeIndex)
	route("GET /v1/levers", "levers", s.leverHandler.HandleList)
	route("POST /v1/levers/classify", "classify", s.leverHandler.HandleClassify)
	route("GET /v1/games/{gameID}/matchup", "matchup", s.gameHandler.HandleMatchup)
	route("GET /v1/games/{gameID}/teams/{teamID}/readiness", "readiness", s.gameHandler.HandleReadiness)
	route("GET /v1/games/{gameID}/teams/{teamID}/performance", "performance", s.gameHandler.HandlePerformance)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, scoring.ErrInvalidConfiguration):
		return http.StatusBadRequest, "invalid_configuration"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
