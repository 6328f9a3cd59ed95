package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/attrib/internal/domain/levers"
	"github.com/okian/attrib/internal/domain/model"
)

// LeverHandler serves the master lever list and the delta classifier.
type LeverHandler struct {
	deps Dependencies
}

// NewLeverHandler creates a new lever handler.
func NewLeverHandler(deps Dependencies) *LeverHandler {
	return &LeverHandler{deps: deps}
}

type classifyRequest struct {
	Expected []model.Lever `json:"expected"`
	Observed []model.Lever `json:"observed"`
}

type classifyResponse struct {
	Levers  []model.LeverWithStatus `json:"levers"`
	Summary map[model.Status]int    `json:"summary"`
}

// HandleList handles GET /v1/levers requests.
func (h *LeverHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.MasterLevers())
}

// HandleClassify handles POST /v1/levers/classify requests.
func (h *LeverHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	const op = "api.classifyLevers"

	var req classifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	for _, l := range req.Observed {
		if l.Key == "" {
			writeFailure(w, WrapKind(op, ErrBadRequest, errMissingKey))
			return
		}
	}

	out := h.deps.ClassifyLevers(r.Context(), req.Expected, req.Observed)
	writeJSON(w, http.StatusOK, classifyResponse{Levers: out, Summary: levers.Summary(out)})
}
