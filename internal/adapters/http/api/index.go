package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/attrib/internal/domain/model"
)

// IndexHandler scores posted statistics.
type IndexHandler struct {
	deps Dependencies
}

// NewIndexHandler creates a new index handler.
func NewIndexHandler(deps Dependencies) *IndexHandler {
	return &IndexHandler{deps: deps}
}

// HandleComputeIndex handles POST /v1/index?mode=&sport= requests.
// The body is a GameStats record. Posted context fields are trusted unless
// the caller sets history_games to 0.
func (h *IndexHandler) HandleComputeIndex(w http.ResponseWriter, r *http.Request) {
	const op = "api.computeIndex"

	q := r.URL.Query()
	mode := model.Mode(strings.ToLower(strings.TrimSpace(q.Get("mode"))))
	if mode == "" {
		mode = model.ModeLogistic
	}

	stats := model.GameStats{HistoryGames: 1}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&stats); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.ComputeIndex(r.Context(), h.deps.ResolveSport(q.Get("sport")), mode, stats)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
