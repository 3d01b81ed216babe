// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ScoresHandler handles score listing requests.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

type scoreView struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// HandleGetScores handles GET /scores requests. The listing is a committed
// snapshot ordered by name ascending.
func (h *ScoresHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	scores, err := h.deps.ListScores(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]scoreView, len(scores))
	for i, ps := range scores {
		out[i] = scoreView{Name: ps.Name, Score: ps.Score}
	}
	writeJSON(w, http.StatusOK, out)
}
