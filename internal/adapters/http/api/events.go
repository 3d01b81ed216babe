// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// EventsHandler handles event submissions.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the POST /events body.
type eventRequest struct {
	Name  string `json:"name"`
	Delta int    `json:"delta"`
	Story string `json:"story"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return NewKind("api.post_event", ErrBadRequest)
	case !model.Delta(e.Delta).Valid():
		return NewKind("api.post_event", ErrBadRequest)
	case strings.TrimSpace(e.Story) == "":
		return NewKind("api.post_event", ErrBadRequest)
	}
	return nil
}

type eventResponse struct {
	EventID  string `json:"event_id"`
	NewScore int64  `json:"new_score"`
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.deps.AppendEvent(r.Context(), req.Name, model.Delta(req.Delta), req.Story)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{EventID: res.EventID, NewScore: res.NewScore})
}
