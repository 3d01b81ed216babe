// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// PeopleHandler handles person detail requests.
type PeopleHandler struct {
	deps Dependencies
}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler(deps Dependencies) *PeopleHandler {
	return &PeopleHandler{deps: deps}
}

type personView struct {
	Name   string      `json:"name"`
	Score  int64       `json:"score"`
	Events []eventView `json:"events"`
}

// HandleGetPerson handles GET /people/{name} requests, returning the person
// and their most recent events, newest first.
func (h *PeopleHandler) HandleGetPerson(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/people/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	p, events, err := h.deps.History(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view := personView{
		Name:   p.Name,
		Score:  p.Score,
		Events: make([]eventView, len(events)),
	}
	for i, e := range events {
		view.Events[i] = eventView{
			ID:        e.ID,
			Delta:     int(e.Delta),
			Story:     e.Story,
			CreatedAt: e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, view)
}
