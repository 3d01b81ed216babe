// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/model"
)

// Dependencies bundles the ledger operations the handlers need. An interface
// keeps the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	AppendEvent(ctx context.Context, name string, delta model.Delta, story string) (model.EventResult, error)
	ListScores(ctx context.Context) ([]model.PersonScore, error)
	History(ctx context.Context, name string) (model.Person, []model.Event, error)
	ResetPerson(ctx context.Context, name string) error
	ResetAll(ctx context.Context) error
}

// Liveness is the read side of the connectivity monitor.
type Liveness interface {
	Online() bool
}

// Server wires HTTP routes for the ledger API.
type Server struct {
	eventsHandler *EventsHandler
	scoresHandler *ScoresHandler
	peopleHandler *PeopleHandler
	adminHandler  *AdminHandler
	healthHandler *HealthHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, live Liveness) *Server {
	return &Server{
		eventsHandler: NewEventsHandler(deps),
		scoresHandler: NewScoresHandler(deps),
		peopleHandler: NewPeopleHandler(deps),
		adminHandler:  NewAdminHandler(deps),
		healthHandler: NewHealthHandler(live),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/status", MetricsMiddleware(s.healthHandler.HandleStatus, "status"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandleGetScores, "scores"))
	mux.HandleFunc("/people/", MetricsMiddleware(s.peopleHandler.HandleGetPerson, "people"))
	mux.HandleFunc("/admin/reset-person", MetricsMiddleware(s.adminHandler.HandleResetPerson, "admin_reset_person"))
	mux.HandleFunc("/admin/reset-all", MetricsMiddleware(s.adminHandler.HandleResetAll, "admin_reset_all"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type eventView struct {
	ID        string    `json:"id"`
	Delta     int       `json:"delta"`
	Story     string    `json:"story"`
	CreatedAt time.Time `json:"created_at"`
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

// writeServiceError translates the service's sentinel kinds to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, service.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
