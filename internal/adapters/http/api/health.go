// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/tally/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler handles health, liveness and metrics requests.
type HealthHandler struct {
	live Liveness
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(live Liveness) *HealthHandler {
	return &HealthHandler{live: live}
}

type healthResponse struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Online bool   `json:"online"`
	Label  string `json:"label"`
}

// HandleHealth handles GET /healthz requests. It reports process liveness
// only; store reachability lives under /status.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleStatus handles GET /status requests, exposing the connectivity
// monitor's last-known liveness signal.
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	online := h.live != nil && h.live.Online()
	label := "Offline"
	if online {
		label = "Online"
	}
	writeJSON(w, http.StatusOK, statusResponse{Online: online, Label: label})
}

// HandleMetrics serves the Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
