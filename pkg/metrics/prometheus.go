// Package metrics provides Prometheus metrics for the tally ledger service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager owns the Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Ledger metrics
	eventsAppended  *prometheus.CounterVec // by delta sign
	appendFailures  *prometheus.CounterVec // by reason
	resets          *prometheus.CounterVec // by scope
	peopleTracked   prometheus.Gauge
	storeOpDuration *prometheus.HistogramVec // by operation

	// Connectivity metrics
	probeOnline   prometheus.Gauge
	probeFailures prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var defaultManager *Manager

func init() { //nolint:gochecknoinits // global metrics setup
	defaultManager = NewManager()
}

// NewManager builds a Manager and registers all collectors on its registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tally",
		subsystem:        "ledger",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}

	m.eventsAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("events_appended_total", "Events appended to the ledger.")),
		[]string{"delta"},
	)
	m.appendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("append_failures_total", "Append attempts that failed.")),
		[]string{"reason"},
	)
	m.resets = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("resets_total", "Administrative resets performed.")),
		[]string{"scope"},
	)
	m.peopleTracked = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("people_tracked", "People currently tracked in the ledger.")),
	)
	m.storeOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_op_duration_seconds",
			Help:      "Duration of ledger store operations.",
			Buckets:   m.histogramBuckets,
		},
		[]string{"op"},
	)

	m.probeOnline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: "probe",
			Name:      "online",
			Help:      "Whether the ledger store is currently reachable (1) or not (0).",
		},
	)
	m.probeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "probe",
			Name:      "failures_total",
			Help:      "Connectivity probes that failed.",
		},
	)

	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by endpoint, method and status code.",
		},
		[]string{"endpoint", "method", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by endpoint, method and status code.",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	m.registry.MustRegister(
		m.eventsAppended,
		m.appendFailures,
		m.resets,
		m.peopleTracked,
		m.storeOpDuration,
		m.probeOnline,
		m.probeFailures,
		m.httpRequests,
		m.httpRequestDuration,
	)
}

// Registry exposes the manager's registry for serving /metrics.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// GetRegistry returns the default manager's registry.
func GetRegistry() *prometheus.Registry { return defaultManager.registry }

// Package-level recording helpers operating on the default manager.

// RecordEventAppended counts a successful append; sign is "plus" or "minus".
func RecordEventAppended(sign string) {
	defaultManager.eventsAppended.WithLabelValues(sign).Inc()
}

// RecordAppendFailure counts a failed append by reason
// (not_found, invalid_input, unavailable).
func RecordAppendFailure(reason string) {
	defaultManager.appendFailures.WithLabelValues(reason).Inc()
}

// RecordReset counts an administrative reset; scope is "person" or "all".
func RecordReset(scope string) {
	defaultManager.resets.WithLabelValues(scope).Inc()
}

// UpdatePeopleTracked sets the number of people in the ledger.
func UpdatePeopleTracked(n int) {
	defaultManager.peopleTracked.Set(float64(n))
}

// RecordStoreOpDuration observes the duration of a store operation in seconds.
func RecordStoreOpDuration(op string, seconds float64) {
	defaultManager.storeOpDuration.WithLabelValues(op).Observe(seconds)
}

// SetProbeOnline publishes the current liveness signal.
func SetProbeOnline(online bool) {
	v := 0.0
	if online {
		v = 1.0
	}
	defaultManager.probeOnline.Set(v)
}

// RecordProbeFailure counts a failed connectivity probe.
func RecordProbeFailure() {
	defaultManager.probeFailures.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, status string, seconds float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(seconds)
}
