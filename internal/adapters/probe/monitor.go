// Package probe implements the connectivity monitor: a periodic cheap read
// against the ledger store condensed into a boolean liveness signal.
package probe

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Default monitor configuration constants.
const (
	defaultInterval     = 8 * time.Second
	defaultProbeTimeout = 2 * time.Second
)

// Pinger is the single capability the monitor needs from the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor polls the store on a fixed interval and keeps the last-known
// liveness state. Probe failures of any kind degrade to Offline and are
// never returned to callers.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	online   atomic.Bool
	logger   logger.Logger
}

// Option applies a configuration option to the Monitor.
type Option func(*Monitor)

// WithInterval sets the polling interval.
func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// WithProbeTimeout bounds a single probe; a timed-out probe counts as Offline.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(m *Monitor) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the monitor.
func WithLogger(l logger.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a Monitor for the given pinger. The monitor starts Offline
// until the first successful probe.
func New(pinger Pinger, opts ...Option) *Monitor {
	m := &Monitor{
		pinger:   pinger,
		interval: defaultInterval,
		timeout:  defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start probes once immediately, then on every interval tick until ctx is
// canceled. It returns after spawning the polling goroutine.
func (m *Monitor) Start(ctx context.Context) {
	if m.logger == nil {
		m.logger = logger.Get().Named("probe")
	}
	m.Check(ctx)

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

// Check performs one probe now and returns the resulting liveness state.
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(probeCtx)
	online := err == nil
	was := m.online.Swap(online)
	metrics.SetProbeOnline(online)
	if !online {
		metrics.RecordProbeFailure()
	}

	if m.logger != nil && was != online {
		if online {
			m.logger.Info(ctx, "store is reachable")
		} else {
			m.logger.Warn(ctx, "store is unreachable", logger.Error(err))
		}
	}
	return online
}

// Online returns the last-known liveness state without probing.
func (m *Monitor) Online() bool {
	return m.online.Load()
}
