package repository

import "time"

// settings carries knobs shared by both store engines.
type settings struct {
	now func() time.Time
}

// Option applies a configuration option to a store engine.
type Option func(*settings)

// WithNowFunc overrides the clock used for event timestamps. Intended for
// tests; the stored timestamps remain monotonically non-decreasing regardless
// of what the clock returns.
func WithNowFunc(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func newSettings(opts ...Option) settings {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
