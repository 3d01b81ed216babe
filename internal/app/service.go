// Package service provides the ledger service: input validation, error
// mapping and the atomic ledger operations exposed to transports and the
// interaction controller.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// defaultHistoryLimit bounds history reads to the most recent events.
const defaultHistoryLimit = 200

// Service validates input, delegates to the store's atomic operations and
// maps store errors to the service's sentinel kinds. Scores are never
// computed on this side; the increment lives inside the store transaction.
type Service struct {
	mu sync.RWMutex

	store        repository.Store
	roster       []string
	historyLimit int
	started      bool
	logger       logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing ledger store. Required before Start.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRoster sets the fixed list of names seeded at startup.
func WithRoster(roster []string) Option {
	return func(s *Service) {
		if len(roster) > 0 {
			s.roster = roster
		}
	}
}

// WithHistoryLimit caps the number of events returned by History.
func WithHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start seeds any roster names missing from the store. Safe to call more
// than once; seeding is idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return errors.New("service requires a store")
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("ledger")
	}

	if err := s.store.SeedMissing(ctx, s.roster); err != nil {
		return fmt.Errorf("seed roster: %w", err)
	}
	if n, err := s.store.CountPeople(ctx); err == nil {
		metrics.UpdatePeopleTracked(n)
	}

	s.started = true
	s.logger.Info(ctx, "ledger service started",
		logger.Int("roster", len(s.roster)),
		logger.Int("historyLimit", s.historyLimit),
	)
	return nil
}

// Stop closes the backing store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.store != nil {
		_ = s.store.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "ledger service stopped")
}

// Roster returns the configured names in their configured order.
func (s *Service) Roster() []string {
	out := make([]string, len(s.roster))
	copy(out, s.roster)
	return out
}

// HistoryLimit returns the configured history cap.
func (s *Service) HistoryLimit() int {
	return s.historyLimit
}

// AppendEvent validates and records one scoring event. The score increment
// and the event insert commit together inside the store or not at all.
func (s *Service) AppendEvent(ctx context.Context, name string, delta model.Delta, story string) (model.EventResult, error) {
	if !delta.Valid() {
		metrics.RecordAppendFailure("invalid_input")
		return model.EventResult{}, fmt.Errorf("%w: delta must be +1 or -1, got %d", ErrInvalidInput, delta)
	}
	story = strings.TrimSpace(story)
	if story == "" {
		metrics.RecordAppendFailure("invalid_input")
		return model.EventResult{}, fmt.Errorf("%w: story must not be empty", ErrInvalidInput)
	}

	res, err := s.store.AddEvent(ctx, name, delta, story)
	if err != nil {
		mapped := mapStoreError(err)
		metrics.RecordAppendFailure(failureReason(mapped))
		s.logger.Warn(ctx, "append failed",
			logger.String("name", name),
			logger.Error(err),
		)
		return model.EventResult{}, mapped
	}

	metrics.RecordEventAppended(delta.Sign())
	s.logger.Info(ctx, "event appended",
		logger.String("name", name),
		logger.String("delta", delta.Sign()),
		logger.Int64("score", res.NewScore),
	)
	return res, nil
}

// ResetPerson deletes the person's events and zeroes their score atomically.
func (s *Service) ResetPerson(ctx context.Context, name string) error {
	if err := s.store.ResetPerson(ctx, name); err != nil {
		return mapStoreError(err)
	}
	metrics.RecordReset("person")
	s.logger.Info(ctx, "person reset", logger.String("name", name))
	return nil
}

// ResetAll deletes every event and zeroes every score atomically.
func (s *Service) ResetAll(ctx context.Context) error {
	if err := s.store.ResetAll(ctx); err != nil {
		return mapStoreError(err)
	}
	metrics.RecordReset("all")
	s.logger.Info(ctx, "ledger reset for everyone")
	return nil
}

// ListScores returns all (name, score) pairs ordered by name ascending.
func (s *Service) ListScores(ctx context.Context) ([]model.PersonScore, error) {
	scores, err := s.store.ListScores(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return scores, nil
}

// GetPerson looks a person up by exact name.
func (s *Service) GetPerson(ctx context.Context, name string) (model.Person, error) {
	p, err := s.store.GetPerson(ctx, name)
	if err != nil {
		return model.Person{}, mapStoreError(err)
	}
	return p, nil
}

// History returns a person and their most recent events, newest first,
// bounded by the configured history limit.
func (s *Service) History(ctx context.Context, name string) (model.Person, []model.Event, error) {
	p, err := s.store.GetPerson(ctx, name)
	if err != nil {
		return model.Person{}, nil, mapStoreError(err)
	}
	events, err := s.store.ListEvents(ctx, p.ID, s.historyLimit)
	if err != nil {
		return model.Person{}, nil, mapStoreError(err)
	}
	return p, events, nil
}

// mapStoreError translates store errors into the service's sentinel kinds.
// Anything that is not a known kind is treated as the store being
// unreachable.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w", ErrNotFound)
	case errors.Is(err, repository.ErrInvalidLimit):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "unavailable"
	}
}
