package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tally/internal/domain/model"
)

// MemoryStore is an in-process Store engine with the same transactional
// contract as the SQLite engine: one mutex spans score increment and event
// insert, so readers only ever see committed pairs. Used by tests and as the
// ephemeral engine when no database path is configured.
type MemoryStore struct {
	mu     sync.Mutex
	people map[string]*model.Person
	events map[int64][]model.Event
	nextID int64
	lastTS time.Time
	now    func() time.Time
	closed bool
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	cfg := newSettings(opts...)
	return &MemoryStore{
		people: make(map[string]*model.Person),
		events: make(map[int64][]model.Event),
		now:    cfg.now,
	}
}

func (s *MemoryStore) nextTimestampLocked() time.Time {
	ts := s.now().UTC()
	if ts.Before(s.lastTS) {
		ts = s.lastTS
	}
	s.lastTS = ts
	return ts
}

func (s *MemoryStore) AddEvent(ctx context.Context, name string, delta model.Delta, story string) (model.EventResult, error) {
	if err := ctx.Err(); err != nil {
		return model.EventResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.EventResult{}, ErrClosed
	}

	p, ok := s.people[name]
	if !ok {
		return model.EventResult{}, ErrNotFound
	}

	e := model.Event{
		ID:        uuid.NewString(),
		PersonID:  p.ID,
		Delta:     delta,
		Story:     story,
		CreatedAt: s.nextTimestampLocked(),
	}
	p.Score += int64(delta)
	s.events[p.ID] = append(s.events[p.ID], e)
	return model.EventResult{EventID: e.ID, NewScore: p.Score}, nil
}

func (s *MemoryStore) ResetPerson(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	p, ok := s.people[name]
	if !ok {
		return ErrNotFound
	}
	p.Score = 0
	delete(s.events, p.ID)
	return nil
}

func (s *MemoryStore) ResetAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for _, p := range s.people {
		p.Score = 0
	}
	s.events = make(map[int64][]model.Event)
	return nil
}

func (s *MemoryStore) ListScores(ctx context.Context) ([]model.PersonScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]model.PersonScore, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, model.PersonScore{Name: p.Name, Score: p.Score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetPerson(ctx context.Context, name string) (model.Person, error) {
	if err := ctx.Err(); err != nil {
		return model.Person{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Person{}, ErrClosed
	}

	p, ok := s.people[name]
	if !ok {
		return model.Person{}, ErrNotFound
	}
	return *p, nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, personID int64, limit int) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	history := s.events[personID]
	// Newest first; history is held in insertion order.
	out := make([]model.Event, 0, min(limit, len(history)))
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

func (s *MemoryStore) SeedMissing(ctx context.Context, roster []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for _, name := range roster {
		if _, ok := s.people[name]; ok {
			continue
		}
		s.nextID++
		s.people[name] = &model.Person{ID: s.nextID, Name: name}
	}
	return nil
}

func (s *MemoryStore) CountPeople(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.people), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
