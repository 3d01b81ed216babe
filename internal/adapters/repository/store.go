// Package repository defines the ledger store interface and its engines.
//
// The store holds two related collections: people (name, running score) and
// events (signed delta, story, timestamp). AddEvent, ResetPerson and ResetAll
// are single atomic units: a reader can never observe a score without its
// backing events or vice versa. Serialization of concurrent appends to the
// same person is the store's job, never the caller's.
package repository

import (
	"context"

	"github.com/okian/tally/internal/domain/model"
)

// Store provides transactional access to the ledger state.
type Store interface {
	// AddEvent atomically inserts an event and increments the person's score
	// by delta. Returns ErrNotFound if the name is unknown.
	AddEvent(ctx context.Context, name string, delta model.Delta, story string) (model.EventResult, error)

	// ResetPerson atomically deletes all of the person's events and zeroes
	// their score. Returns ErrNotFound if the name is unknown.
	ResetPerson(ctx context.Context, name string) error

	// ResetAll atomically deletes every event and zeroes every score.
	ResetAll(ctx context.Context) error

	// ListScores returns (name, score) pairs ordered by name ascending,
	// reflecting a committed state.
	ListScores(ctx context.Context) ([]model.PersonScore, error)

	// GetPerson looks a person up by exact name.
	// Returns ErrNotFound if absent.
	GetPerson(ctx context.Context, name string) (model.Person, error)

	// ListEvents returns up to limit events for a person, newest first.
	ListEvents(ctx context.Context, personID int64, limit int) ([]model.Event, error)

	// SeedMissing inserts a zero-score person for every roster name not yet
	// present. Idempotent and safe to run concurrently with itself.
	SeedMissing(ctx context.Context, roster []string) error

	// CountPeople returns the number of people tracked.
	CountPeople(ctx context.Context) (int, error)

	// Ping performs a cheap read to check reachability.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
