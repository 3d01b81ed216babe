// Package model contains domain models passed between layers.
package model

import "time"

// Delta is the signed magnitude of a scoring event. Only +1 and -1 are legal.
type Delta int

// Legal delta values.
const (
	DeltaMinus Delta = -1
	DeltaPlus  Delta = 1
)

// Valid reports whether d is one of the two legal values.
func (d Delta) Valid() bool {
	return d == DeltaPlus || d == DeltaMinus
}

// Sign returns "plus" or "minus" for a valid delta, "" otherwise.
func (d Delta) Sign() string {
	switch d {
	case DeltaPlus:
		return "plus"
	case DeltaMinus:
		return "minus"
	default:
		return ""
	}
}

// Person is a scorable participant. Score is always the sum of the deltas of
// the person's recorded events; the store enforces this, not the caller.
type Person struct {
	ID    int64
	Name  string
	Score int64
}

// PersonScore is the read shape returned by score listings.
type PersonScore struct {
	Name  string
	Score int64
}

// Event is one immutable scoring action against a person. CreatedAt is
// assigned by the store at write time.
type Event struct {
	ID        string
	PersonID  int64
	Delta     Delta
	Story     string
	CreatedAt time.Time
}

// EventResult is returned by a successful append: the id of the new event and
// the person's score after the increment.
type EventResult struct {
	EventID  string
	NewScore int64
}
