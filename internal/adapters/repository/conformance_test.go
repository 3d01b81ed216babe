package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/tally/internal/domain/model"
)

// runStoreConformance exercises the Store contract against any engine.
func runStoreConformance(t *testing.T, open func(t *testing.T) Store) {
	t.Helper()

	roster := []string{"CREAG", "ARGYLE", "JOE"}

	t.Run("SeedMissingIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()

		if err := store.SeedMissing(ctx, roster); err != nil {
			t.Fatalf("first seed: %v", err)
		}
		if err := store.SeedMissing(ctx, roster); err != nil {
			t.Fatalf("second seed: %v", err)
		}

		scores, err := store.ListScores(ctx)
		if err != nil {
			t.Fatalf("list scores: %v", err)
		}
		if len(scores) != len(roster) {
			t.Fatalf("expected %d people, got %d", len(roster), len(scores))
		}
		for _, ps := range scores {
			if ps.Score != 0 {
				t.Errorf("seeded %s with score %d, want 0", ps.Name, ps.Score)
			}
		}
	})

	t.Run("SeedMissingConcurrent", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()

		var wg sync.WaitGroup
		errCh := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := store.SeedMissing(ctx, roster); err != nil {
					errCh <- err
				}
			}()
		}
		wg.Wait()
		close(errCh)
		for err := range errCh {
			t.Fatalf("concurrent seed: %v", err)
		}

		count, err := store.CountPeople(ctx)
		if err != nil {
			t.Fatalf("count people: %v", err)
		}
		if count != len(roster) {
			t.Fatalf("expected %d people after concurrent seeding, got %d", len(roster), count)
		}
	})

	t.Run("AppendUpdatesScoreAndHistoryTogether", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()
		mustSeed(t, store, roster)

		res, err := store.AddEvent(ctx, "JOE", model.DeltaPlus, "helped set up")
		if err != nil {
			t.Fatalf("add event: %v", err)
		}
		if res.NewScore != 1 {
			t.Errorf("new score = %d, want 1", res.NewScore)
		}
		if res.EventID == "" {
			t.Error("expected a non-empty event id")
		}

		res, err = store.AddEvent(ctx, "JOE", model.DeltaMinus, "broke the build")
		if err != nil {
			t.Fatalf("add event: %v", err)
		}
		if res.NewScore != 0 {
			t.Errorf("new score = %d, want 0", res.NewScore)
		}

		p, err := store.GetPerson(ctx, "JOE")
		if err != nil {
			t.Fatalf("get person: %v", err)
		}
		events, err := store.ListEvents(ctx, p.ID, 200)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		assertLedgerConsistent(t, p, events)
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
	})

	t.Run("AppendUnknownNameHasNoEffect", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()
		mustSeed(t, store, roster)

		_, err := store.AddEvent(ctx, "NOBODY", model.DeltaPlus, "phantom")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		// No partial effect anywhere.
		scores, err := store.ListScores(ctx)
		if err != nil {
			t.Fatalf("list scores: %v", err)
		}
		for _, ps := range scores {
			if ps.Score != 0 {
				t.Errorf("%s score = %d after failed append, want 0", ps.Name, ps.Score)
			}
		}
		for _, name := range roster {
			p, err := store.GetPerson(ctx, name)
			if err != nil {
				t.Fatalf("get person: %v", err)
			}
			events, err := store.ListEvents(ctx, p.ID, 200)
			if err != nil {
				t.Fatalf("list events: %v", err)
			}
			if len(events) != 0 {
				t.Errorf("%s has %d events after failed append, want 0", name, len(events))
			}
		}
	})

	t.Run("ConcurrentAppendsNeverLoseUpdates", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()
		mustSeed(t, store, roster)

		const writers = 50
		var wg sync.WaitGroup
		errCh := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := store.AddEvent(ctx, "CREAG", model.DeltaPlus, fmt.Sprintf("round %d", i))
				if err != nil {
					errCh <- err
				}
			}(i)
		}
		wg.Wait()
		close(errCh)
		for err := range errCh {
			t.Fatalf("concurrent append: %v", err)
		}

		p, err := store.GetPerson(ctx, "CREAG")
		if err != nil {
			t.Fatalf("get person: %v", err)
		}
		if p.Score != writers {
			t.Errorf("score = %d after %d concurrent +1 appends, want %d", p.Score, writers, writers)
		}
		events, err := store.ListEvents(ctx, p.ID, writers*2)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		if len(events) != writers {
			t.Errorf("expected exactly %d event rows, got %d", writers, len(events))
		}
		assertLedgerConsistent(t, p, events)
	})

	t.Run("ResetPersonClearsOnlyThatPerson", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()
		mustSeed(t, store, roster)

		for i := 0; i < 3; i++ {
			mustAppend(t, store, "CREAG", model.DeltaPlus, "good deed")
		}
		mustAppend(t, store, "ARGYLE", model.DeltaMinus, "bad deed")

		if err := store.ResetPerson(ctx, "CREAG"); err != nil {
			t.Fatalf("reset person: %v", err)
		}

		creag, err := store.GetPerson(ctx, "CREAG")
		if err != nil {
			t.Fatalf("get person: %v", err)
		}
		if creag.Score != 0 {
			t.Errorf("CREAG score = %d after reset, want 0", creag.Score)
		}
		events, err := store.ListEvents(ctx, creag.ID, 200)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("CREAG has %d events after reset, want 0", len(events))
		}

		// The other person is untouched.
		argyle, err := store.GetPerson(ctx, "ARGYLE")
		if err != nil {
			t.Fatalf("get person: %v", err)
		}
		if argyle.Score != -1 {
			t.Errorf("ARGYLE score = %d, want -1", argyle.Score)
		}
		events, err = store.ListEvents(ctx, argyle.ID, 200)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		if len(events) != 1 {
			t.Errorf("ARGYLE has %d events, want 1", len(events))
		}
	})

	t.Run("ResetPersonUnknownName", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()
		mustSeed(t, store, roster)

		if err := store.ResetPerson(ctx, "NOBODY"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ResetAllClearsEveryone", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()
		mustSeed(t, store, roster)

		for _, name := range roster {
			mustAppend(t, store, name, model.DeltaPlus, "pre-reset")
		}
		if err := store.ResetAll(ctx); err != nil {
			t.Fatalf("reset all: %v", err)
		}

		for _, name := range roster {
			p, err := store.GetPerson(ctx, name)
			if err != nil {
				t.Fatalf("get person: %v", err)
			}
			if p.Score != 0 {
				t.Errorf("%s score = %d after reset all, want 0", name, p.Score)
			}
			events, err := store.ListEvents(ctx, p.ID, 200)
			if err != nil {
				t.Fatalf("list events: %v", err)
			}
			if len(events) != 0 {
				t.Errorf("%s has %d events after reset all, want 0", name, len(events))
			}
		}
	})

	t.Run("ListScoresOrderedByName", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()
		mustSeed(t, store, []string{"ZED", "ANNA", "MID"})

		scores, err := store.ListScores(ctx)
		if err != nil {
			t.Fatalf("list scores: %v", err)
		}
		want := []string{"ANNA", "MID", "ZED"}
		if len(scores) != len(want) {
			t.Fatalf("expected %d rows, got %d", len(want), len(scores))
		}
		for i, ps := range scores {
			if ps.Name != want[i] {
				t.Errorf("scores[%d] = %s, want %s", i, ps.Name, want[i])
			}
		}
	})

	t.Run("ListEventsNewestFirstAndBounded", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()
		mustSeed(t, store, roster)

		for i := 0; i < 10; i++ {
			mustAppend(t, store, "JOE", model.DeltaPlus, fmt.Sprintf("story %d", i))
		}
		p, err := store.GetPerson(ctx, "JOE")
		if err != nil {
			t.Fatalf("get person: %v", err)
		}

		events, err := store.ListEvents(ctx, p.ID, 4)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		if len(events) != 4 {
			t.Fatalf("expected 4 events, got %d", len(events))
		}
		if events[0].Story != "story 9" {
			t.Errorf("newest event story = %q, want %q", events[0].Story, "story 9")
		}
		for i := 1; i < len(events); i++ {
			if events[i].CreatedAt.After(events[i-1].CreatedAt) {
				t.Errorf("events out of order at %d: %v after %v", i, events[i].CreatedAt, events[i-1].CreatedAt)
			}
		}

		if _, err := store.ListEvents(ctx, p.ID, 0); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("expected ErrInvalidLimit for limit 0, got %v", err)
		}
	})

	t.Run("GetPersonUnknownName", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()
		mustSeed(t, store, roster)

		if _, err := store.GetPerson(ctx, "NOBODY"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PingHealthyEvenWhenEmpty", func(t *testing.T) {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()

		if err := store.Ping(ctx); err != nil {
			t.Fatalf("ping on empty store: %v", err)
		}
		mustSeed(t, store, roster)
		if err := store.Ping(ctx); err != nil {
			t.Fatalf("ping on seeded store: %v", err)
		}
	})
}

func mustSeed(t *testing.T, store Store, roster []string) {
	t.Helper()
	if err := store.SeedMissing(context.Background(), roster); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func mustAppend(t *testing.T, store Store, name string, delta model.Delta, story string) {
	t.Helper()
	if _, err := store.AddEvent(context.Background(), name, delta, story); err != nil {
		t.Fatalf("add event for %s: %v", name, err)
	}
}

// assertLedgerConsistent checks score == sum(deltas) for one person.
func assertLedgerConsistent(t *testing.T, p model.Person, events []model.Event) {
	t.Helper()
	var sum int64
	for _, e := range events {
		sum += int64(e.Delta)
	}
	if p.Score != sum {
		t.Errorf("%s score = %d but event deltas sum to %d", p.Name, p.Score, sum)
	}
}
