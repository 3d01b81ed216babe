package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/tally/internal/domain/model"
)

func TestMemoryStore_Conformance(t *testing.T) {
	runStoreConformance(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ClosedStoreRejectsOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	mustSeed(t, store, []string{"JOE"})
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := store.AddEvent(ctx, "JOE", model.DeltaPlus, "late"); !errors.Is(err, ErrClosed) {
		t.Errorf("AddEvent after close: %v, want ErrClosed", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping after close: %v, want ErrClosed", err)
	}
	if _, err := store.ListScores(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("ListScores after close: %v, want ErrClosed", err)
	}
}

func TestMemoryStore_ContextCancellation(t *testing.T) {
	store := NewMemoryStore()
	defer func() { _ = store.Close() }()
	mustSeed(t, store, []string{"JOE"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.AddEvent(ctx, "JOE", model.DeltaPlus, "too late"); !errors.Is(err, context.Canceled) {
		t.Errorf("AddEvent with canceled context: %v, want context.Canceled", err)
	}
}
