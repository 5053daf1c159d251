package state

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemoryStoreVersioning(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}

	first := NewSession("s-1", "en", now)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	a, _ := store.Load(ctx, "s-1")
	b, _ := store.Load(ctx, "s-1")
	a.Context.CurrentPNR = "ABC123"
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if a.Version != 2 {
		t.Fatalf("version = %d, want 2", a.Version)
	}

	b.Context.LastSearchID = "S-9"
	if err := store.Save(ctx, b); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale save error = %v, want ErrVersionConflict", err)
	}

	got, _ := store.Load(ctx, "s-1")
	if got.Context.CurrentPNR != "ABC123" || got.Context.LastSearchID != "" {
		t.Fatalf("stale write leaked: %+v", got.Context)
	}

	got.Context.CurrentPNR = "mutated"
	again, _ := store.Load(ctx, "s-1")
	if again.Context.CurrentPNR != "ABC123" {
		t.Fatal("Load must return a copy")
	}

	if err := store.Delete(ctx, "s-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after delete error = %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := NewMemoryStore(WithTTL(time.Hour), WithClock(clock))
	ctx := context.Background()

	st := NewSession("s-1", "en", now)
	st.Context.LastSearchID = "abc"
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	now = now.Add(59 * time.Minute)
	got, err := store.Load(ctx, "s-1")
	if err != nil || got.Context.LastSearchID != "abc" {
		t.Fatalf("Load() before expiry = %+v, %v", got, err)
	}
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, err := store.Load(ctx, "s-1"); err != nil {
		t.Fatalf("a save must extend the session, got %v", err)
	}

	now = now.Add(72 * time.Hour)
	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after expiry error = %v, want ErrStateNotFound", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expired session kept, len = %d", store.Len())
	}

	fresh := NewSession("s-1", "en", now)
	if err := store.Save(ctx, fresh); err != nil {
		t.Fatalf("Save() over an expired session error = %v", err)
	}
	if fresh.Version != 1 {
		t.Fatalf("version = %d, want 1", fresh.Version)
	}
}

func TestMemoryStoreSweepsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithTTL(time.Minute), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := 0; i < sweepEvery-1; i++ {
		if err := store.Save(ctx, NewSession(fmt.Sprintf("old-%d", i), "en", now)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	now = now.Add(time.Hour)
	if err := store.Save(ctx, NewSession("new", "en", now)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d, want only the live session", store.Len())
	}
}
