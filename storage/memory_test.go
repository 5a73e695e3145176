package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTripAndExpiry(t *testing.T) {
	clock := newFakeClock()
	store, err := NewMemoryStore(NewKeys("https://gym.example"), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "tok-2", time.Minute); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, err := store.Load(ctx); err != nil || got != "tok-2" {
		t.Fatalf("load: got %q, %v", got, err)
	}

	clock.Advance(time.Minute)
	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	clock := newFakeClock()
	store, err := NewMemoryStore(Keys{}, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1", time.Second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.RememberGym(ctx, "g-1"); err != nil {
		t.Fatalf("remember: %v", err)
	}

	n, err := store.PurgeExpired(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected nothing purged yet, got %d, %v", n, err)
	}

	clock.Advance(2 * time.Second)
	n, err = store.PurgeExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected one purged row, got %d, %v", n, err)
	}
	if got, err := store.Gym(ctx); err != nil || got != "g-1" {
		t.Fatalf("gym must survive purge: got %q, %v", got, err)
	}
}

func TestMemoryStoreClearIsIdempotent(t *testing.T) {
	store, err := NewMemoryStore(Keys{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.RememberGym(ctx, "g-1"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear %d: %v", i, err)
		}
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected token cleared, got %v", err)
	}
	if _, err := store.Gym(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected gym cleared, got %v", err)
	}
}
