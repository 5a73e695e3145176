package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.etcd.io/bbolt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestBoltStoreRoundTripAndExpiry(t *testing.T) {
	clock := newFakeClock()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "creds.db"), NewKeys("https://gym.example"), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, err := store.Load(ctx); err != nil || got != "tok-1" {
		t.Fatalf("load: got %q, %v", got, err)
	}

	clock.Advance(59 * time.Second)
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("expected credential alive before expiry, got %v", err)
	}
	clock.Advance(time.Second)
	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound at expiry, got %v", err)
	}

	err = store.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(store.bucket).Get([]byte(DefaultTokenKey)) != nil {
			t.Fatalf("expected expired entry deleted on read")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestBoltStoreGymSurvivesUntilClear(t *testing.T) {
	clock := newFakeClock()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "creds.db"), Keys{}, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.RememberGym(ctx, "g-1"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	clock.Advance(24 * time.Hour)
	if got, err := store.Gym(ctx); err != nil || got != "g-1" {
		t.Fatalf("gym: got %q, %v", got, err)
	}
	if err := store.ForgetGym(ctx); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if _, err := store.Gym(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected gym forgotten, got %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear on empty store: %v", err)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.db")
	keys := NewKeys("https://gym.example")
	ctx := context.Background()

	first, err := OpenBoltStore(path, keys)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	if err := first.Save(ctx, "tok-1", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := OpenBoltStore(path, keys)
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	defer second.Close()
	if got, err := second.Load(ctx); err != nil || got != "tok-1" {
		t.Fatalf("load after reopen: got %q, %v", got, err)
	}

	other, err := NewBoltStore(second.db, NewKeys("https://other.example"))
	if err != nil {
		t.Fatalf("new store on shared db: %v", err)
	}
	if _, err := other.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected origins isolated, got %v", err)
	}
	if err := other.Close(); err != nil {
		t.Fatalf("close on borrowed db: %v", err)
	}
	if _, err := second.Load(ctx); err != nil {
		t.Fatalf("borrowed close must not close shared db: %v", err)
	}
}

func TestBoltStoreCorruptEntryTreatedAsMissing(t *testing.T) {
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "creds.db"), Keys{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	err = store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(store.bucket).Put([]byte(DefaultTokenKey), []byte("bad"))
	})
	if err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}
	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for corrupt entry, got %v", err)
	}
}
