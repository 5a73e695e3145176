package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type backendMode struct {
	name  string
	setup func(t *testing.T, keys Keys) (Store, func())
}

// backendModes returns every Store implementation. A real Redis is added when
// REDIS_ADDR is set (e.g. "127.0.0.1:6379").
func backendModes(t *testing.T) []backendMode {
	t.Helper()
	modes := []backendMode{
		{
			name: "miniredis",
			setup: func(t *testing.T, keys Keys) (Store, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return NewRedisStore(rdb, keys), func() { _ = rdb.Close(); mr.Close() }
			},
		},
		{
			name: "bolt",
			setup: func(t *testing.T, keys Keys) (Store, func()) {
				t.Helper()
				s, err := OpenBoltStore(filepath.Join(t.TempDir(), "creds.db"), keys)
				if err != nil {
					t.Fatalf("bolt: %v", err)
				}
				return s, func() { _ = s.Close() }
			},
		},
		{
			name: "memory",
			setup: func(t *testing.T, keys Keys) (Store, func()) {
				t.Helper()
				s, err := NewMemoryStore(keys)
				if err != nil {
					t.Fatalf("memory: %v", err)
				}
				return s, func() {}
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, backendMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T, keys Keys) (Store, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				s := NewRedisStore(rdb, keys)
				return s, func() { _ = s.Clear(context.Background()); _ = rdb.Close() }
			},
		})
	}
	return modes
}

func TestStoreConformance(t *testing.T) {
	for _, mode := range backendModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			store, done := mode.setup(t, NewKeys("https://conformance.example"))
			defer done()
			ctx := context.Background()

			if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
				t.Fatalf("empty load: expected ErrNotFound, got %v", err)
			}
			if _, err := store.Gym(ctx); !errors.Is(err, ErrNotFound) {
				t.Fatalf("empty gym: expected ErrNotFound, got %v", err)
			}
			if err := store.Save(ctx, "tok", -time.Second); !errors.Is(err, ErrInvalidTTL) {
				t.Fatalf("expected ErrInvalidTTL, got %v", err)
			}

			if err := store.Save(ctx, "a.b.c", time.Minute); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.RememberGym(ctx, "g-1"); err != nil {
				t.Fatalf("remember gym: %v", err)
			}
			if got, err := store.Load(ctx); err != nil || got != "a.b.c" {
				t.Fatalf("load: got %q, %v", got, err)
			}
			if got, err := store.Gym(ctx); err != nil || got != "g-1" {
				t.Fatalf("gym: got %q, %v", got, err)
			}

			if err := store.ForgetGym(ctx); err != nil {
				t.Fatalf("forget gym: %v", err)
			}
			if _, err := store.Gym(ctx); !errors.Is(err, ErrNotFound) {
				t.Fatalf("forgotten gym: expected ErrNotFound, got %v", err)
			}
			if got, err := store.Load(ctx); err != nil || got != "a.b.c" {
				t.Fatalf("forget gym must keep credential: got %q, %v", got, err)
			}

			if err := store.RememberGym(ctx, "g-2"); err != nil {
				t.Fatalf("remember gym again: %v", err)
			}
			if err := store.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
				t.Fatalf("cleared load: expected ErrNotFound, got %v", err)
			}
			if _, err := store.Gym(ctx); !errors.Is(err, ErrNotFound) {
				t.Fatalf("cleared gym: expected ErrNotFound, got %v", err)
			}
		})
	}
}
