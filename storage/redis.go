package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the credential in Redis and relies on key TTLs for expiry.
type RedisStore struct {
	redis redis.UniversalClient
	keys  Keys
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a [RedisStore] writing under keys.
func NewRedisStore(client redis.UniversalClient, keys Keys) *RedisStore {
	return &RedisStore{
		redis: client,
		keys:  keys.withDefaults(),
	}
}

// Save writes the credential with a PX expiry.
//
//	Performance: 1 Redis SET.
func (s *RedisStore) Save(ctx context.Context, credential string, ttl time.Duration) error {
	if err := validateSave(credential, ttl); err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.keys.token(), credential, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Load returns the live credential.
//
//	Performance: 1 Redis GET.
func (s *RedisStore) Load(ctx context.Context) (string, error) {
	return s.get(ctx, s.keys.token())
}

// Clear deletes the credential and the cached gym id in one transaction.
func (s *RedisStore) Clear(ctx context.Context) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.keys.token())
		pipe.Del(ctx, s.keys.gym())
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RememberGym caches gymID without expiry; it lives until Clear or ForgetGym.
func (s *RedisStore) RememberGym(ctx context.Context, gymID string) error {
	if gymID == "" {
		return ErrEmptyValue
	}
	if err := s.redis.Set(ctx, s.keys.gym(), gymID, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) ForgetGym(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.keys.gym()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Gym(ctx context.Context) (string, error) {
	return s.get(ctx, s.keys.gym())
}

// TTL reports the remaining lifetime of the stored credential, or ErrNotFound.
func (s *RedisStore) TTL(ctx context.Context) (time.Duration, error) {
	ttl, err := s.redis.PTTL(ctx, s.keys.token()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if ttl < 0 {
		return 0, ErrNotFound
	}
	return ttl, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *RedisStore) get(ctx context.Context, key string) (string, error) {
	value, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, nil
}
