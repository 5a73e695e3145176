package storage

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// Option configures the file and memory backends.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BoltStore keeps the credential in a local bbolt file, one bucket per origin.
type BoltStore struct {
	db     *bbolt.DB
	owned  bool
	bucket []byte
	keys   Keys
	now    func() time.Time
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens (or creates) the database file at path.
func OpenBoltStore(path string, keys Keys, opts ...Option) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, path, err)
	}
	s, err := NewBoltStore(db, keys, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewBoltStore uses an already open database. Close will not close db.
func NewBoltStore(db *bbolt.DB, keys Keys, opts ...Option) (*BoltStore, error) {
	keys = keys.withDefaults()
	o := buildOptions(opts)
	s := &BoltStore{
		db:     db,
		bucket: []byte(keys.Prefix + ":" + keys.Origin),
		keys:   keys,
		now:    o.now,
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create bucket: %v", ErrUnavailable, err)
	}
	return s, nil
}

// Close releases the database file if this store opened it.
func (s *BoltStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) Save(_ context.Context, credential string, ttl time.Duration) error {
	if err := validateSave(credential, ttl); err != nil {
		return err
	}
	return s.put(s.keys.Token, entry{Value: credential, ExpiresAt: s.now().Add(ttl).UnixMilli()})
}

func (s *BoltStore) Load(_ context.Context) (string, error) {
	return s.get(s.keys.Token)
}

func (s *BoltStore) Clear(_ context.Context) error {
	return s.delete(s.keys.Token, s.keys.Gym)
}

func (s *BoltStore) RememberGym(_ context.Context, gymID string) error {
	if gymID == "" {
		return ErrEmptyValue
	}
	return s.put(s.keys.Gym, entry{Value: gymID})
}

func (s *BoltStore) ForgetGym(_ context.Context) error {
	return s.delete(s.keys.Gym)
}

func (s *BoltStore) Gym(_ context.Context) (string, error) {
	return s.get(s.keys.Gym)
}

func (s *BoltStore) put(name string, e entry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(name), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *BoltStore) get(name string) (string, error) {
	var (
		e     entry
		found bool
		stale bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(s.bucket).Get([]byte(name))
		if data == nil {
			return nil
		}
		decoded, err := decodeEntry(data)
		if err != nil {
			stale = true
			return nil
		}
		e, found = decoded, true
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if found && e.expired(s.now().UnixMilli()) {
		found, stale = false, true
	}
	if stale {
		if err := s.delete(name); err != nil {
			return "", err
		}
	}
	if !found {
		return "", ErrNotFound
	}
	return e.Value, nil
}

func (s *BoltStore) delete(names ...string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, name := range names {
			if err := b.Delete([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
