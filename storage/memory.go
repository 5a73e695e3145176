package storage

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/go-memdb"
)

const entriesTable = "entries"

var memorySchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		entriesTable: {
			Name: entriesTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "Key"},
				},
				"expires": {
					Name:         "expires",
					Unique:       false,
					AllowMissing: false,
					Indexer:      &memdb.IntFieldIndex{Field: "ExpiresAt"},
				},
			},
		},
	},
}

type memoryRow struct {
	Key       string
	Value     string
	ExpiresAt int64
}

// MemoryStore keeps entries in a go-memdb table. Contents die with the process.
type MemoryStore struct {
	db   *memdb.MemDB
	keys Keys
	now  func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(keys Keys, opts ...Option) (*MemoryStore, error) {
	db, err := memdb.NewMemDB(memorySchema)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &MemoryStore{db: db, keys: keys.withDefaults(), now: o.now}, nil
}

func (s *MemoryStore) Save(_ context.Context, credential string, ttl time.Duration) error {
	if err := validateSave(credential, ttl); err != nil {
		return err
	}
	return s.put(memoryRow{
		Key:       s.keys.token(),
		Value:     credential,
		ExpiresAt: s.now().Add(ttl).UnixMilli(),
	})
}

func (s *MemoryStore) Load(_ context.Context) (string, error) {
	return s.get(s.keys.token())
}

func (s *MemoryStore) Clear(_ context.Context) error {
	return s.delete(s.keys.token(), s.keys.gym())
}

func (s *MemoryStore) RememberGym(_ context.Context, gymID string) error {
	if gymID == "" {
		return ErrEmptyValue
	}
	// never-expiring rows sort last in the expires index
	return s.put(memoryRow{Key: s.keys.gym(), Value: gymID, ExpiresAt: math.MaxInt64})
}

func (s *MemoryStore) ForgetGym(_ context.Context) error {
	return s.delete(s.keys.gym())
}

func (s *MemoryStore) Gym(_ context.Context) (string, error) {
	return s.get(s.keys.gym())
}

// PurgeExpired removes every expired row and returns how many were removed.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	it, err := txn.LowerBound(entriesTable, "expires", int64(0))
	if err != nil {
		return 0, err
	}

	now := s.now().UnixMilli()
	var stale []*memoryRow
	for obj := it.Next(); obj != nil; obj = it.Next() {
		row := obj.(*memoryRow)
		if row.ExpiresAt > now {
			break
		}
		stale = append(stale, row)
	}
	for _, row := range stale {
		if err := txn.Delete(entriesTable, row); err != nil {
			return 0, err
		}
	}

	txn.Commit()
	return len(stale), nil
}

func (s *MemoryStore) put(row memoryRow) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(entriesTable, &row); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	txn.Commit()
	return nil
}

func (s *MemoryStore) get(key string) (string, error) {
	txn := s.db.Txn(false)
	obj, err := txn.First(entriesTable, "id", key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if obj == nil {
		return "", ErrNotFound
	}

	row := obj.(*memoryRow)
	if row.ExpiresAt <= s.now().UnixMilli() {
		if err := s.delete(key); err != nil {
			return "", err
		}
		return "", ErrNotFound
	}
	return row.Value, nil
}

func (s *MemoryStore) delete(keys ...string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	for _, key := range keys {
		if _, err := txn.DeleteAll(entriesTable, "id", key); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	txn.Commit()
	return nil
}
