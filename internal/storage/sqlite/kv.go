package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"
)

// KVStore is a string key-value table used to persist conversations.
type KVStore struct {
	db *DB
}

// NewKVStore returns a KVStore backed by db.
func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.sql.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.In("sqlite").With("key", key).Wrapf(err, "failed to read key")
	}
	return value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return oops.In("sqlite").With("key", key).Wrapf(err, "failed to write key")
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.sql.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return oops.In("sqlite").With("key", key).Wrapf(err, "failed to delete key")
	}
	return nil
}
