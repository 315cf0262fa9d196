package db

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/hpungsan/tutorhub/internal/logger"
)

// kvTimeout bounds each progress store statement; the store interface has no context.
const kvTimeout = 5 * time.Second

// KVStore is a progress store backed by the kv table.
// Errors are logged and swallowed: a failed Get reports a miss and failed
// writes are no-ops.
type KVStore struct {
	db *sql.DB

	// mu serializes Update so concurrent read-modify-writes on one key
	// cannot interleave.
	mu sync.Mutex
}

// NewKVStore creates a KVStore over db.
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("kv get failed")
		return "", false
	}
	return value, true
}

func (s *KVStore) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()

	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("kv set failed")
	}
}

func (s *KVStore) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("kv remove failed")
	}
}

// Update reads key and writes fn's result in one transaction.
func (s *KVStore) Update(key string, fn func(current string, ok bool) (string, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("kv update failed")
		return
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	ok := true
	err = tx.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&current)
	if err == sql.ErrNoRows {
		ok = false
	} else if err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("kv update read failed")
		return
	}

	next, write := fn(current, ok)
	if !write {
		return
	}

	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, key, next, time.Now().Unix()); err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("kv update write failed")
		return
	}
	if err := tx.Commit(); err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("kv update commit failed")
	}
}
