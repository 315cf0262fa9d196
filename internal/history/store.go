// Package history keeps a visitor's reading history and reading progress in a
// key-value ProgressStore.
package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/hpungsan/tutorhub/internal/logger"
)

// ProgressStore is a string key-value store for client-side state.
// Implementations swallow their own failures: a failed Set or Remove is a no-op
// and a failed Get reports a miss.
type ProgressStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Updater is implemented by stores that can read-modify-write a key as one
// step. fn gets the current value and returns the new one; returning false
// leaves the key untouched.
type Updater interface {
	Update(key string, fn func(current string, ok bool) (string, bool))
}

// Update applies fn to key in store. It is atomic when store implements
// Updater and falls back to Get then Set otherwise.
func Update(store ProgressStore, key string, fn func(current string, ok bool) (string, bool)) {
	if u, ok := store.(Updater); ok {
		u.Update(key, fn)
		return
	}
	current, ok := store.Get(key)
	if next, write := fn(current, ok); write {
		store.Set(key, next)
	}
}

// NopStore is the store for environments without persistent storage.
type NopStore struct{}

func (NopStore) Get(string) (string, bool) { return "", false }
func (NopStore) Set(string, string)        {}
func (NopStore) Remove(string)             {}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

func (s *MemoryStore) Update(key string, fn func(string, bool) (string, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.entries[key]
	if next, write := fn(current, ok); write {
		s.entries[key] = next
	}
}

func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// FileStore persists entries as one JSON object in a file.
// When MaxBytes is positive, writes that would grow the file past it are dropped.
type FileStore struct {
	path     string
	maxBytes int

	mu sync.Mutex
}

// NewFileStore creates a FileStore at path. maxBytes <= 0 disables the quota.
func NewFileStore(path string, maxBytes int) *FileStore {
	return &FileStore{path: path, maxBytes: maxBytes}
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		logger.L().Warn().Err(err).Str("path", s.path).Msg("progress store read failed")
		return "", false
	}
	v, ok := entries[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		logger.L().Warn().Err(err).Str("path", s.path).Msg("progress store read failed, dropping write")
		return
	}
	entries[key] = value
	s.save(entries)
}

func (s *FileStore) Update(key string, fn func(string, bool) (string, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		logger.L().Warn().Err(err).Str("path", s.path).Msg("progress store read failed, dropping update")
		return
	}
	current, ok := entries[key]
	next, write := fn(current, ok)
	if !write {
		return
	}
	entries[key] = next
	s.save(entries)
}

func (s *FileStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		logger.L().Warn().Err(err).Str("path", s.path).Msg("progress store read failed, dropping remove")
		return
	}
	if _, ok := entries[key]; !ok {
		return
	}
	delete(entries, key)
	s.save(entries)
}

// load reads the store file. A missing file is an empty store.
func (s *FileStore) load() (map[string]string, error) {
	entries := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// save writes entries atomically via a temp file and rename.
func (s *FileStore) save(entries map[string]string) {
	data, err := json.Marshal(entries)
	if err != nil {
		logger.L().Warn().Err(err).Msg("progress store encode failed")
		return
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		logger.L().Warn().Int("bytes", len(data)).Int("quota", s.maxBytes).Msg("progress store quota exceeded, dropping write")
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		logger.L().Warn().Err(err).Msg("progress store mkdir failed")
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		logger.L().Warn().Err(err).Msg("progress store write failed")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		logger.L().Warn().Err(err).Msg("progress store rename failed")
	}
}

// scopedStore prefixes every key with a fixed namespace.
type scopedStore struct {
	inner  ProgressStore
	prefix string
}

// Scoped returns a view of store whose keys live under prefix.
// The web UI scopes the shared store per visitor.
func Scoped(store ProgressStore, prefix string) ProgressStore {
	if store == nil {
		return NopStore{}
	}
	return &scopedStore{inner: store, prefix: prefix + ":"}
}

func (s *scopedStore) Get(key string) (string, bool) { return s.inner.Get(s.prefix + key) }
func (s *scopedStore) Set(key, value string)         { s.inner.Set(s.prefix+key, value) }
func (s *scopedStore) Remove(key string)             { s.inner.Remove(s.prefix + key) }

func (s *scopedStore) Update(key string, fn func(string, bool) (string, bool)) {
	Update(s.inner, s.prefix+key, fn)
}
