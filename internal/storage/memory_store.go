package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/posy/internal/constants"
)

// MemoryStore keeps blobs in process memory. It is used by tests and by
// commands that run against a throwaway store.
type MemoryStore struct {
	mu      sync.RWMutex
	blobs   map[string]string
	history []Revision
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]string), now: time.Now}
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Load() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetConfigPath() string { return ":memory:" }

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.blobs[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remember(key)
	s.blobs[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remember(key)
	delete(s.blobs, key)
	return nil
}

// remember must be called with the write lock held. Only the newest
// MaxBlobRevisions values of a key are kept.
func (s *MemoryStore) remember(key string) {
	old, ok := s.blobs[key]
	if !ok {
		return
	}
	s.history = append(s.history, Revision{Key: key, Value: old, ReplacedAt: s.now()})

	seen := 0
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Key != key {
			continue
		}
		seen++
		if seen > constants.MaxBlobRevisions {
			s.history = append(s.history[:i], s.history[i+1:]...)
		}
	}
}

func (s *MemoryStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.blobs))
	for k := range s.blobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) History(key string, limit int) ([]Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Revision
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Key != key {
			continue
		}
		out = append(out, s.history[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
