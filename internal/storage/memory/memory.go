package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/storage"
)

// Store keeps values in a map. A positive quota caps the summed length of
// keys and values, mimicking browser storage limits.
type Store struct {
	mu     sync.Mutex
	items  map[string]string
	quota  int
	writes int
}

var _ storage.KeyValueStore = (*Store)(nil)

func New() *Store {
	return &Store{items: map[string]string{}}
}

// NewWithQuota returns a store that rejects writes once the total size would exceed quota bytes.
func NewWithQuota(quota int) *Store {
	s := New()
	s.quota = quota
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quota > 0 {
		size := s.sizeLocked() - s.entrySize(key) + len(key) + len(value)
		if size > s.quota {
			return fmt.Errorf("set %s: %w (%d > %d bytes)", key, storage.ErrQuotaExceeded, size, s.quota)
		}
	}
	s.items[key] = value
	s.writes++
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Writes counts successful Set calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Store) sizeLocked() int {
	n := 0
	for k, v := range s.items {
		n += len(k) + len(v)
	}
	return n
}

func (s *Store) entrySize(key string) int {
	v, ok := s.items[key]
	if !ok {
		return 0
	}
	return len(key) + len(v)
}
