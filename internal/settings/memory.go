package settings

import (
	"context"
	"sync"
)

// MemoryStore is an in-process settings store, used when no database is
// configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	enabled bool
}

// NewMemoryStore creates a MemoryStore with encryption disabled.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// EncryptionEnabled reports the stored flag.
func (s *MemoryStore) EncryptionEnabled(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled, nil
}

// SetEncryptionEnabled writes the flag.
func (s *MemoryStore) SetEncryptionEnabled(ctx context.Context, enabled bool, updatedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
	return nil
}
