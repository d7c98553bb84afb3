// Package secrets persists small secret strings (the guest token) behind
// a minimal get/set/delete contract so platform keychains can slot in.
package secrets

import "sync"

// Store holds one secret string per account name.
type Store interface {
	// Get returns the stored value and whether it exists.
	Get(account string) (string, bool, error)
	Set(account, value string) error
	Delete(account string) error
}

// MemoryStore is a process-local Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(account string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[account]
	return v, ok, nil
}

func (s *MemoryStore) Set(account, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[account] = value
	return nil
}

func (s *MemoryStore) Delete(account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, account)
	return nil
}
