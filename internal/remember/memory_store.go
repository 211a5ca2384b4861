package remember

import "sync"

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu   sync.Mutex
	hint Hint
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Hint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hint, nil
}

func (s *MemoryStore) Save(h Hint) error {
	if !h.Remember {
		h.Email = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hint = h
	return nil
}
