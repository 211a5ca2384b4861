package user

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository used by tests and local
// development without Postgres.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string]Document)}
}

func (r *MemoryRepository) Put(_ context.Context, d *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.CreatedAt.IsZero() {
		if existing, ok := r.docs[d.ID]; ok {
			d.CreatedAt = existing.CreatedAt
		} else {
			d.CreatedAt = time.Now().UTC()
		}
	}
	r.docs[d.ID] = *d
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, upd Update) error {
	if upd.Empty() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}

	if upd.DisplayName != nil {
		d.DisplayName = upd.DisplayName
	}
	if upd.PhotoURL != nil {
		d.PhotoURL = upd.PhotoURL
	}
	if upd.PhoneNumber != nil {
		d.PhoneNumber = upd.PhoneNumber
	}
	if upd.Role != nil {
		d.Role = *upd.Role
	}
	if upd.OrganizationCode != nil {
		d.OrganizationCode = upd.OrganizationCode
	}

	r.docs[id] = d
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.docs, id)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]Document, 0, len(r.docs))
	for _, d := range r.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
	return docs, nil
}

func (r *MemoryRepository) ExistsByOrganizationCode(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.docs {
		if d.OrganizationCode != nil && *d.OrganizationCode == code {
			return true, nil
		}
	}
	return false, nil
}
