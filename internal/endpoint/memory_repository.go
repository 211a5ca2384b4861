package endpoint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and local
// development without Postgres.
type MemoryRepository struct {
	mu        sync.RWMutex
	endpoints map[uuid.UUID]Endpoint
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{endpoints: make(map[uuid.UUID]Endpoint)}
}

func (r *MemoryRepository) Create(_ context.Context, e *Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	r.endpoints[e.ID] = *e
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.endpoints[id]
	if !ok {
		return nil, ErrEndpointNotFound
	}
	return &e, nil
}

func (r *MemoryRepository) ListByProject(_ context.Context, projectID uuid.UUID) ([]Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var endpoints []Endpoint
	for _, e := range r.endpoints {
		if e.ProjectID == projectID {
			endpoints = append(endpoints, e)
		}
	}
	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].CreatedAt.Before(endpoints[j].CreatedAt) })
	return endpoints, nil
}

func (r *MemoryRepository) Update(_ context.Context, e *Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.endpoints[e.ID]
	if !ok {
		return ErrEndpointNotFound
	}

	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	r.endpoints[e.ID] = *e
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.endpoints[id]; !ok {
		return ErrEndpointNotFound
	}
	delete(r.endpoints, id)
	return nil
}
