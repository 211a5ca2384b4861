package project

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and local
// development without Postgres.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]Project
	counts   map[uuid.UUID]int
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		projects: make(map[uuid.UUID]Project),
		counts:   make(map[uuid.UUID]int),
	}
}

// SetEndpointCount fixes the derived endpoint count returned for a project.
func (r *MemoryRepository) SetEndpointCount(id uuid.UUID, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[id] = n
}

func (r *MemoryRepository) Create(_ context.Context, p *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.AssignedUsers == nil {
		p.AssignedUsers = []string{}
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	r.projects[p.ID] = *p
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	p.EndpointCount = r.counts[id]
	return &p, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Project, error) {
	return r.filter(func(p *Project) bool { return p.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) ListAssignedTo(_ context.Context, userID string) ([]Project, error) {
	return r.filter(func(p *Project) bool { return slices.Contains(p.AssignedUsers, userID) }), nil
}

func (r *MemoryRepository) filter(keep func(*Project) bool) []Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var projects []Project
	for id, p := range r.projects {
		if keep(&p) {
			p.EndpointCount = r.counts[id]
			projects = append(projects, p)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return projects
}

func (r *MemoryRepository) Update(_ context.Context, p *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.projects[p.ID]
	if !ok {
		return ErrProjectNotFound
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.projects[p.ID] = *p
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(r.projects, id)
	delete(r.counts, id)
	return nil
}
