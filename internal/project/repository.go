package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProjectNotFound is returned when a project record is not found.
var ErrProjectNotFound = errors.New("project not found")

// Repository provides CRUD operations on the projects table.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	// ListByOwner returns the projects an Admin owns.
	ListByOwner(ctx context.Context, ownerID string) ([]Project, error)
	// ListAssignedTo returns the projects shared with a User account.
	ListAssignedTo(ctx context.Context, userID string) ([]Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}
