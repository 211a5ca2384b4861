package endpoint

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEndpointNotFound is returned when an endpoint record is not found.
var ErrEndpointNotFound = errors.New("endpoint not found")

// Repository provides CRUD operations on the endpoints table.
type Repository interface {
	Create(ctx context.Context, e *Endpoint) error
	GetByID(ctx context.Context, id uuid.UUID) (*Endpoint, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Endpoint, error)
	Update(ctx context.Context, e *Endpoint) error
	Delete(ctx context.Context, id uuid.UUID) error
}
