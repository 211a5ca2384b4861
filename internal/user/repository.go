package user

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a user document does not exist.
var ErrNotFound = errors.New("user document not found")

// Repository provides access to the "users" collection.
type Repository interface {
	// Put stores a document under its ID, overwriting any existing one.
	Put(ctx context.Context, doc *Document) error
	// Get fetches a document by account id.
	Get(ctx context.Context, id string) (*Document, error)
	// Update applies a partial update to an existing document.
	Update(ctx context.Context, id string, upd Update) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error
	// List returns all documents ordered by creation time.
	List(ctx context.Context) ([]Document, error)
	// ExistsByOrganizationCode reports whether any document carries this
	// exact organization code.
	ExistsByOrganizationCode(ctx context.Context, code string) (bool, error)
}
