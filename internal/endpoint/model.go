package endpoint

import (
	"time"

	"github.com/google/uuid"
)

// Endpoint represents a row in the endpoints table: one HTTP operation
// belonging to a project.
type Endpoint struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Name        string
	Method      string
	Path        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidMethod reports whether m is one of the supported HTTP methods.
func ValidMethod(m string) bool {
	switch m {
	case "GET", "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}
