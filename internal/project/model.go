package project

import (
	"time"

	"github.com/google/uuid"
)

// Project represents a row in the projects table. AssignedUsers holds the
// account ids a User-role member sees the project through; EndpointCount is
// derived from the endpoints table at read time.
type Project struct {
	ID            uuid.UUID
	Name          string
	Description   string
	OwnerID       string
	AssignedUsers []string
	Status        string
	EndpointCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Statuses a project can be in.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)
