package endpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new endpoint record.
func (r *PostgresRepository) Create(ctx context.Context, e *Endpoint) error {
	query := `
		INSERT INTO endpoints (project_id, name, method, path, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, e.ProjectID, e.Name, e.Method, e.Path, e.Description).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting endpoint: %w", err)
	}

	return nil
}

// GetByID retrieves a single endpoint by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Endpoint, error) {
	query := `
		SELECT id, project_id, name, method, path, description, created_at, updated_at
		FROM endpoints
		WHERE id = $1`

	var e Endpoint
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.ProjectID, &e.Name, &e.Method, &e.Path, &e.Description, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEndpointNotFound
		}
		return nil, fmt.Errorf("querying endpoint: %w", err)
	}

	return &e, nil
}

// ListByProject retrieves all endpoints of a project ordered by creation time.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Endpoint, error) {
	query := `
		SELECT id, project_id, name, method, path, description, created_at, updated_at
		FROM endpoints
		WHERE project_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []Endpoint
	for rows.Next() {
		var e Endpoint
		err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &e.Method, &e.Path, &e.Description, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning endpoint row: %w", err)
		}
		endpoints = append(endpoints, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating endpoint rows: %w", err)
	}

	return endpoints, nil
}

// Update rewrites the mutable fields of an endpoint.
func (r *PostgresRepository) Update(ctx context.Context, e *Endpoint) error {
	query := `
		UPDATE endpoints SET
			name = $2, method = $3, path = $4, description = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, e.ID, e.Name, e.Method, e.Path, e.Description).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEndpointNotFound
		}
		return fmt.Errorf("updating endpoint: %w", err)
	}

	return nil
}

// Delete removes an endpoint.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM endpoints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEndpointNotFound
	}

	return nil
}
