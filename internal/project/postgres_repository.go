package project

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

const selectColumns = `
	p.id, p.name, p.description, p.owner_id, p.assigned_users, p.status,
	(SELECT count(*) FROM endpoints e WHERE e.project_id = p.id) AS endpoint_count,
	p.created_at, p.updated_at`

// Create inserts a new project record.
func (r *PostgresRepository) Create(ctx context.Context, p *Project) error {
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.AssignedUsers == nil {
		p.AssignedUsers = []string{}
	}

	query := `
		INSERT INTO projects (name, description, owner_id, assigned_users, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, p.Name, p.Description, p.OwnerID, p.AssignedUsers, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	return nil
}

// GetByID retrieves a single project by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `SELECT ` + selectColumns + ` FROM projects p WHERE p.id = $1`

	var p Project
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.AssignedUsers, &p.Status,
		&p.EndpointCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("querying project: %w", err)
	}

	return &p, nil
}

// ListByOwner retrieves the projects owned by the given account.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Project, error) {
	query := `SELECT ` + selectColumns + ` FROM projects p WHERE p.owner_id = $1 ORDER BY p.created_at DESC`
	return r.list(ctx, query, ownerID)
}

// ListAssignedTo retrieves the projects shared with the given account.
func (r *PostgresRepository) ListAssignedTo(ctx context.Context, userID string) ([]Project, error) {
	query := `SELECT ` + selectColumns + ` FROM projects p WHERE $1 = ANY(p.assigned_users) ORDER BY p.created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]Project, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.AssignedUsers, &p.Status,
			&p.EndpointCount, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}

	return projects, nil
}

// Update rewrites the mutable fields of a project.
func (r *PostgresRepository) Update(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects SET
			name = $2, description = $3, assigned_users = $4, status = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, p.ID, p.Name, p.Description, p.AssignedUsers, p.Status).
		Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("updating project: %w", err)
	}

	return nil
}

// Delete removes a project and, through the schema's cascade, its endpoints.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}
