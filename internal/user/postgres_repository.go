package user

import (
	"context"
	"errors"
	"fmt"

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

// Put stores a document, overwriting any existing row with the same id.
func (r *PostgresRepository) Put(ctx context.Context, d *Document) error {
	query := `
		INSERT INTO users (id, email, display_name, role, organization_code, phone_number, photo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			organization_code = EXCLUDED.organization_code,
			phone_number = EXCLUDED.phone_number,
			photo_url = EXCLUDED.photo_url
		RETURNING created_at`

	var createdAt any
	if !d.CreatedAt.IsZero() {
		createdAt = d.CreatedAt
	}

	err := r.pool.QueryRow(ctx, query,
		d.ID, d.Email, d.DisplayName, d.Role, d.OrganizationCode, d.PhoneNumber, d.PhotoURL, createdAt,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting user document: %w", err)
	}

	return nil
}

// Get retrieves a single user document by account id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Document, error) {
	query := `
		SELECT id, email, display_name, role, organization_code, phone_number, photo_url, created_at
		FROM users
		WHERE id = $1`

	var d Document
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Email, &d.DisplayName, &d.Role, &d.OrganizationCode, &d.PhoneNumber, &d.PhotoURL, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user document: %w", err)
	}

	return &d, nil
}

// Update applies a partial update to an existing document.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd Update) error {
	if upd.Empty() {
		return nil
	}

	query := `
		UPDATE users SET
			display_name = COALESCE($2, display_name),
			photo_url = COALESCE($3, photo_url),
			phone_number = COALESCE($4, phone_number),
			role = COALESCE($5, role),
			organization_code = COALESCE($6, organization_code)
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, upd.DisplayName, upd.PhotoURL, upd.PhoneNumber, upd.Role, upd.OrganizationCode)
	if err != nil {
		return fmt.Errorf("updating user document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a user document. Missing rows are ignored.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting user document: %w", err)
	}
	return nil
}

// List retrieves all user documents ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]Document, error) {
	query := `
		SELECT id, email, display_name, role, organization_code, phone_number, photo_url, created_at
		FROM users
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing user documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		err := rows.Scan(&d.ID, &d.Email, &d.DisplayName, &d.Role, &d.OrganizationCode, &d.PhoneNumber, &d.PhotoURL, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return docs, nil
}

// ExistsByOrganizationCode reports whether any user document carries the
// given organization code.
func (r *PostgresRepository) ExistsByOrganizationCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE organization_code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("querying organization code: %w", err)
	}
	return exists, nil
}
