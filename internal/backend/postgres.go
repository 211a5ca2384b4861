package backend

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

var emailFormat = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLen = 6

// PostgresProvider implements IdentityProvider on top of Postgres. Password
// hashes use bcrypt; sign-in attempts are rate limited per email.
type PostgresProvider struct {
	pool       *pgxpool.Pool
	bcryptCost int
	obs        *observers

	limMu    sync.Mutex
	limiters map[string]*rate.Limiter
	perMin   int
}

// NewPostgresProvider creates an IdentityProvider backed by the given pool.
// ratePerMinute bounds sign-in attempts per email; zero disables limiting.
func NewPostgresProvider(pool *pgxpool.Pool, bcryptCost, ratePerMinute int) *PostgresProvider {
	return &PostgresProvider{
		pool:       pool,
		bcryptCost: bcryptCost,
		obs:        newObservers(),
		limiters:   make(map[string]*rate.Limiter),
		perMin:     ratePerMinute,
	}
}

func (p *PostgresProvider) allow(email string) bool {
	if p.perMin <= 0 {
		return true
	}

	p.limMu.Lock()
	defer p.limMu.Unlock()

	lim, ok := p.limiters[email]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(p.perMin)), p.perMin)
		p.limiters[email] = lim
	}
	return lim.Allow()
}

// SignIn authenticates an email/password pair and makes the identity current.
func (p *PostgresProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	if !emailFormat.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if !p.allow(email) {
		return nil, ErrTooManyRequests
	}

	query := `
		SELECT id, email, password_hash, COALESCE(display_name, ''), COALESCE(photo_url, '')
		FROM identities
		WHERE email = $1`

	var (
		id   Identity
		hash string
	)
	err := p.pool.QueryRow(ctx, query, email).Scan(&id.ID, &id.Email, &hash, &id.DisplayName, &id.PhotoURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying identity: %w", err)
	}

	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	p.obs.set(&id)
	return &id, nil
}

// Provision creates a new email/password identity and makes it current.
func (p *PostgresProvider) Provision(ctx context.Context, email, password string) (*Identity, error) {
	if !emailFormat.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	query := `
		INSERT INTO identities (email, password_hash)
		VALUES ($1, $2)
		RETURNING id`

	var id Identity
	id.Email = email
	if err := p.pool.QueryRow(ctx, query, email, string(hash)).Scan(&id.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("inserting identity: %w", err)
	}

	p.obs.set(&id)
	return &id, nil
}

// SignInFederated resolves a verified federated subject, creating the
// identity on first sign-in.
func (p *PostgresProvider) SignInFederated(ctx context.Context, subject, email, displayName string) (*Identity, bool, error) {
	query := `
		SELECT id, email, COALESCE(display_name, ''), COALESCE(photo_url, '')
		FROM identities
		WHERE federated_subject = $1`

	var id Identity
	err := p.pool.QueryRow(ctx, query, subject).Scan(&id.ID, &id.Email, &id.DisplayName, &id.PhotoURL)
	if err == nil {
		p.obs.set(&id)
		return &id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("querying federated identity: %w", err)
	}

	insert := `
		INSERT INTO identities (email, federated_subject, display_name)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id`

	id = Identity{Email: email, DisplayName: displayName}
	if err := p.pool.QueryRow(ctx, insert, email, subject, displayName).Scan(&id.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, false, ErrEmailInUse
		}
		return nil, false, fmt.Errorf("inserting federated identity: %w", err)
	}

	p.obs.set(&id)
	return &id, true, nil
}

// Delete permanently removes an identity. If it is the current one, the
// provider transitions to signed out.
func (p *PostgresProvider) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting identity: %w", err)
	}

	if cur := p.obs.snapshot(); cur != nil && cur.ID == id {
		p.obs.set(nil)
	}
	return nil
}

// SignOut clears the current identity.
func (p *PostgresProvider) SignOut(_ context.Context) error {
	p.obs.set(nil)
	return nil
}

// SendPasswordReset records a reset token for the email. Delivery is left
// to an out-of-band mailer watching the password_resets table; the token is
// additionally logged for development setups.
func (p *PostgresProvider) SendPasswordReset(ctx context.Context, email string) error {
	if !emailFormat.MatchString(email) {
		return ErrInvalidEmail
	}

	var id string
	err := p.pool.QueryRow(ctx, `SELECT id FROM identities WHERE email = $1`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("querying identity for reset: %w", err)
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	_, err = p.pool.Exec(ctx,
		`INSERT INTO password_resets (identity_id, token, expires_at) VALUES ($1, $2, now() + interval '1 hour')`,
		id, token)
	if err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	slog.Info("password reset issued", "email", email)
	return nil
}

// UpdateIdentity updates profile fields on an identity.
func (p *PostgresProvider) UpdateIdentity(ctx context.Context, id string, upd IdentityUpdate) error {
	if upd.DisplayName == nil && upd.PhotoURL == nil {
		return nil
	}

	query := `
		UPDATE identities SET
			display_name = COALESCE($2, display_name),
			photo_url = COALESCE($3, photo_url)
		WHERE id = $1`

	tag, err := p.pool.Exec(ctx, query, id, upd.DisplayName, upd.PhotoURL)
	if err != nil {
		return fmt.Errorf("updating identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	if cur := p.obs.snapshot(); cur != nil && cur.ID == id {
		if upd.DisplayName != nil {
			cur.DisplayName = *upd.DisplayName
		}
		if upd.PhotoURL != nil {
			cur.PhotoURL = *upd.PhotoURL
		}
		p.obs.set(cur)
	}
	return nil
}

// Current returns the current identity, or nil when signed out.
func (p *PostgresProvider) Current() *Identity {
	return p.obs.snapshot()
}

// Observe registers a callback fired immediately and on every change.
func (p *PostgresProvider) Observe(cb func(*Identity)) func() {
	return p.obs.subscribe(cb)
}
