// Package adapter translates domain authentication operations into calls
// against the hosted identity backend and the "users" collection. It keeps
// no state between calls and never lets a raw backend error escape: every
// failure maps onto the auth error taxonomy.
package adapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/backend"
	"github.com/tdslabs/apiconsole/internal/federated"
	"github.com/tdslabs/apiconsole/internal/orgcode"
	"github.com/tdslabs/apiconsole/internal/user"
)

// Result is the outcome of a successful sign-in or registration.
type Result struct {
	Account          backend.Identity
	Role             auth.Role
	OrganizationCode string // empty when the account carries none
}

// ProfileUpdate is a partial profile edit. Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
	PhoneNumber *string
}

func (p ProfileUpdate) empty() bool {
	return p.DisplayName == nil && p.PhotoURL == nil && p.PhoneNumber == nil
}

// Adapter wires the identity provider, the users collection and the
// organization-code validator behind the domain operations.
type Adapter struct {
	provider backend.IdentityProvider
	users    user.Repository
	codes    *orgcode.Validator
	verifier federated.Verifier // nil disables federated sign-in
}

// New creates an Adapter. verifier may be nil when federated sign-in is not
// configured.
func New(provider backend.IdentityProvider, users user.Repository, codes *orgcode.Validator, verifier federated.Verifier) *Adapter {
	return &Adapter{provider: provider, users: users, codes: codes, verifier: verifier}
}

// mapBackendErr folds a backend-reported cause into the taxonomy. Causes
// outside the recognized set become a generic auth failure carrying the
// backend message.
func mapBackendErr(err error) error {
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		return auth.ErrInvalidCredentials
	case errors.Is(err, backend.ErrUserNotFound):
		return auth.ErrUserNotFound
	case errors.Is(err, backend.ErrTooManyRequests):
		return auth.ErrRateLimited
	case errors.Is(err, backend.ErrInvalidEmail):
		return auth.ErrInvalidEmail
	case errors.Is(err, backend.ErrConfig):
		return auth.ErrServiceConfig
	case errors.Is(err, backend.ErrEmailInUse):
		return auth.ErrEmailInUse
	case errors.Is(err, backend.ErrWeakPassword):
		return auth.ErrWeakPassword
	default:
		return auth.AuthFailed(err.Error())
	}
}

// SignInWithPassword authenticates an email/password pair and joins in the
// account's role and organization code.
func (a *Adapter) SignInWithPassword(ctx context.Context, email, password string) (*Result, error) {
	id, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, mapBackendErr(err)
	}

	return &Result{
		Account:          *id,
		Role:             a.FetchRole(ctx, id.ID),
		OrganizationCode: a.FetchOrganizationCode(ctx, id.ID),
	}, nil
}

// SignInWithFederatedProvider signs in a Google identity. On first sign-in
// the account is provisioned with selectedRole; on later sign-ins the
// stored role and organization code are authoritative and the arguments are
// ignored.
func (a *Adapter) SignInWithFederatedProvider(ctx context.Context, rawIDToken string, selectedRole auth.Role, organizationCode string) (*Result, error) {
	selectedRole = auth.ClampRole(selectedRole)

	// The organization-code precondition is checked before any backend
	// contact.
	if selectedRole == auth.RoleUser && organizationCode == "" {
		return nil, auth.ErrOrgCodeRequired
	}
	if selectedRole == auth.RoleAdmin {
		organizationCode = ""
	}

	if a.verifier == nil {
		return nil, auth.ErrServiceConfig
	}
	fid, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, auth.AuthFailed("Failed to sign in with Google.")
	}

	id, _, err := a.provider.SignInFederated(ctx, fid.Subject, fid.Email, fid.DisplayName)
	if err != nil {
		return nil, mapBackendErr(err)
	}

	doc, err := a.users.Get(ctx, id.ID)
	if err == nil {
		// Existing account: stored role and code win.
		code := ""
		if doc.OrganizationCode != nil {
			code = *doc.OrganizationCode
		}
		return &Result{Account: *id, Role: auth.ParseRole(doc.Role), OrganizationCode: code}, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, auth.Unknown(err.Error())
	}

	// First sign-in for this identity: provision the account document.
	if selectedRole == auth.RoleUser {
		if valid, reason := a.codes.Validate(ctx, organizationCode); !valid {
			return nil, reason
		}
	} else {
		organizationCode = orgcode.Generate()
	}

	newDoc := &user.Document{
		ID:        id.ID,
		Email:     id.Email,
		Role:      selectedRole.String(),
		CreatedAt: time.Now().UTC(),
	}
	if id.DisplayName != "" {
		newDoc.DisplayName = &id.DisplayName
	}
	if organizationCode != "" {
		newDoc.OrganizationCode = &organizationCode
	}
	if err := a.users.Put(ctx, newDoc); err != nil {
		return nil, auth.Unknown(err.Error())
	}

	return &Result{Account: *id, Role: selectedRole, OrganizationCode: organizationCode}, nil
}

// RegisterWithPassword provisions a new email/password account. If the
// organization code turns out invalid after the identity was provisioned,
// the identity is deleted again before the error is returned so no orphaned
// account remains.
func (a *Adapter) RegisterWithPassword(ctx context.Context, email, password string, role auth.Role, organizationCode string) (*Result, error) {
	role = auth.ClampRole(role)

	if role == auth.RoleUser && organizationCode == "" {
		return nil, auth.ErrOrgCodeRequired
	}
	if role == auth.RoleAdmin {
		organizationCode = ""
	}

	id, err := a.provider.Provision(ctx, email, password)
	if err != nil {
		return nil, mapBackendErr(err)
	}

	if role == auth.RoleUser {
		if valid, reason := a.codes.Validate(ctx, organizationCode); !valid {
			a.rollbackIdentity(ctx, id.ID)
			return nil, reason
		}
	} else {
		organizationCode = orgcode.Generate()
	}

	doc := &user.Document{
		ID:        id.ID,
		Email:     email,
		Role:      role.String(),
		CreatedAt: time.Now().UTC(),
	}
	if organizationCode != "" {
		doc.OrganizationCode = &organizationCode
	}
	if err := a.users.Put(ctx, doc); err != nil {
		a.rollbackIdentity(ctx, id.ID)
		return nil, auth.Unknown(err.Error())
	}

	return &Result{Account: *id, Role: role, OrganizationCode: organizationCode}, nil
}

// rollbackIdentity deletes a just-provisioned identity. A failed rollback
// is logged and swallowed: the caller still reports the original failure,
// and an orphaned identity without an account document cannot log in past
// role resolution.
func (a *Adapter) rollbackIdentity(ctx context.Context, id string) {
	if err := a.provider.Delete(ctx, id); err != nil {
		slog.Error("failed to roll back provisioned identity", "id", id, "error", err)
	}
}

// SendPasswordReset starts a password reset for the email.
func (a *Adapter) SendPasswordReset(ctx context.Context, email string) error {
	err := a.provider.SendPasswordReset(ctx, email)
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, backend.ErrUserNotFound):
		return auth.ErrUserNotFound
	case errors.Is(err, backend.ErrInvalidEmail):
		return auth.ErrInvalidEmail
	default:
		return auth.ErrResetFailed
	}
}

// SignOut clears the backend's current identity.
func (a *Adapter) SignOut(ctx context.Context) error {
	if err := a.provider.SignOut(ctx); err != nil {
		return auth.AuthFailed("Failed to log out. Please try again.")
	}
	return nil
}

// FetchRole resolves the stored role for an account. It never fails
// outward: backend errors, a missing document, and an invalid stored role
// all resolve to the fail-safe User default with a logged warning.
func (a *Adapter) FetchRole(ctx context.Context, accountID string) auth.Role {
	doc, err := a.users.Get(ctx, accountID)
	if err != nil {
		slog.Warn("failed to fetch role, defaulting to User", "id", accountID, "error", err)
		return auth.RoleUser
	}
	return auth.ParseRole(doc.Role)
}

// FetchOrganizationCode returns the stored organization code for an
// account, or empty on any error.
func (a *Adapter) FetchOrganizationCode(ctx context.Context, accountID string) string {
	doc, err := a.users.Get(ctx, accountID)
	if err != nil || doc.OrganizationCode == nil {
		return ""
	}
	return *doc.OrganizationCode
}

// UpdateProfile applies a partial profile edit to the current account. It
// succeeds trivially when no recognized field is present and requires an
// active session.
func (a *Adapter) UpdateProfile(ctx context.Context, upd ProfileUpdate) error {
	if upd.empty() {
		return nil
	}

	cur := a.provider.Current()
	if cur == nil {
		return auth.ErrNotAuthenticated
	}

	if upd.DisplayName != nil || upd.PhotoURL != nil {
		err := a.provider.UpdateIdentity(ctx, cur.ID, backend.IdentityUpdate{
			DisplayName: upd.DisplayName,
			PhotoURL:    upd.PhotoURL,
		})
		if err != nil {
			return auth.Unknown(err.Error())
		}
	}

	err := a.users.Update(ctx, cur.ID, user.Update{
		DisplayName: upd.DisplayName,
		PhotoURL:    upd.PhotoURL,
		PhoneNumber: upd.PhoneNumber,
	})
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return auth.Unknown(err.Error())
	}

	return nil
}

// GenerateOrgCode issues a fresh organization code for an Admin account and
// stores it, retiring the previous one.
func (a *Adapter) GenerateOrgCode(ctx context.Context, accountID string) (string, error) {
	if a.FetchRole(ctx, accountID) != auth.RoleAdmin {
		return "", auth.AuthFailed("Only admins can generate organization codes.")
	}

	code := orgcode.Generate()
	if err := a.users.Update(ctx, accountID, user.Update{OrganizationCode: &code}); err != nil {
		return "", auth.Unknown(err.Error())
	}

	slog.Info("generated new organization code", "id", accountID)
	return code, nil
}

// ValidateOrgCode reports whether the code is carried by any stored
// account.
func (a *Adapter) ValidateOrgCode(ctx context.Context, code string) (bool, error) {
	return a.codes.Validate(ctx, code)
}

// Observe subscribes to backend identity changes with role and
// organization code already joined in, matching the shape the session
// machine consumes.
func (a *Adapter) Observe(cb func(*Result)) func() {
	return a.provider.Observe(func(id *backend.Identity) {
		if id == nil {
			cb(nil)
			return
		}
		ctx := context.Background()
		cb(&Result{
			Account:          *id,
			Role:             a.FetchRole(ctx, id.ID),
			OrganizationCode: a.FetchOrganizationCode(ctx, id.ID),
		})
	})
}
