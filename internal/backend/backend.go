// Package backend defines the client surface of the hosted authentication
// service. The rest of the system consumes it only through the
// IdentityProvider interface; the concrete implementations live in this
// package (Postgres for deployments, memory for tests and local runs).
package backend

import (
	"context"
	"errors"
	"sync"
)

// Identity is the authentication service's view of a signed-in principal.
// Role and organization data live in the "users" document collection, not
// here.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
}

// IdentityUpdate is a partial update of the identity profile. Nil fields
// are left untouched.
type IdentityUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

// Causes reported by the service. The credential adapter maps these onto
// the user-facing error taxonomy; anything it does not recognize becomes a
// generic auth failure carrying the backend message.
var (
	ErrInvalidCredentials = errors.New("backend: invalid credentials")
	ErrUserNotFound       = errors.New("backend: user not found")
	ErrTooManyRequests    = errors.New("backend: too many requests")
	ErrInvalidEmail       = errors.New("backend: invalid email format")
	ErrConfig             = errors.New("backend: service misconfigured")
	ErrEmailInUse         = errors.New("backend: email already in use")
	ErrWeakPassword       = errors.New("backend: password too weak")
)

// IdentityProvider is the authentication half of the hosted backend. One
// provider instance carries at most one "current" identity, mirroring a
// client-side auth session.
type IdentityProvider interface {
	// SignIn authenticates an email/password pair and makes the identity
	// current.
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	// Provision creates a new email/password identity and makes it current.
	Provision(ctx context.Context, email, password string) (*Identity, error)
	// SignInFederated resolves a verified federated subject to an identity,
	// creating one on first sign-in, and makes it current. The returned
	// bool is true when the identity was newly created.
	SignInFederated(ctx context.Context, subject, email, displayName string) (*Identity, bool, error)
	// Delete permanently removes an identity. Used as the compensating
	// action when registration fails after provisioning.
	Delete(ctx context.Context, id string) error
	// SignOut clears the current identity.
	SignOut(ctx context.Context) error
	// SendPasswordReset starts a password reset for the given email.
	SendPasswordReset(ctx context.Context, email string) error
	// UpdateIdentity updates profile fields on an identity.
	UpdateIdentity(ctx context.Context, id string, upd IdentityUpdate) error
	// Current returns the current identity, or nil when signed out.
	Current() *Identity
	// Observe registers a callback invoked with the current identity (or
	// nil) immediately upon subscription and again on every change. The
	// returned function cancels the subscription.
	Observe(cb func(*Identity)) (unsubscribe func())
}

// observers is the shared subscription bookkeeping for provider
// implementations. Callbacks fire synchronously in subscription order.
type observers struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]func(*Identity)
	current *Identity
}

func newObservers() *observers {
	return &observers{subs: make(map[int]func(*Identity))}
}

// snapshot returns the current identity as a copy.
func (o *observers) snapshot() *Identity {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return nil
	}
	id := *o.current
	return &id
}

// set replaces the current identity and notifies every subscriber.
func (o *observers) set(id *Identity) {
	o.mu.Lock()
	if id != nil {
		copied := *id
		o.current = &copied
	} else {
		o.current = nil
	}
	cbs := make([]func(*Identity), 0, len(o.subs))
	for _, cb := range o.subs {
		cbs = append(cbs, cb)
	}
	cur := o.current
	o.mu.Unlock()

	for _, cb := range cbs {
		cb(cur)
	}
}

// subscribe registers cb, fires it once with the current identity, and
// returns the unsubscribe function.
func (o *observers) subscribe(cb func(*Identity)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = cb
	cur := o.current
	o.mu.Unlock()

	cb(cur)

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}
