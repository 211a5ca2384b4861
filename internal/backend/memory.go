package backend

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var memEmailFormat = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type memIdentity struct {
	Identity
	passwordHash     string
	federatedSubject string
}

// MemoryProvider is an in-memory IdentityProvider for tests and local runs.
type MemoryProvider struct {
	mu         sync.Mutex
	nextID     int
	byID       map[string]*memIdentity
	bcryptCost int
	obs        *observers
}

// NewMemoryProvider creates an empty in-memory provider. A low bcrypt cost
// keeps test sign-ins fast.
func NewMemoryProvider(bcryptCost int) *MemoryProvider {
	return &MemoryProvider{
		byID:       make(map[string]*memIdentity),
		bcryptCost: bcryptCost,
		obs:        newObservers(),
	}
}

func (p *MemoryProvider) findByEmail(email string) *memIdentity {
	for _, m := range p.byID {
		if strings.EqualFold(m.Email, email) {
			return m
		}
	}
	return nil
}

func (p *MemoryProvider) SignIn(_ context.Context, email, password string) (*Identity, error) {
	if !memEmailFormat.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	p.mu.Lock()
	m := p.findByEmail(email)
	p.mu.Unlock()

	if m == nil {
		return nil, ErrUserNotFound
	}
	if m.passwordHash == "" || bcrypt.CompareHashAndPassword([]byte(m.passwordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	id := m.Identity
	p.obs.set(&id)
	return &id, nil
}

func (p *MemoryProvider) Provision(_ context.Context, email, password string) (*Identity, error) {
	if !memEmailFormat.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	p.mu.Lock()
	if p.findByEmail(email) != nil {
		p.mu.Unlock()
		return nil, ErrEmailInUse
	}
	p.nextID++
	m := &memIdentity{
		Identity:     Identity{ID: fmt.Sprintf("mem-%d", p.nextID), Email: email},
		passwordHash: string(hash),
	}
	p.byID[m.ID] = m
	p.mu.Unlock()

	id := m.Identity
	p.obs.set(&id)
	return &id, nil
}

func (p *MemoryProvider) SignInFederated(_ context.Context, subject, email, displayName string) (*Identity, bool, error) {
	p.mu.Lock()
	for _, m := range p.byID {
		if m.federatedSubject == subject {
			id := m.Identity
			p.mu.Unlock()
			p.obs.set(&id)
			return &id, false, nil
		}
	}
	p.nextID++
	m := &memIdentity{
		Identity:         Identity{ID: fmt.Sprintf("mem-%d", p.nextID), Email: email, DisplayName: displayName},
		federatedSubject: subject,
	}
	p.byID[m.ID] = m
	p.mu.Unlock()

	id := m.Identity
	p.obs.set(&id)
	return &id, true, nil
}

func (p *MemoryProvider) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	delete(p.byID, id)
	p.mu.Unlock()

	if cur := p.obs.snapshot(); cur != nil && cur.ID == id {
		p.obs.set(nil)
	}
	return nil
}

func (p *MemoryProvider) SignOut(_ context.Context) error {
	p.obs.set(nil)
	return nil
}

func (p *MemoryProvider) SendPasswordReset(_ context.Context, email string) error {
	if !memEmailFormat.MatchString(email) {
		return ErrInvalidEmail
	}

	p.mu.Lock()
	m := p.findByEmail(email)
	p.mu.Unlock()

	if m == nil {
		return ErrUserNotFound
	}

	slog.Info("password reset issued", "email", email)
	return nil
}

func (p *MemoryProvider) UpdateIdentity(_ context.Context, id string, upd IdentityUpdate) error {
	p.mu.Lock()
	m, ok := p.byID[id]
	if !ok {
		p.mu.Unlock()
		return ErrUserNotFound
	}
	if upd.DisplayName != nil {
		m.DisplayName = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		m.PhotoURL = *upd.PhotoURL
	}
	updated := m.Identity
	p.mu.Unlock()

	if cur := p.obs.snapshot(); cur != nil && cur.ID == id {
		p.obs.set(&updated)
	}
	return nil
}

func (p *MemoryProvider) Current() *Identity {
	return p.obs.snapshot()
}

func (p *MemoryProvider) Observe(cb func(*Identity)) func() {
	return p.obs.subscribe(cb)
}
