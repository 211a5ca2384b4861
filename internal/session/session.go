// Package session holds the process-wide authentication state: the current
// account, its role and organization code, transient loading/error flags,
// and the remember-me preference. All transitions go through the operations
// here; the backend observer is the sole transition path on startup.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/tdslabs/apiconsole/internal/adapter"
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/backend"
	"github.com/tdslabs/apiconsole/internal/remember"
)

// Backend is the slice of the credential adapter the session consumes.
// *adapter.Adapter satisfies it.
type Backend interface {
	SignInWithPassword(ctx context.Context, email, password string) (*adapter.Result, error)
	SignInWithFederatedProvider(ctx context.Context, rawIDToken string, selectedRole auth.Role, organizationCode string) (*adapter.Result, error)
	RegisterWithPassword(ctx context.Context, email, password string, role auth.Role, organizationCode string) (*adapter.Result, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, upd adapter.ProfileUpdate) error
	GenerateOrgCode(ctx context.Context, accountID string) (string, error)
	ValidateOrgCode(ctx context.Context, code string) (bool, error)
	FetchOrganizationCode(ctx context.Context, accountID string) string
	Observe(cb func(*adapter.Result)) func()
}

// State is a snapshot of the session for the UI. Role and OrganizationCode
// are empty while unauthenticated; Err holds the last operation's
// user-facing message, empty when clear.
type State struct {
	User             *backend.Identity
	Role             auth.Role
	OrganizationCode string
	IsAuthenticated  bool
	Loading          bool
	Err              string
	RememberMe       bool
}

// DefaultOpTimeout bounds a single backend operation so a hung request
// cannot leave the session loading forever.
const DefaultOpTimeout = 15 * time.Second

// Session is the role and session state machine. Overlapping operations are
// allowed; whichever completion applies last wins, which can surface a
// stale result when an older request resolves after a newer one. That race
// is accepted rather than resolved with request tokens.
type Session struct {
	backend Backend
	hints   remember.Store
	timeout time.Duration

	mu    sync.Mutex
	state State
	unsub func()
}

// New constructs a Session. The remember-me flag is recalled from the hint
// store; the session stays in its loading state until the first observer
// notification arrives via Subscribe. opTimeout <= 0 selects
// DefaultOpTimeout.
func New(b Backend, hints remember.Store, opTimeout time.Duration) *Session {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}

	s := &Session{backend: b, hints: hints, timeout: opTimeout}
	s.state.Loading = true
	if hint, err := hints.Load(); err == nil {
		s.state.RememberMe = hint.Remember
	}
	return s
}

// Subscribe wires the session to backend identity changes. The callback
// fires once immediately with the current identity, which is the sole path
// by which the session leaves its initial loading state. Call Close to tear
// the subscription down.
func (s *Session) Subscribe() {
	unsub := s.backend.Observe(s.onAuthChange)
	s.mu.Lock()
	old := s.unsub
	s.unsub = unsub
	s.mu.Unlock()
	if old != nil {
		old()
	}
}

// Close cancels the backend subscription.
func (s *Session) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// onAuthChange applies a backend identity notification. It reads the
// remember-me flag under the state lock at event time, so toggling the
// preference never drops an event, and redundant notifications carrying the
// same identity settle on the same state.
func (s *Session) onAuthChange(res *adapter.Result) {
	s.mu.Lock()
	rememberMe := s.state.RememberMe
	if res != nil {
		account := res.Account
		s.state.User = &account
		s.state.Role = res.Role
		s.state.OrganizationCode = res.OrganizationCode
		s.state.IsAuthenticated = true
	} else {
		s.state.User = nil
		s.state.Role = ""
		s.state.OrganizationCode = ""
		s.state.IsAuthenticated = false
	}
	s.state.Loading = false
	s.state.Err = ""
	s.mu.Unlock()

	if res != nil && rememberMe {
		s.saveHint(res.Account.Email, true)
	}
	if res == nil && !rememberMe {
		s.saveHint("", false)
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if s.state.User != nil {
		u := *s.state.User
		st.User = &u
	}
	return st
}

func (s *Session) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Session) beginOp() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Err = ""
	s.mu.Unlock()
}

func (s *Session) failOp(err error) {
	s.mu.Lock()
	s.state.Loading = false
	s.state.Err = err.Error()
	s.mu.Unlock()
}

func (s *Session) applyResult(res *adapter.Result) {
	s.mu.Lock()
	account := res.Account
	s.state.User = &account
	s.state.Role = res.Role
	s.state.OrganizationCode = res.OrganizationCode
	s.state.IsAuthenticated = true
	s.state.Loading = false
	s.mu.Unlock()
}

func (s *Session) saveHint(email string, rememberMe bool) {
	// Best effort: a failed hint write must not fail the auth operation.
	_ = s.hints.Save(remember.Hint{Email: email, Remember: rememberMe})
}

// Login signs in with email and password. The remember-me preference is
// persisted immediately, independent of the outcome.
func (s *Session) Login(ctx context.Context, email, password string, rememberMe bool) bool {
	s.beginOp()

	s.mu.Lock()
	s.state.RememberMe = rememberMe
	s.mu.Unlock()
	s.saveHint(email, rememberMe)

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.failOp(err)
		return false
	}

	s.applyResult(res)
	return true
}

// LoginWithGoogle signs in a verified Google identity. If remember-me is
// already on, the returned account's email is persisted.
func (s *Session) LoginWithGoogle(ctx context.Context, rawIDToken string, selectedRole auth.Role, organizationCode string) bool {
	s.beginOp()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.backend.SignInWithFederatedProvider(ctx, rawIDToken, selectedRole, organizationCode)
	if err != nil {
		s.failOp(err)
		return false
	}

	s.applyResult(res)

	s.mu.Lock()
	rememberMe := s.state.RememberMe
	s.mu.Unlock()
	if rememberMe && res.Account.Email != "" {
		s.saveHint(res.Account.Email, true)
	}
	return true
}

// Register creates a new account. A role outside the closed set is
// silently coerced to User before the backend is contacted.
func (s *Session) Register(ctx context.Context, email, password string, role auth.Role, organizationCode string) bool {
	role = auth.ClampRole(role)
	s.beginOp()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.backend.RegisterWithPassword(ctx, email, password, role, organizationCode)
	if err != nil {
		s.failOp(err)
		return false
	}

	s.applyResult(res)
	return true
}

// Logout signs out and clears the session. The remembered email is cleared
// unless remember-me is on.
func (s *Session) Logout(ctx context.Context) bool {
	s.beginOp()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.backend.SignOut(ctx); err != nil {
		s.failOp(err)
		return false
	}

	s.mu.Lock()
	s.state.User = nil
	s.state.Role = ""
	s.state.OrganizationCode = ""
	s.state.IsAuthenticated = false
	s.state.Loading = false
	s.state.Err = ""
	rememberMe := s.state.RememberMe
	s.mu.Unlock()

	if !rememberMe {
		s.saveHint("", false)
	}
	return true
}

// ForgotPassword requests a password reset. Only the loading and error
// slots change; the authenticated state is untouched.
func (s *Session) ForgotPassword(ctx context.Context, email string) bool {
	s.beginOp()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.backend.SendPasswordReset(ctx, email); err != nil {
		s.failOp(err)
		return false
	}

	s.mu.Lock()
	s.state.Loading = false
	s.mu.Unlock()
	return true
}

// UpdateProfile edits the current account's profile. Cached session fields
// are not mutated; observers must re-fetch.
func (s *Session) UpdateProfile(ctx context.Context, upd adapter.ProfileUpdate) bool {
	s.beginOp()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.backend.UpdateProfile(ctx, upd); err != nil {
		s.failOp(err)
		return false
	}

	s.mu.Lock()
	s.state.Loading = false
	s.mu.Unlock()
	return true
}

// GenerateNewOrgCode issues a fresh organization code for the current
// Admin. Non-admin sessions are rejected without contacting the backend.
func (s *Session) GenerateNewOrgCode(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.state.User == nil || s.state.Role != auth.RoleAdmin {
		s.mu.Unlock()
		return "", auth.AuthFailed("Only admins can generate organization codes")
	}
	accountID := s.state.User.ID
	s.mu.Unlock()

	s.beginOp()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	code, err := s.backend.GenerateOrgCode(ctx, accountID)
	if err != nil {
		s.failOp(err)
		return "", err
	}

	s.mu.Lock()
	s.state.OrganizationCode = code
	s.state.Loading = false
	s.mu.Unlock()
	return code, nil
}

// RefreshOrgCode re-fetches the organization code for the current account
// and overwrites the session copy. It is a no-op while unauthenticated,
// reported by ok being false.
func (s *Session) RefreshOrgCode(ctx context.Context) (code string, ok bool) {
	s.mu.Lock()
	if s.state.User == nil {
		s.mu.Unlock()
		return "", false
	}
	accountID := s.state.User.ID
	s.mu.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	code = s.backend.FetchOrganizationCode(ctx, accountID)

	s.mu.Lock()
	s.state.OrganizationCode = code
	s.mu.Unlock()
	return code, true
}

// ValidateOrganizationCode checks a code against stored accounts without
// touching session state.
func (s *Session) ValidateOrganizationCode(ctx context.Context, code string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.backend.ValidateOrgCode(ctx, code)
}

// ClearError dismisses the current error, if any.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.state.Err = ""
	s.mu.Unlock()
}

// SetRememberMe updates and persists the remember-me preference. Turning
// it off drops the remembered email; turning it on keeps any email the
// store already holds.
func (s *Session) SetRememberMe(rememberMe bool) {
	s.mu.Lock()
	s.state.RememberMe = rememberMe
	s.mu.Unlock()

	email := ""
	if rememberMe {
		if hint, err := s.hints.Load(); err == nil {
			email = hint.Email
		}
	}
	s.saveHint(email, rememberMe)
}

// RememberedEmail returns the stored email hint for form pre-fill, empty
// when none is retained.
func (s *Session) RememberedEmail() string {
	hint, err := s.hints.Load()
	if err != nil {
		return ""
	}
	return hint.Email
}
