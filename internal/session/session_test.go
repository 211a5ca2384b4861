package session_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdslabs/apiconsole/internal/adapter"
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/backend"
	"github.com/tdslabs/apiconsole/internal/orgcode"
	"github.com/tdslabs/apiconsole/internal/remember"
	"github.com/tdslabs/apiconsole/internal/session"
	"github.com/tdslabs/apiconsole/internal/user"
)

const testBcryptCost = 4

var codeFormat = regexp.MustCompile(`^TDS-[0-9A-Z]{6}$`)

// fixture wires a session over the real adapter and in-memory backends.
type fixture struct {
	session  *session.Session
	adapter  *adapter.Adapter
	provider *backend.MemoryProvider
	hints    *remember.MemoryStore
}

func setup(t *testing.T) *fixture {
	t.Helper()

	provider := backend.NewMemoryProvider(testBcryptCost)
	users := user.NewMemoryRepository()
	a := adapter.New(provider, users, orgcode.NewValidator(users), nil)
	hints := remember.NewMemoryStore()
	return &fixture{
		session:  session.New(a, hints, time.Minute),
		adapter:  a,
		provider: provider,
		hints:    hints,
	}
}

func seedAdmin(t *testing.T, f *fixture) *adapter.Result {
	t.Helper()

	res, err := f.adapter.RegisterWithPassword(context.Background(), "admin@example.com", "password1", auth.RoleAdmin, "")
	require.NoError(t, err)
	require.NoError(t, f.provider.SignOut(context.Background()))
	return res
}

// --- Remember me ---

func TestLogin_RememberMeRoundTrip(t *testing.T) {
	t.Parallel()

	f := setup(t)
	seedAdmin(t, f)

	ok := f.session.Login(context.Background(), "admin@example.com", "password1", true)
	require.True(t, ok)
	assert.Equal(t, "admin@example.com", f.session.RememberedEmail())

	// A fresh session over the same hint store models a process restart.
	restarted := session.New(f.adapter, f.hints, time.Minute)
	assert.Equal(t, "admin@example.com", restarted.RememberedEmail())
	assert.True(t, restarted.Snapshot().RememberMe)
}

func TestLogin_RememberMeOff_NothingRetained(t *testing.T) {
	t.Parallel()

	f := setup(t)
	seedAdmin(t, f)

	require.True(t, f.session.Login(context.Background(), "admin@example.com", "password1", false))
	assert.Empty(t, f.session.RememberedEmail())

	restarted := session.New(f.adapter, f.hints, time.Minute)
	assert.Empty(t, restarted.RememberedEmail())
	assert.False(t, restarted.Snapshot().RememberMe)
}

func TestLogin_RememberMePersistedEvenOnFailure(t *testing.T) {
	t.Parallel()

	f := setup(t)
	seedAdmin(t, f)

	ok := f.session.Login(context.Background(), "admin@example.com", "wrongpass", true)
	assert.False(t, ok)
	// The preference and email were stored before the outcome was known.
	assert.Equal(t, "admin@example.com", f.session.RememberedEmail())
	assert.True(t, f.session.Snapshot().RememberMe)
}

func TestLogout_ClearsHintUnlessRememberMe(t *testing.T) {
	t.Parallel()

	f := setup(t)
	seedAdmin(t, f)

	require.True(t, f.session.Login(context.Background(), "admin@example.com", "password1", true))
	require.True(t, f.session.Logout(context.Background()))
	assert.Equal(t, "admin@example.com", f.session.RememberedEmail(), "remember-me on keeps the email")

	st := f.session.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Empty(t, st.OrganizationCode)

	require.True(t, f.session.Login(context.Background(), "admin@example.com", "password1", false))
	require.True(t, f.session.Logout(context.Background()))
	assert.Empty(t, f.session.RememberedEmail(), "remember-me off clears the email")
}

// --- Login / Register state transitions ---

func TestLogin_Failure_SetsErrorAndStaysUnauthenticated(t *testing.T) {
	t.Parallel()

	f := setup(t)
	seedAdmin(t, f)

	ok := f.session.Login(context.Background(), "admin@example.com", "wrongpass", false)
	assert.False(t, ok)

	st := f.session.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.False(t, st.Loading)
	assert.Equal(t, auth.ErrInvalidCredentials.Message, st.Err)
}

func TestRegister_AdminScenario(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	require.True(t, f.session.Register(ctx, "admin@example.com", "password1", auth.RoleAdmin, ""))

	st := f.session.Snapshot()
	require.True(t, st.IsAuthenticated)
	assert.Equal(t, auth.RoleAdmin, st.Role)
	assert.Regexp(t, codeFormat, st.OrganizationCode)
	firstCode := st.OrganizationCode

	newCode, err := f.session.GenerateNewOrgCode(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, firstCode, newCode)
	assert.Regexp(t, codeFormat, newCode)

	refreshed, ok := f.session.RefreshOrgCode(ctx)
	require.True(t, ok)
	assert.Equal(t, newCode, refreshed)
	assert.Equal(t, newCode, f.session.Snapshot().OrganizationCode)
}

func TestRegister_InvalidRoleCoercedToUser(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	admin := seedAdmin(t, f)

	require.True(t, f.session.Register(ctx, "user@example.com", "password1", auth.Role("Owner"), admin.OrganizationCode))
	assert.Equal(t, auth.RoleUser, f.session.Snapshot().Role)
}

func TestValidateOrganizationCode(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	admin := seedAdmin(t, f)

	valid, err := f.session.ValidateOrganizationCode(ctx, admin.OrganizationCode)
	assert.True(t, valid)
	assert.NoError(t, err)

	valid, err = f.session.ValidateOrganizationCode(ctx, "TDS-WRONG1")
	assert.False(t, valid)
	assert.ErrorIs(t, err, auth.ErrInvalidOrgCode)
}

// --- Error slot ---

func TestClearError_IdempotentWhenNoError(t *testing.T) {
	t.Parallel()

	f := setup(t)

	before := f.session.Snapshot()
	f.session.ClearError()
	assert.Equal(t, before, f.session.Snapshot())
}

func TestClearError_DismissesError(t *testing.T) {
	t.Parallel()

	f := setup(t)

	f.session.Login(context.Background(), "nobody@example.com", "password1", false)
	require.NotEmpty(t, f.session.Snapshot().Err)

	f.session.ClearError()
	assert.Empty(t, f.session.Snapshot().Err)
}

// --- ForgotPassword ---

func TestForgotPassword_OnlyTouchesLoadingAndError(t *testing.T) {
	t.Parallel()

	f := setup(t)
	seedAdmin(t, f)
	ctx := context.Background()

	require.True(t, f.session.Login(ctx, "admin@example.com", "password1", false))

	ok := f.session.ForgotPassword(ctx, "admin@example.com")
	assert.True(t, ok)
	st := f.session.Snapshot()
	assert.True(t, st.IsAuthenticated, "reset must not log the user out")
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)

	ok = f.session.ForgotPassword(ctx, "missing@example.com")
	assert.False(t, ok)
	st = f.session.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, auth.ErrUserNotFound.Message, st.Err)
}

// --- Observer ---

func TestSubscribe_InitialNotificationLeavesLoading(t *testing.T) {
	t.Parallel()

	f := setup(t)

	assert.True(t, f.session.Snapshot().Loading)

	f.session.Subscribe()
	defer f.session.Close()

	st := f.session.Snapshot()
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
}

func TestSubscribe_PicksUpExistingBackendSession(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	res, err := f.adapter.RegisterWithPassword(ctx, "admin@example.com", "password1", auth.RoleAdmin, "")
	require.NoError(t, err)

	// The backend already has a current identity when the session attaches.
	f.session.Subscribe()
	defer f.session.Close()

	st := f.session.Snapshot()
	require.True(t, st.IsAuthenticated)
	assert.Equal(t, res.Account.ID, st.User.ID)
	assert.Equal(t, auth.RoleAdmin, st.Role)
	assert.Equal(t, res.OrganizationCode, st.OrganizationCode)
}

func TestObserver_SignOutNotificationClearsSession(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	f.session.Subscribe()
	defer f.session.Close()

	require.True(t, f.session.Register(ctx, "admin@example.com", "password1", auth.RoleAdmin, ""))

	// Backend-side sign-out reaches the session through the observer.
	require.NoError(t, f.provider.SignOut(ctx))

	st := f.session.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
}

// --- GenerateNewOrgCode gating ---

type countingBackend struct {
	session.Backend
	generateCalls int
}

func (c *countingBackend) GenerateOrgCode(ctx context.Context, accountID string) (string, error) {
	c.generateCalls++
	return c.Backend.GenerateOrgCode(ctx, accountID)
}

func TestGenerateNewOrgCode_RejectedWithoutAdminRole(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	admin := seedAdmin(t, f)

	counting := &countingBackend{Backend: f.adapter}
	s := session.New(counting, remember.NewMemoryStore(), time.Minute)

	// Unauthenticated.
	_, err := s.GenerateNewOrgCode(ctx)
	assert.ErrorIs(t, err, auth.AuthFailed(""))

	// Authenticated as User.
	require.True(t, s.Login(ctx, "admin@example.com", "password1", false))
	require.True(t, s.Register(ctx, "user@example.com", "password1", auth.RoleUser, admin.OrganizationCode))

	_, err = s.GenerateNewOrgCode(ctx)
	assert.ErrorIs(t, err, auth.AuthFailed(""))
	assert.Zero(t, counting.generateCalls, "backend must not be contacted")
}

func TestRefreshOrgCode_NoOpWhenUnauthenticated(t *testing.T) {
	t.Parallel()

	f := setup(t)

	code, ok := f.session.RefreshOrgCode(context.Background())
	assert.False(t, ok)
	assert.Empty(t, code)
}

// --- Accepted last-writer-wins race ---

type racingBackend struct {
	session.Backend
	release chan struct{}
	result  *adapter.Result
}

func (r *racingBackend) SignInWithPassword(_ context.Context, _, _ string) (*adapter.Result, error) {
	<-r.release
	return r.result, nil
}

func (r *racingBackend) SignOut(_ context.Context) error {
	return nil
}

func TestConcurrentLoginAndLogout_LastToResolveWins(t *testing.T) {
	t.Parallel()

	rb := &racingBackend{
		release: make(chan struct{}),
		result: &adapter.Result{
			Account: backend.Identity{ID: "u1", Email: "admin@example.com"},
			Role:    auth.RoleAdmin,
		},
	}
	s := session.New(rb, remember.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	done := make(chan bool)
	go func() {
		done <- s.Login(ctx, "admin@example.com", "password1", false)
	}()

	// Logout is invoked after login but its backend call resolves first.
	require.True(t, s.Logout(ctx))

	close(rb.release)
	require.True(t, <-done)

	st := s.Snapshot()
	assert.True(t, st.IsAuthenticated, "the later-resolving login overwrites the logout")
	assert.Equal(t, "u1", st.User.ID)
}
