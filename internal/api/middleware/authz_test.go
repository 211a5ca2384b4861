package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdslabs/apiconsole/internal/api/middleware"
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/guard"
)

func adminGate(next http.Handler) http.Handler {
	return middleware.RequireRole(auth.RoleAdmin)(next)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRole_NoIdentity(t *testing.T) {
	handler := adminGate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	apiErr := parseError(t, w)
	assert.Equal(t, "UNAUTHORIZED", apiErr["code"])
	details := apiErr["details"].(map[string]any)
	assert.Equal(t, guard.LoginPath, details["redirectTo"])
}

func TestRequireRole_WrongRole(t *testing.T) {
	token := issueTestToken(t, auth.RoleUser, time.Hour)
	handler := middleware.Auth(testJWTSecret)(adminGate(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	apiErr := parseError(t, w)
	assert.Equal(t, "FORBIDDEN", apiErr["code"])

	// The denied caller is pointed at their own role home.
	details := apiErr["details"].(map[string]any)
	assert.Equal(t, guard.DashboardPath, details["redirectTo"])
}

func TestRequireRole_Matches(t *testing.T) {
	token := issueTestToken(t, auth.RoleAdmin, time.Hour)
	handler := middleware.Auth(testJWTSecret)(adminGate(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_UserGateAdmitsUser(t *testing.T) {
	token := issueTestToken(t, auth.RoleUser, time.Hour)
	handler := middleware.Auth(testJWTSecret)(middleware.RequireRole(auth.RoleUser)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
