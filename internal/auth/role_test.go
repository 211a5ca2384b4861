package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdslabs/apiconsole/internal/auth"
)

func TestParseRole_ValidRoles(t *testing.T) {
	t.Parallel()

	assert.Equal(t, auth.RoleAdmin, auth.ParseRole("Admin"))
	assert.Equal(t, auth.RoleUser, auth.ParseRole("User"))
}

func TestParseRole_InvalidCoercesToUser(t *testing.T) {
	t.Parallel()

	for _, stored := range []string{"", "admin", "superuser", "ADMIN", "Manager", "null"} {
		assert.Equal(t, auth.RoleUser, auth.ParseRole(stored), "stored role %q", stored)
	}
}

func TestClampRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, auth.RoleAdmin, auth.ClampRole(auth.RoleAdmin))
	assert.Equal(t, auth.RoleUser, auth.ClampRole(auth.Role("Moderator")))
}

func TestErrorIs_MatchesByCode(t *testing.T) {
	t.Parallel()

	err := auth.AuthFailed("backend said no")
	assert.ErrorIs(t, err, auth.AuthFailed("different message"))
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, "backend said no", err.Error())
}

func TestIssueAndVerifyToken(t *testing.T) {
	t.Parallel()

	id := auth.Identity{
		UserID:           "uid-1",
		Email:            "admin@example.com",
		Role:             auth.RoleAdmin,
		OrganizationCode: "TDS-ABC123",
	}

	raw, err := auth.IssueToken("secret", id, time.Hour)
	require.NoError(t, err)

	got, err := auth.VerifyToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := auth.IssueToken("secret", auth.Identity{UserID: "u", Role: auth.RoleUser}, time.Hour)
	require.NoError(t, err)

	_, err = auth.VerifyToken("other", raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Parallel()

	raw, err := auth.IssueToken("secret", auth.Identity{UserID: "u", Role: auth.RoleUser}, -time.Minute)
	require.NoError(t, err)

	_, err = auth.VerifyToken("secret", raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
