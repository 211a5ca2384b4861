package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated caller stored in the request context after
// bearer-token verification.
type Identity struct {
	UserID           string
	Email            string
	Role             Role
	OrganizationCode string
}

// tokenClaims is the JWT payload issued at login/register time.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email            string `json:"email"`
	Role             string `json:"role"`
	OrganizationCode string `json:"orgCode,omitempty"`
}

// IssueToken signs a bearer token for the given identity.
func IssueToken(secret string, id Identity, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:            id.Email,
		Role:             id.Role.String(),
		OrganizationCode: id.OrganizationCode,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken parses and verifies a bearer token, returning the embedded
// identity. The role claim goes through ParseRole, so a token minted with a
// role outside the closed set resolves to User.
func VerifyToken(secret, raw string) (*Identity, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID:           claims.Subject,
		Email:            claims.Email,
		Role:             ParseRole(claims.Role),
		OrganizationCode: claims.OrganizationCode,
	}, nil
}
