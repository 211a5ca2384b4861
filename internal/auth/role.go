package auth

import "log/slog"

// Role is the closed set of account roles. Role values arrive from an
// external document store as free-form strings, so every boundary decode
// goes through ParseRole.
type Role string

const (
	// RoleAdmin manages an organization and issues its organization code.
	RoleAdmin Role = "Admin"
	// RoleUser belongs to an organization identified by an organization code.
	RoleUser Role = "User"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// String returns the stored representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole decodes a stored role string. Anything outside the defined set
// is treated as corrupt and coerced to RoleUser with a logged warning; it
// never fails outward.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleUser:
		return RoleUser
	default:
		slog.Warn("invalid stored role, defaulting to User", "role", s)
		return RoleUser
	}
}

// ClampRole coerces a caller-supplied role to the defined set without
// logging. Used when the value comes from user input rather than storage.
func ClampRole(r Role) Role {
	if r.Valid() {
		return r
	}
	return RoleUser
}
