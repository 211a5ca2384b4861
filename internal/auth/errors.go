package auth

import "fmt"

// Code identifies an authentication error category. Codes are stable and
// surface unchanged in API responses.
type Code string

const (
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInvalidEmail       Code = "INVALID_EMAIL"
	CodeServiceConfig      Code = "SERVICE_CONFIG"
	CodeEmailInUse         Code = "EMAIL_IN_USE"
	CodeWeakPassword       Code = "WEAK_PASSWORD"
	CodeOrgCodeRequired    Code = "ORG_CODE_REQUIRED"
	CodeInvalidOrgCode     Code = "INVALID_ORG_CODE"
	CodeNotAuthenticated   Code = "NOT_AUTHENTICATED"
	CodeResetFailed        Code = "RESET_FAILED"
	CodeAuthFailed         Code = "AUTH_FAILED"
	CodeUnknown            Code = "UNKNOWN"
)

// Error is an authentication failure with a stable code and a message safe
// to show to end users. Two Errors match under errors.Is when their codes
// are equal, so the fixed causes below double as sentinels.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches by code so callers can compare against the sentinel values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Fixed causes with the user-facing copy for each.
var (
	ErrInvalidCredentials = &Error{CodeInvalidCredentials, "Invalid credentials. Please check your email and password."}
	ErrUserNotFound       = &Error{CodeUserNotFound, "No user found with this email address."}
	ErrRateLimited        = &Error{CodeRateLimited, "Too many unsuccessful login attempts. Please try again later."}
	ErrInvalidEmail       = &Error{CodeInvalidEmail, "Invalid email format."}
	ErrServiceConfig      = &Error{CodeServiceConfig, "Authentication configuration issue. Please contact support."}
	ErrEmailInUse         = &Error{CodeEmailInUse, "Email is already in use. Please use a different email or sign in."}
	ErrWeakPassword       = &Error{CodeWeakPassword, "Password is too weak. Please use a stronger password."}
	ErrOrgCodeRequired    = &Error{CodeOrgCodeRequired, "Organization code is required for regular users"}
	ErrInvalidOrgCode     = &Error{CodeInvalidOrgCode, "Invalid organization code. Please check and try again."}
	ErrNotAuthenticated   = &Error{CodeNotAuthenticated, "No authenticated user found"}
	ErrResetFailed        = &Error{CodeResetFailed, "Failed to send password reset email."}
)

// AuthFailed wraps an unrecognized backend failure, keeping its message.
func AuthFailed(message string) *Error {
	if message == "" {
		message = "Login failed. Please try again."
	}
	return &Error{CodeAuthFailed, message}
}

// Unknown wraps an unexpected failure from outside the taxonomy.
func Unknown(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred."
	}
	return &Error{CodeUnknown, message}
}

// Unknownf is Unknown with formatting.
func Unknownf(format string, args ...any) *Error {
	return Unknown(fmt.Sprintf(format, args...))
}
