package validation

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	Email    string
	Password string
}

// ValidateLoginRequest validates the fields of a login request.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(req.Email)...)
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}

// RegisterRequest mirrors the fields needed for registration validation.
// Role and organization-code semantics (clamping, the required-for-User
// rule) are enforced by the credential adapter, not here.
type RegisterRequest struct {
	Email    string
	Password string
	Role     string
}

// ValidateRegisterRequest validates the fields of a registration request.
func ValidateRegisterRequest(req RegisterRequest) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(req.Email)...)
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if len(req.Password) < 6 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}

	return errs
}

// ForgotPasswordRequest mirrors the fields needed for reset validation.
type ForgotPasswordRequest struct {
	Email string
}

// ValidateForgotPasswordRequest validates the fields of a reset request.
func ValidateForgotPasswordRequest(req ForgotPasswordRequest) []FieldError {
	return validateEmail(req.Email)
}

func validateEmail(email string) []FieldError {
	email = strings.TrimSpace(email)
	if email == "" {
		return []FieldError{{Field: "email", Message: "email is required"}}
	}
	if !emailRegex.MatchString(email) {
		return []FieldError{{Field: "email", Message: "email must be a valid address"}}
	}
	return nil
}
