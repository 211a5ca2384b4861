package handler

import (
	"errors"
	"net/http"

	"github.com/tdslabs/apiconsole/internal/api/response"
	"github.com/tdslabs/apiconsole/internal/auth"
)

// statusFor maps an auth taxonomy code onto an HTTP status.
func statusFor(code auth.Code) int {
	switch code {
	case auth.CodeInvalidCredentials, auth.CodeNotAuthenticated, auth.CodeAuthFailed:
		return http.StatusUnauthorized
	case auth.CodeUserNotFound:
		return http.StatusNotFound
	case auth.CodeRateLimited:
		return http.StatusTooManyRequests
	case auth.CodeInvalidEmail, auth.CodeWeakPassword, auth.CodeOrgCodeRequired, auth.CodeInvalidOrgCode:
		return http.StatusBadRequest
	case auth.CodeEmailInUse:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeAuthError renders an auth taxonomy error as an API error envelope.
// Errors from outside the taxonomy become a generic 500.
func writeAuthError(w http.ResponseWriter, err error, requestID string) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		response.Err(w, statusFor(authErr.Code), string(authErr.Code), authErr.Message, requestID)
		return
	}
	response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
}
