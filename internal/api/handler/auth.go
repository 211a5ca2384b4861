package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tdslabs/apiconsole/internal/adapter"
	"github.com/tdslabs/apiconsole/internal/api/middleware"
	"github.com/tdslabs/apiconsole/internal/api/response"
	"github.com/tdslabs/apiconsole/internal/api/validation"
	"github.com/tdslabs/apiconsole/internal/auth"
)

// Authenticator is the slice of the credential adapter the auth handler
// uses. *adapter.Adapter satisfies it.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*adapter.Result, error)
	SignInWithFederatedProvider(ctx context.Context, rawIDToken string, selectedRole auth.Role, organizationCode string) (*adapter.Result, error)
	RegisterWithPassword(ctx context.Context, email, password string, role auth.Role, organizationCode string) (*adapter.Result, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	IDToken          string `json:"idToken"`
	Role             string `json:"role"`
	OrganizationCode string `json:"organizationCode"`
}

type registerRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	OrganizationCode string `json:"organizationCode"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type accountResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

type authResponse struct {
	Token            string          `json:"token"`
	User             accountResponse `json:"user"`
	Role             string          `json:"role"`
	OrganizationCode string          `json:"organizationCode,omitempty"`
}

// AuthHandler handles sign-in, registration, sign-out and password reset.
type AuthHandler struct {
	auth      Authenticator
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a Authenticator, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: a, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (h *AuthHandler) respond(w http.ResponseWriter, status int, res *adapter.Result, requestID string) {
	token, err := auth.IssueToken(h.jwtSecret, auth.Identity{
		UserID:           res.Account.ID,
		Email:            res.Account.Email,
		Role:             res.Role,
		OrganizationCode: res.OrganizationCode,
	}, h.tokenTTL)
	if err != nil {
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create authentication token", requestID)
		return
	}

	response.Success(w, status, authResponse{
		Token: token,
		User: accountResponse{
			ID:          res.Account.ID,
			Email:       res.Account.Email,
			DisplayName: res.Account.DisplayName,
			PhotoURL:    res.Account.PhotoURL,
		},
		Role:             res.Role.String(),
		OrganizationCode: res.OrganizationCode,
	}, requestID)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{Email: req.Email, Password: req.Password})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	res, err := h.auth.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err, requestID)
		return
	}

	h.respond(w, http.StatusOK, res, requestID)
}

// Google handles POST /auth/google.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.IDToken == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "idToken is required", requestID)
		return
	}

	res, err := h.auth.SignInWithFederatedProvider(r.Context(), req.IDToken, auth.Role(req.Role), req.OrganizationCode)
	if err != nil {
		writeAuthError(w, err, requestID)
		return
	}

	h.respond(w, http.StatusOK, res, requestID)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateRegisterRequest(validation.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	res, err := h.auth.RegisterWithPassword(r.Context(), req.Email, req.Password, auth.Role(req.Role), req.OrganizationCode)
	if err != nil {
		writeAuthError(w, err, requestID)
		return
	}

	h.respond(w, http.StatusCreated, res, requestID)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.auth.SignOut(r.Context()); err != nil {
		writeAuthError(w, err, requestID)
		return
	}

	response.NoContent(w)
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateForgotPasswordRequest(validation.ForgotPasswordRequest{Email: req.Email})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.auth.SendPasswordReset(r.Context(), req.Email); err != nil {
		writeAuthError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, map[string]bool{"sent": true}, requestID)
}
