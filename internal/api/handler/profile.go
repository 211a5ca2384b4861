package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tdslabs/apiconsole/internal/api/middleware"
	"github.com/tdslabs/apiconsole/internal/api/response"
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/backend"
	"github.com/tdslabs/apiconsole/internal/user"
)

type userResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	DisplayName      string `json:"displayName,omitempty"`
	Role             string `json:"role"`
	OrganizationCode string `json:"organizationCode,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	PhotoURL         string `json:"photoUrl,omitempty"`
	CreatedAt        string `json:"createdAt"`
}

func toUserResponse(d *user.Document) userResponse {
	res := userResponse{
		ID:        d.ID,
		Email:     d.Email,
		Role:      auth.ParseRole(d.Role).String(),
		CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
	}
	if d.DisplayName != nil {
		res.DisplayName = *d.DisplayName
	}
	if d.OrganizationCode != nil {
		res.OrganizationCode = *d.OrganizationCode
	}
	if d.PhoneNumber != nil {
		res.PhoneNumber = *d.PhoneNumber
	}
	if d.PhotoURL != nil {
		res.PhotoURL = *d.PhotoURL
	}
	return res
}

type updateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoUrl"`
	PhoneNumber *string `json:"phoneNumber"`
}

// ProfileHandler serves the signed-in account's profile.
type ProfileHandler struct {
	users    user.Repository
	provider backend.IdentityProvider
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users user.Repository, provider backend.IdentityProvider) *ProfileHandler {
	return &ProfileHandler{users: users, provider: provider}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	doc, err := h.users.Get(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", requestID)
			return
		}
		slog.Error("failed to fetch profile", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch profile", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(doc), requestID)
}

// Update handles PATCH /profile. Unset fields are left untouched; a body
// with no recognized field succeeds without writing anything.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.DisplayName != nil || req.PhotoURL != nil {
		err := h.provider.UpdateIdentity(r.Context(), identity.UserID, backend.IdentityUpdate{
			DisplayName: req.DisplayName,
			PhotoURL:    req.PhotoURL,
		})
		if err != nil {
			slog.Error("failed to update identity profile", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile", requestID)
			return
		}
	}

	err := h.users.Update(r.Context(), identity.UserID, user.Update{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		slog.Error("failed to update user document", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile", requestID)
		return
	}

	doc, err := h.users.Get(r.Context(), identity.UserID)
	if err != nil {
		response.Success(w, http.StatusOK, map[string]bool{"updated": true}, requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(doc), requestID)
}
