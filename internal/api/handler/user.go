package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tdslabs/apiconsole/internal/api/middleware"
	"github.com/tdslabs/apiconsole/internal/api/response"
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/user"
)

type updateUserRequest struct {
	Role             *string `json:"role"`
	OrganizationCode *string `json:"organizationCode"`
	DisplayName      *string `json:"displayName"`
}

// UserHandler handles the Admin-only account directory.
type UserHandler struct {
	users user.Repository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users user.Repository) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	docs, err := h.users.List(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users", requestID)
		return
	}

	res := make([]userResponse, 0, len(docs))
	for i := range docs {
		res = append(res, toUserResponse(&docs[i]))
	}

	response.Success(w, http.StatusOK, res, requestID)
}

// Update handles PATCH /users/{id}. An unrecognized role value is coerced
// to User rather than rejected.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	upd := user.Update{
		DisplayName:      req.DisplayName,
		OrganizationCode: req.OrganizationCode,
	}
	if req.Role != nil {
		role := auth.ClampRole(auth.Role(*req.Role)).String()
		upd.Role = &role
	}

	if err := h.users.Update(r.Context(), id, upd); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to update user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user", requestID)
		return
	}

	doc, err := h.users.Get(r.Context(), id)
	if err != nil {
		response.Success(w, http.StatusOK, map[string]bool{"updated": true}, requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(doc), requestID)
}
