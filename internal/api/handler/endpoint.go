package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tdslabs/apiconsole/internal/api/middleware"
	"github.com/tdslabs/apiconsole/internal/api/response"
	"github.com/tdslabs/apiconsole/internal/api/validation"
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/endpoint"
	"github.com/tdslabs/apiconsole/internal/project"
)

type endpointRequest struct {
	Name        string `json:"name"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type endpointResponse struct {
	ID          string `json:"id"`
	ProjectID   string `json:"projectId"`
	Name        string `json:"name"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toEndpointResponse(e *endpoint.Endpoint) endpointResponse {
	return endpointResponse{
		ID:          e.ID.String(),
		ProjectID:   e.ProjectID.String(),
		Name:        e.Name,
		Method:      e.Method,
		Path:        e.Path,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// EndpointHandler handles the endpoints nested under a project. Reads
// follow project visibility; writes require project ownership.
type EndpointHandler struct {
	endpoints endpoint.Repository
	projects  project.Repository
}

// NewEndpointHandler creates a new EndpointHandler.
func NewEndpointHandler(endpoints endpoint.Repository, projects project.Repository) *EndpointHandler {
	return &EndpointHandler{endpoints: endpoints, projects: projects}
}

// List handles GET /projects/{id}/endpoints.
func (h *EndpointHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p, ok := h.project(w, r, requestID, false)
	if !ok {
		return
	}

	endpoints, err := h.endpoints.ListByProject(r.Context(), p.ID)
	if err != nil {
		slog.Error("failed to list endpoints", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list endpoints", requestID)
		return
	}

	res := make([]endpointResponse, 0, len(endpoints))
	for i := range endpoints {
		res = append(res, toEndpointResponse(&endpoints[i]))
	}

	response.Success(w, http.StatusOK, res, requestID)
}

// Create handles POST /projects/{id}/endpoints.
func (h *EndpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p, ok := h.project(w, r, requestID, true)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req endpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateEndpointRequest(validation.EndpointRequest{
		Name:   req.Name,
		Method: req.Method,
		Path:   req.Path,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	e := &endpoint.Endpoint{
		ID:          uuid.New(),
		ProjectID:   p.ID,
		Name:        req.Name,
		Method:      req.Method,
		Path:        req.Path,
		Description: req.Description,
	}
	if err := h.endpoints.Create(r.Context(), e); err != nil {
		slog.Error("failed to create endpoint", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create endpoint", requestID)
		return
	}

	created, err := h.endpoints.GetByID(r.Context(), e.ID)
	if err != nil {
		created = e
	}

	response.Success(w, http.StatusCreated, toEndpointResponse(created), requestID)
}

// Update handles PATCH /projects/{id}/endpoints/{endpointID}.
func (h *EndpointHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p, ok := h.project(w, r, requestID, true)
	if !ok {
		return
	}
	e, ok := h.endpoint(w, r, requestID, p)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Name        *string `json:"name"`
		Method      *string `json:"method"`
		Path        *string `json:"path"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Method != nil {
		e.Method = *req.Method
	}
	if req.Path != nil {
		e.Path = *req.Path
	}
	if req.Description != nil {
		e.Description = *req.Description
	}

	fieldErrors := validation.ValidateEndpointRequest(validation.EndpointRequest{
		Name:   e.Name,
		Method: e.Method,
		Path:   e.Path,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.endpoints.Update(r.Context(), e); err != nil {
		if errors.Is(err, endpoint.ErrEndpointNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found", requestID)
			return
		}
		slog.Error("failed to update endpoint", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update endpoint", requestID)
		return
	}

	response.Success(w, http.StatusOK, toEndpointResponse(e), requestID)
}

// Delete handles DELETE /projects/{id}/endpoints/{endpointID}.
func (h *EndpointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p, ok := h.project(w, r, requestID, true)
	if !ok {
		return
	}
	e, ok := h.endpoint(w, r, requestID, p)
	if !ok {
		return
	}

	if err := h.endpoints.Delete(r.Context(), e.ID); err != nil {
		slog.Error("failed to delete endpoint", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete endpoint", requestID)
		return
	}

	response.NoContent(w)
}

// project resolves the parent project and applies the visibility rule:
// owners always pass, assigned users pass for reads only.
func (h *EndpointHandler) project(w http.ResponseWriter, r *http.Request, requestID string, write bool) (*project.Project, bool) {
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "Project id must be a valid UUID", requestID)
		return nil, false
	}

	p, err := h.projects.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return nil, false
		}
		slog.Error("failed to fetch project", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch project", requestID)
		return nil, false
	}

	allowed := visibleTo(p, identity)
	if write {
		allowed = p.OwnerID == identity.UserID && identity.Role == auth.RoleAdmin
	}
	if !allowed {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return nil, false
	}

	return p, true
}

// endpoint resolves the {endpointID} URL parameter, rejecting endpoints
// that belong to a different project than the one in the URL.
func (h *EndpointHandler) endpoint(w http.ResponseWriter, r *http.Request, requestID string, p *project.Project) (*endpoint.Endpoint, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "endpointID"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "Endpoint id must be a valid UUID", requestID)
		return nil, false
	}

	e, err := h.endpoints.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, endpoint.ErrEndpointNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found", requestID)
			return nil, false
		}
		slog.Error("failed to fetch endpoint", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch endpoint", requestID)
		return nil, false
	}
	if e.ProjectID != p.ID {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found", requestID)
		return nil, false
	}

	return e, true
}
