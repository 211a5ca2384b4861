package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tdslabs/apiconsole/internal/api/middleware"
	"github.com/tdslabs/apiconsole/internal/api/response"
	"github.com/tdslabs/apiconsole/internal/api/validation"
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/project"
)

type projectRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	AssignedUsers []string `json:"assignedUsers"`
	Status        string   `json:"status"`
}

type projectResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	OwnerID       string   `json:"ownerId"`
	AssignedUsers []string `json:"assignedUsers"`
	Status        string   `json:"status"`
	EndpointCount int      `json:"endpointCount"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

func toProjectResponse(p *project.Project) projectResponse {
	assigned := p.AssignedUsers
	if assigned == nil {
		assigned = []string{}
	}
	return projectResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		OwnerID:       p.OwnerID,
		AssignedUsers: assigned,
		Status:        p.Status,
		EndpointCount: p.EndpointCount,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ProjectHandler handles project CRUD. Admins work on the projects they
// own; Users see the projects assigned to them.
type ProjectHandler struct {
	projects project.Repository
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects project.Repository) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// visibleTo reports whether the identity may read the project.
func visibleTo(p *project.Project, id *auth.Identity) bool {
	if p.OwnerID == id.UserID {
		return true
	}
	return slices.Contains(p.AssignedUsers, id.UserID)
}

// List handles GET /projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	var (
		projects []project.Project
		err      error
	)
	if identity.Role == auth.RoleAdmin {
		projects, err = h.projects.ListByOwner(r.Context(), identity.UserID)
	} else {
		projects, err = h.projects.ListAssignedTo(r.Context(), identity.UserID)
	}
	if err != nil {
		slog.Error("failed to list projects", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list projects", requestID)
		return
	}

	res := make([]projectResponse, 0, len(projects))
	for i := range projects {
		res = append(res, toProjectResponse(&projects[i]))
	}

	response.Success(w, http.StatusOK, res, requestID)
}

// Create handles POST /projects. Admin only.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateProjectRequest(validation.ProjectRequest{Name: req.Name, Status: req.Status})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	status := req.Status
	if status == "" {
		status = project.StatusActive
	}

	p := &project.Project{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		OwnerID:       identity.UserID,
		AssignedUsers: req.AssignedUsers,
		Status:        status,
	}
	if err := h.projects.Create(r.Context(), p); err != nil {
		slog.Error("failed to create project", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create project", requestID)
		return
	}

	created, err := h.projects.GetByID(r.Context(), p.ID)
	if err != nil {
		created = p
	}

	response.Success(w, http.StatusCreated, toProjectResponse(created), requestID)
}

// Get handles GET /projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	p, ok := h.fetch(w, r, requestID)
	if !ok {
		return
	}
	if !visibleTo(p, identity) {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProjectResponse(p), requestID)
}

// Update handles PATCH /projects/{id}. Only the owning Admin may write.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	p, ok := h.fetch(w, r, requestID)
	if !ok {
		return
	}
	if p.OwnerID != identity.UserID {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Name          *string   `json:"name"`
		Description   *string   `json:"description"`
		AssignedUsers *[]string `json:"assignedUsers"`
		Status        *string   `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.AssignedUsers != nil {
		p.AssignedUsers = *req.AssignedUsers
	}
	if req.Status != nil {
		p.Status = *req.Status
	}

	fieldErrors := validation.ValidateProjectRequest(validation.ProjectRequest{Name: p.Name, Status: p.Status})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.projects.Update(r.Context(), p); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return
		}
		slog.Error("failed to update project", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update project", requestID)
		return
	}

	updated, err := h.projects.GetByID(r.Context(), p.ID)
	if err != nil {
		updated = p
	}

	response.Success(w, http.StatusOK, toProjectResponse(updated), requestID)
}

// Delete handles DELETE /projects/{id}. Only the owning Admin may delete;
// endpoints go with the project.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	p, ok := h.fetch(w, r, requestID)
	if !ok {
		return
	}
	if p.OwnerID != identity.UserID {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
		return
	}

	if err := h.projects.Delete(r.Context(), p.ID); err != nil {
		slog.Error("failed to delete project", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete project", requestID)
		return
	}

	response.NoContent(w)
}

// fetch resolves the {id} URL parameter into a project, writing the error
// response itself when it cannot.
func (h *ProjectHandler) fetch(w http.ResponseWriter, r *http.Request, requestID string) (*project.Project, bool) {
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

	return p, true
}
