package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tdslabs/apiconsole/internal/api/middleware"
	"github.com/tdslabs/apiconsole/internal/api/response"
	"github.com/tdslabs/apiconsole/internal/auth"
)

// OrgCodeService is the slice of the credential adapter the org code
// handler uses. *adapter.Adapter satisfies it.
type OrgCodeService interface {
	FetchOrganizationCode(ctx context.Context, accountID string) string
	GenerateOrgCode(ctx context.Context, accountID string) (string, error)
	ValidateOrgCode(ctx context.Context, code string) (bool, error)
}

type validateOrgCodeRequest struct {
	OrganizationCode string `json:"organizationCode"`
}

type orgCodeResponse struct {
	OrganizationCode string `json:"organizationCode"`
}

type orgCodeValidityResponse struct {
	OrganizationCode string `json:"organizationCode"`
	Valid            bool   `json:"valid"`
}

// OrgCodeHandler handles organization code reads, regeneration and
// validation.
type OrgCodeHandler struct {
	codes OrgCodeService
}

// NewOrgCodeHandler creates a new OrgCodeHandler.
func NewOrgCodeHandler(codes OrgCodeService) *OrgCodeHandler {
	return &OrgCodeHandler{codes: codes}
}

// Get handles GET /orgcode. Accounts without a code get an empty string.
func (h *OrgCodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	code := h.codes.FetchOrganizationCode(r.Context(), identity.UserID)
	response.Success(w, http.StatusOK, orgCodeResponse{OrganizationCode: code}, requestID)
}

// Generate handles POST /orgcode/generate. Admin only; the previous code
// stops validating once the new one is stored.
func (h *OrgCodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	code, err := h.codes.GenerateOrgCode(r.Context(), identity.UserID)
	if err != nil {
		writeAuthError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, orgCodeResponse{OrganizationCode: code}, requestID)
}

// Validate handles POST /orgcode/validate.
func (h *OrgCodeHandler) Validate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req validateOrgCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	// An unrecognized code is a negative answer, not an error.
	valid, err := h.codes.ValidateOrgCode(r.Context(), req.OrganizationCode)
	if err != nil && !errors.Is(err, auth.ErrInvalidOrgCode) {
		writeAuthError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, orgCodeValidityResponse{
		OrganizationCode: req.OrganizationCode,
		Valid:            valid,
	}, requestID)
}
