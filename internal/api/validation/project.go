package validation

import "strings"

// ProjectRequest mirrors the fields shared by project create and update
// validation.
type ProjectRequest struct {
	Name   string
	Status string
}

// ValidateProjectRequest validates the fields of a project request.
func ValidateProjectRequest(req ProjectRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.Status != "" && req.Status != "active" && req.Status != "archived" {
		errs = append(errs, FieldError{Field: "status", Message: "status must be \"active\" or \"archived\""})
	}

	return errs
}
