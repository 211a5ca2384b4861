package validation

import (
	"strings"

	"github.com/tdslabs/apiconsole/internal/endpoint"
)

// EndpointRequest mirrors the fields needed for endpoint validation.
type EndpointRequest struct {
	Name   string
	Method string
	Path   string
}

// ValidateEndpointRequest validates the fields of an endpoint request.
func ValidateEndpointRequest(req EndpointRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.Method == "" {
		errs = append(errs, FieldError{Field: "method", Message: "method is required"})
	} else if !endpoint.ValidMethod(req.Method) {
		errs = append(errs, FieldError{Field: "method", Message: "method must be one of GET, POST, PUT, PATCH, DELETE"})
	}

	if req.Path == "" {
		errs = append(errs, FieldError{Field: "path", Message: "path is required"})
	} else if !strings.HasPrefix(req.Path, "/") {
		errs = append(errs, FieldError{Field: "path", Message: "path must start with /"})
	}

	return errs
}
