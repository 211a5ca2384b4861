package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tdslabs/apiconsole/internal/api/validation"
)

func fields(errs []validation.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateLoginRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       validation.LoginRequest
		wantField []string
	}{
		{
			name: "valid",
			req:  validation.LoginRequest{Email: "user@example.com", Password: "secret123"},
		},
		{
			name:      "missing email",
			req:       validation.LoginRequest{Password: "secret123"},
			wantField: []string{"email"},
		},
		{
			name:      "bad email format",
			req:       validation.LoginRequest{Email: "not-an-email", Password: "secret123"},
			wantField: []string{"email"},
		},
		{
			name:      "missing password",
			req:       validation.LoginRequest{Email: "user@example.com"},
			wantField: []string{"password"},
		},
		{
			name:      "everything missing",
			req:       validation.LoginRequest{},
			wantField: []string{"email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validation.ValidateLoginRequest(tt.req)
			assert.ElementsMatch(t, tt.wantField, fields(errs))
		})
	}
}

func TestValidateRegisterRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       validation.RegisterRequest
		wantField []string
	}{
		{
			name: "valid",
			req:  validation.RegisterRequest{Email: "user@example.com", Password: "secret123", Role: "User"},
		},
		{
			name:      "short password",
			req:       validation.RegisterRequest{Email: "user@example.com", Password: "abc", Role: "User"},
			wantField: []string{"password"},
		},
		{
			name: "unknown role is accepted and coerced downstream",
			req:  validation.RegisterRequest{Email: "user@example.com", Password: "secret123", Role: "superuser"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validation.ValidateRegisterRequest(tt.req)
			assert.ElementsMatch(t, tt.wantField, fields(errs))
		})
	}
}

func TestValidateProjectRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       validation.ProjectRequest
		wantField []string
	}{
		{
			name: "valid",
			req:  validation.ProjectRequest{Name: "Payments API", Status: "active"},
		},
		{
			name: "empty status defaults later",
			req:  validation.ProjectRequest{Name: "Payments API"},
		},
		{
			name:      "missing name",
			req:       validation.ProjectRequest{Status: "active"},
			wantField: []string{"name"},
		},
		{
			name:      "name too long",
			req:       validation.ProjectRequest{Name: strings.Repeat("x", 256)},
			wantField: []string{"name"},
		},
		{
			name:      "unknown status",
			req:       validation.ProjectRequest{Name: "Payments API", Status: "paused"},
			wantField: []string{"status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validation.ValidateProjectRequest(tt.req)
			assert.ElementsMatch(t, tt.wantField, fields(errs))
		})
	}
}

func TestValidateEndpointRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       validation.EndpointRequest
		wantField []string
	}{
		{
			name: "valid",
			req:  validation.EndpointRequest{Name: "Create charge", Method: "POST", Path: "/charges"},
		},
		{
			name:      "bad method",
			req:       validation.EndpointRequest{Name: "Create charge", Method: "FETCH", Path: "/charges"},
			wantField: []string{"method"},
		},
		{
			name:      "relative path",
			req:       validation.EndpointRequest{Name: "Create charge", Method: "POST", Path: "charges"},
			wantField: []string{"path"},
		},
		{
			name:      "all missing",
			req:       validation.EndpointRequest{},
			wantField: []string{"name", "method", "path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validation.ValidateEndpointRequest(tt.req)
			assert.ElementsMatch(t, tt.wantField, fields(errs))
		})
	}
}
