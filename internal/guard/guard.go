// Package guard makes the access-control decision consulted before any
// role-restricted view is rendered.
package guard

import (
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/session"
)

// Routes the decision function redirects to.
const (
	LoginPath          = "/login"
	AdminDashboardPath = "/admin-dashboard"
	DashboardPath      = "/dashboard"
)

// Action says what the caller should do with the guarded view.
type Action int

const (
	// Render shows the guarded content.
	Render Action = iota
	// RenderLoading shows a loading placeholder until the next state change.
	RenderLoading
	// Redirect navigates to Decision.Path instead of rendering.
	Redirect
)

// Decision is the outcome of one guard evaluation.
type Decision struct {
	Action Action
	Path   string // set when Action == Redirect
}

// Decide evaluates the current session state against an optional required
// role. requiredRole empty means any authenticated account may pass. The
// function is stateless and performs no I/O; callers re-evaluate it on
// every relevant state change and on every navigation.
func Decide(st session.State, requiredRole auth.Role) Decision {
	if st.Loading {
		return Decision{Action: RenderLoading}
	}
	if !st.IsAuthenticated {
		return Decision{Action: Redirect, Path: LoginPath}
	}
	if requiredRole != "" && st.Role != requiredRole {
		return Decision{Action: Redirect, Path: roleHome(st.Role)}
	}
	return Decision{Action: Render}
}

// roleHome is where an authenticated account lands when it hits a view for
// the other role.
func roleHome(role auth.Role) string {
	if role == auth.RoleAdmin {
		return AdminDashboardPath
	}
	return DashboardPath
}
