package middleware

import (
	"net/http"

	"github.com/tdslabs/apiconsole/internal/api/response"
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/guard"
	"github.com/tdslabs/apiconsole/internal/session"
)

// RequireRole returns middleware that gates a route on the role-gated guard
// decision. A login redirect maps to 401, a role-home redirect to 403; the
// guard's target path travels in the error details so the front end can
// navigate.
func RequireRole(requiredRole auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			st := session.State{}
			if identity := GetIdentity(r.Context()); identity != nil {
				st.IsAuthenticated = true
				st.Role = identity.Role
			}

			decision := guard.Decide(st, requiredRole)
			switch decision.Action {
			case guard.Render:
				next.ServeHTTP(w, r)
			case guard.Redirect:
				status := http.StatusForbidden
				code := "FORBIDDEN"
				if decision.Path == guard.LoginPath {
					status = http.StatusUnauthorized
					code = "UNAUTHORIZED"
				}
				response.ErrWithDetails(w, status, code, "Access denied",
					map[string]string{"redirectTo": decision.Path}, requestID)
			default:
				// RenderLoading cannot occur for token-authenticated requests.
				next.ServeHTTP(w, r)
			}
		})
	}
}
