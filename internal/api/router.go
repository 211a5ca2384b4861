package api

import (
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/tdslabs/apiconsole/internal/api/handler"
	"github.com/tdslabs/apiconsole/internal/api/middleware"
	"github.com/tdslabs/apiconsole/internal/auth"
	"github.com/tdslabs/apiconsole/internal/backend"
	"github.com/tdslabs/apiconsole/internal/endpoint"
	"github.com/tdslabs/apiconsole/internal/project"
	"github.com/tdslabs/apiconsole/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Auth          handler.Authenticator
	Codes         handler.OrgCodeService
	Provider      backend.IdentityProvider
	Users         user.Repository
	Projects      project.Repository
	Endpoints     endpoint.Repository
	DBPinger      handler.DBPinger
	Version       string
	JWTSecret     string
	TokenTTL      time.Duration
	GoogleEnabled bool
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.Health)

	authHandler := handler.NewAuthHandler(deps.Auth, deps.JWTSecret, deps.TokenTTL)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		if deps.GoogleEnabled {
			r.Post("/google", authHandler.Google)
		}
		r.With(middleware.Auth(deps.JWTSecret)).Post("/logout", authHandler.Logout)
	})

	orgCodeHandler := handler.NewOrgCodeHandler(deps.Codes)
	// Code validation is reachable before sign-in; the registration form
	// checks the code the user typed.
	r.Post("/orgcode/validate", orgCodeHandler.Validate)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.JWTSecret))

		profileHandler := handler.NewProfileHandler(deps.Users, deps.Provider)
		r.Get("/profile", profileHandler.Get)
		r.Patch("/profile", profileHandler.Update)

		r.Get("/orgcode", orgCodeHandler.Get)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/orgcode/generate", orgCodeHandler.Generate)

		projectHandler := handler.NewProjectHandler(deps.Projects)
		endpointHandler := handler.NewEndpointHandler(deps.Endpoints, deps.Projects)
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.List)
			r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", projectHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.With(middleware.RequireRole(auth.RoleAdmin)).Patch("/", projectHandler.Update)
				r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/", projectHandler.Delete)

				r.Route("/endpoints", func(r chi.Router) {
					r.Get("/", endpointHandler.List)
					r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", endpointHandler.Create)
					r.With(middleware.RequireRole(auth.RoleAdmin)).Patch("/{endpointID}", endpointHandler.Update)
					r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/{endpointID}", endpointHandler.Delete)
				})
			})
		})

		userHandler := handler.NewUserHandler(deps.Users)
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Get("/", userHandler.List)
			r.Patch("/{id}", userHandler.Update)
		})
	})

	return r
}
