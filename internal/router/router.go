// Package router sets up all HTTP routes and middleware chains for the
// TechTrove API. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"techtrove/internal/handlers"
	"techtrove/internal/middleware"
	"techtrove/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, tools *handlers.Tools, users *handlers.Users, auth *handlers.Auth) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check.
	r.Get("/health", healthHandler)

	// Public catalog routes.
	r.Get("/ai-tools", tools.List)
	r.Get("/ai-tools/{categoryID}/tools/{toolID}", tools.Get)
	r.Get("/ai-tools/tool/{categoryID}/{toolID}", tools.Hit)
	r.Get("/search", tools.Search)

	// Public user routes. Submission endpoints are rate limited to slow
	// down form spam.
	submitLimiter := middleware.NewRateLimiter(10, time.Minute)
	r.Group(func(r chi.Router) {
		r.Use(submitLimiter.Middleware)
		r.Post("/users", users.Create)
		r.Post("/users/{id}/messages", users.Message)
		r.Post("/users/{id}/aitools", users.Contribution)
	})
	r.Get("/users/{id}", users.GetByID)
	r.Get("/users/email/{email}", users.GetByEmail)

	// Admin authentication.
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", auth.Login)
		r.Post("/signup", auth.Signup)
		r.Post("/logout", auth.Logout)

		// 2FA endpoints require a session but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/verify", auth.TwoFAVerify)
		})
	})

	// Management routes, session + completed 2FA required.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Get("/ai-tools/raw", tools.Raw)
		r.Post("/ai-tools", tools.Add)
		r.Put("/ai-tools/{categoryID}/tools/{toolID}", tools.Update)
		r.Delete("/ai-tools/{categoryID}/{toolID}", tools.Delete)
		r.Patch("/ai-tools/{categoryID}/tools/{toolID}/toggle-active", tools.Toggle)

		r.Get("/users", users.List)
		r.Put("/users/{id}", users.Update)
		r.Delete("/users/{id}", users.Delete)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
