/**
 * @description
 * This file sets up the HTTP router for the GULL backend. It defines the
 * API endpoints, associates them with their handlers, and applies
 * middleware for logging, panic recovery, CORS, and authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for browser clients.
 */

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes creates and returns the router for the GULL backend.
func Routes(h *Handlers, signingKey []byte, allowedOrigins string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Public auth endpoints.
	r.Post("/auth/signup", h.SignUpHandler)
	r.Post("/auth/signin", h.SignInHandler)
	r.Post("/auth/anonymous", h.AnonymousSignInHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(signingKey))

		r.Post("/auth/signout", h.SignOutHandler)
		r.Get("/auth/session", h.SessionHandler)
		r.Put("/auth/profile", h.UpdateProfileHandler)
		r.Post("/auth/impersonate", h.ImpersonateHandler)
		r.Post("/auth/impersonate/exit", h.ExitImpersonationHandler)

		r.Get("/projects", h.ListProjectsHandler)
		r.Post("/projects", h.CreateProjectHandler)
		r.Get("/projects/{id}", h.GetProjectHandler)
		r.Delete("/projects/{id}", h.DeleteProjectHandler)
		r.Get("/projects/{id}/entries", h.ListEntriesHandler)
		r.Post("/projects/{id}/entries", h.CreateEntryHandler)
		r.Put("/entries/{id}", h.UpdateEntryHandler)
		r.Delete("/entries/{id}", h.DeleteEntryHandler)

		r.Get("/balance", h.BalanceHandler)
		r.Get("/balance/history", h.BalanceHistoryHandler)

		r.Get("/events/stream", h.StreamChangesHandler)

		// Admin back office. Role enforcement happens in the service
		// layer against the acting user.
		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", h.ListUsersHandler)
			r.Put("/users/{id}/active", h.SetUserActiveHandler)
			r.Post("/users/{id}/topup", h.TopUpHandler)
			r.Post("/entries/{id}/deduct", h.DeductEntryHandler)
			r.Get("/deductions", h.ListDeductionGroupsHandler)
			r.Delete("/deductions/groups", h.DeleteDeductionGroupHandler)
			r.Delete("/deductions/{id}", h.DeleteDeductionHandler)
			r.Get("/audit", h.AuditLogHandler)
		})
	})

	return r
}
