// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// MapleCMS API. Routes live under /api/v1, grouped by resource, with
// per-group auth requirements.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"maplecms/internal/auth"
	"maplecms/internal/handlers"
	"maplecms/internal/middleware"
	"maplecms/internal/models"
)

// Deps carries everything the router wires together.
type Deps struct {
	Tokens      *auth.Manager
	AuthLimiter *middleware.RateLimiter // applied to credential endpoints only

	Auth       *handlers.Auth
	Articles   *handlers.Articles
	Categories *handlers.Categories
	Tags       *handlers.Tags
	Users      *handlers.Users
	Media      *handlers.Media
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Authenticate(d.Tokens))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Authentication. Credential endpoints are rate-limited per IP.
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if d.AuthLimiter != nil {
					r.Use(d.AuthLimiter.Middleware)
				}
				r.Post("/register", d.Auth.Register)
				r.Post("/login", d.Auth.Login)
				r.Post("/refresh", d.Auth.Refresh)
			})
			r.Post("/logout", d.Auth.Logout)
		})

		// Articles. Reads are public (drafts filtered in the handler);
		// writes require authentication, with per-article ownership checks
		// in the handlers.
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", d.Articles.List)
			r.Get("/{id}", d.Articles.Get)
			r.Get("/slug/{slug}", d.Articles.GetBySlug)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", d.Articles.Create)
				r.Patch("/{id}", d.Articles.Update)
				r.Put("/{id}", d.Articles.Update)
				r.Delete("/{id}", d.Articles.Delete)
			})
		})

		// Categories. Reads public, writes editor/admin.
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Categories.List)
			r.Get("/{id}", d.Categories.Get)
			r.Get("/slug/{slug}", d.Categories.GetBySlug)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
				r.Post("/", d.Categories.Create)
				r.Patch("/{id}", d.Categories.Update)
				r.Put("/{id}", d.Categories.Update)
				r.Delete("/{id}", d.Categories.Delete)
			})
		})

		// Tags. Same access shape as categories, except authors may also
		// create tags while writing an article.
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", d.Tags.List)
			r.Get("/{id}", d.Tags.Get)
			r.Get("/slug/{slug}", d.Tags.GetBySlug)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor, models.RoleAuthor))
				r.Post("/", d.Tags.Create)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
				r.Patch("/{id}", d.Tags.Update)
				r.Put("/{id}", d.Tags.Update)
				r.Delete("/{id}", d.Tags.Delete)
			})
		})

		// Users. /me serves the caller; everything else is admin only.
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/me", d.Users.Me)
			r.Patch("/me", d.Users.UpdateMe)
			r.Put("/me", d.Users.UpdateMe)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/", d.Users.List)
				r.Get("/{id}", d.Users.Get)
				r.Patch("/{id}", d.Users.Update)
				r.Put("/{id}", d.Users.Update)
				r.Delete("/{id}", d.Users.Delete)
			})
		})

		// Media. Listing and fetching metadata require authentication;
		// uploads are open to content roles, deletion to editor/admin.
		r.Route("/media", func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", d.Media.List)
			r.Get("/{id}", d.Media.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor, models.RoleAuthor))
				r.Post("/upload", d.Media.Upload)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
				r.Delete("/{id}", d.Media.Delete)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
