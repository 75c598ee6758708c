// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// casebook server. Routes split into the public browse surface and the
// admin management group.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"

	"casebook/internal/handlers"
	"casebook/internal/middleware"
)

// adminWriteLimit caps form submissions per client IP. Reads are unlimited.
const (
	adminWriteLimit  = 60
	adminWriteWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(admin *handlers.Admin, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", public.Health)

	// Admin management area. Writes go through a per-IP rate limit.
	writeLimiter := middleware.NewRateLimiter(adminWriteLimit, adminWriteWindow)
	r.Route("/admin/cases", func(r chi.Router) {
		r.Get("/", admin.CasesList)
		r.Get("/new", admin.CaseNew)
		r.Get("/{slug}/edit", admin.CaseEdit)

		r.Group(func(r chi.Router) {
			r.Use(writeLimiter.Middleware)
			r.Post("/", admin.CaseCreate)
			r.Post("/{slug}", admin.CaseUpdate)
			// Deletion is POST only so a crawler following links can never
			// remove a record.
			r.Post("/{slug}/delete", admin.CaseDelete)
		})
	})

	// Public browse surface.
	r.Get("/", public.Index)
	r.Get("/cases/{slug}", public.Detail)

	return r
}
