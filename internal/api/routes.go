// Package api assembles the HTTP surface of the relay: the webhook ingress,
// the tracking endpoints and the small dashboard-facing stats API.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/signature-relay/internal/relay"
	"github.com/ignite/signature-relay/internal/tracking"
)

// SetupRoutes builds the top-level router. The relay and tracking handlers
// register their own paths; this package only owns /health and /api.
func SetupRoutes(h *Handlers, relayH *relay.Handler, trackingH *tracking.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// The stats API is read by the dashboard SPA; tracking endpoints are hit
	// from arbitrary mail clients, so origins stay open and credential-free.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Relay-Secret"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(api chi.Router) {
		api.Get("/banners/{id}/stats", h.BannerStats)
	})

	relayH.Register(r)
	trackingH.Register(r)

	return r
}
