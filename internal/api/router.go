// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reliva-app/reliva-feed/internal/middleware"
)

// NewRouter assembles the full HTTP surface.
//
// The websocket route sits inside the API group but outside the rate
// limiter: the connection is long-lived and the per-connection intent
// limiter inside the hub covers it.
func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(h.cfg.Security))
	r.Use(middleware.RequestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ws", h.WebSocket)
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(h.cfg.Security))
			r.Use(middleware.Prometheus)

			r.Get("/posts", h.Posts)
			r.Get("/comments/{commentId}", h.Comment)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
