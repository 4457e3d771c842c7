package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the full router. Analytics endpoints are versioned under
// /api/v1; health, readiness and metrics stay unversioned for probes and
// scrapers.
func (h *Handler) Routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Get("/teams", h.GetTeamAnalytics)
		r.Route("/competitors/{id}", func(r chi.Router) {
			r.Get("/prediction", h.GetCompetitorPrediction)
			r.Get("/risk", h.GetCompetitorRisk)
		})
		r.Post("/predictions/batch", h.BatchPredictions)
		r.Post("/recommendations", h.GenerateRecommendations)
	})

	return r
}
