package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/company-rating-backend/metrics"
)

// setupRoutes registers every public endpoint. There is no authentication.
func setupRoutes(r chi.Router, handlers *routeHandlers, m *metrics.Metrics) {
	r.Get("/healthz", handlers.healthHandler.getHealth())
	if m != nil {
		r.Method("GET", "/metrics", m.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(requestLoggingMiddleware)
		r.Use(metricsMiddleware(m))

		r.Post("/upload", handlers.uploadHandler.uploadFiles())

		r.Get("/companies", handlers.companyHandler.getAllCompanies())
		r.Get("/company/{companyName}", handlers.companyHandler.getCompany())
		r.Post("/company/{companyName}/update", handlers.companyHandler.updateCompany())

		r.Get("/ranking", handlers.companyHandler.getRanking())
	})
}
