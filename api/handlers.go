package api

import (
	"time"

	"github.com/rpupo63/company-rating-backend/database"
	"github.com/rpupo63/company-rating-backend/metrics"
	"github.com/rpupo63/company-rating-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, m *metrics.Metrics, maxUploadBytes int64, startupTime time.Time) *routeHandlers {
	repo := db.CompanyRepo()
	return &routeHandlers{
		companyHandler: newCompanyHandler(services.NewCompanyService(repo, m), services.NewRankingService(repo)),
		uploadHandler:  newUploadHandler(services.NewImporter(repo, m), maxUploadBytes),
		healthHandler:  newHealthHandler(repo, startupTime),
	}
}
