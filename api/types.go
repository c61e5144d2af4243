package api

import "github.com/rpupo63/company-rating-backend/models"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	companyHandler companyHandler
	uploadHandler  uploadHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"company not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"stipend_details"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Company updated."`
}

type UploadResponse struct {
	Message                string `json:"message" example:"Imported 12 companies."`
	TotalUploadedFromExcel int    `json:"total_uploaded_from_excel" example:"12"`
}

type CompaniesResponse struct {
	Companies []string `json:"companies"`
}

type CompanyResponse struct {
	Company models.CompanyRecord `json:"company"`
}

type RankingResponse struct {
	Ranking []models.RankedCompany `json:"ranking"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Uptime string `json:"uptime" example:"1h2m3s"`
	Error  string `json:"error,omitempty"`
}
