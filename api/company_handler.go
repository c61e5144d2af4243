package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/company-rating-backend/errs"
	"github.com/rpupo63/company-rating-backend/models"
	"github.com/rpupo63/company-rating-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxPatchBytes caps the JSON body of an update request
const maxPatchBytes = 1 << 20

type companyHandler struct {
	responder Responder
	logger    zerolog.Logger
	companies services.CompanyService
	ranking   services.RankingService
}

func newCompanyHandler(companies services.CompanyService, ranking services.RankingService) companyHandler {
	logger := log.With().Str("handlerName", "companyHandler").Logger()

	return companyHandler{
		responder: NewResponder(logger),
		logger:    logger,
		companies: companies,
		ranking:   ranking,
	}
}

// getAllCompanies lists the names of every stored company
// @Summary List companies
// @Tags Companies
// @Produce json
// @Success 200 {object} CompaniesResponse
// @Failure 500 {object} ErrorResponse
// @Router /companies [get]
func (h companyHandler) getAllCompanies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := h.companies.ListNames(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find company names", "companies", err))
			return
		}
		if names == nil {
			names = []string{}
		}

		h.responder.WriteJSON(w, CompaniesResponse{Companies: names})
	}
}

// getCompany returns the full record of one company
// @Summary Get a company
// @Tags Companies
// @Produce json
// @Param companyName path string true "Company name"
// @Success 200 {object} CompanyResponse
// @Failure 404 {object} ErrorResponse
// @Router /company/{companyName} [get]
func (h companyHandler) getCompany() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := companyNameParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		rec, err := h.companies.Get(r.Context(), name)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find company", "company", err))
			return
		}

		h.responder.WriteJSON(w, CompanyResponse{Company: *rec})
	}
}

// updateCompany applies a partial ratings/remarks update to one company
// @Summary Update a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param companyName path string true "Company name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Empty or invalid patch"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Concurrent update"
// @Router /company/{companyName}/update [post]
func (h companyHandler) updateCompany() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := companyNameParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxPatchBytes)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxPatchBytes))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("update", err))
			return
		}

		patch, err := services.ParsePatch(body)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		rec, err := h.companies.ApplyUpdate(r.Context(), name, patch)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update company", "company", err))
			return
		}

		h.logger.Info().Str("company", rec.Company).Int64("version", rec.Version).Msg("company updated")
		h.responder.WriteJSON(w, MessageResponse{Message: "Company updated."})
	}
}

// getRanking returns every company ordered by its aggregated score
// @Summary Rank companies
// @Tags Companies
// @Produce json
// @Success 200 {object} RankingResponse
// @Failure 500 {object} ErrorResponse
// @Router /ranking [get]
func (h companyHandler) getRanking() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ranking, err := h.ranking.Rank(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("rank companies", "companies", err))
			return
		}
		if ranking == nil {
			ranking = []models.RankedCompany{}
		}

		h.responder.WriteJSON(w, RankingResponse{Ranking: ranking})
	}
}

// companyNameParam returns the decoded company name. chi routes on RawPath when it is set, and only then is
// the parameter still escaped.
func companyNameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "companyName")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			return "", errs.NewInvalidFieldError("companyName", "not a valid path segment")
		}
		name = unescaped
	}
	if name == "" {
		return "", errs.NewMissingRequiredFieldError("companyName")
	}
	return name, nil
}
