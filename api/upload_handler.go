package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/rpupo63/company-rating-backend/errs"
	"github.com/rpupo63/company-rating-backend/services"
	"github.com/rpupo63/company-rating-backend/spreadsheet"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// multipartMemory is how much of a multipart form is buffered in memory before spilling to disk
const multipartMemory = 8 << 20

type uploadHandler struct {
	responder      Responder
	logger         zerolog.Logger
	importer       services.Importer
	maxUploadBytes int64
}

func newUploadHandler(importer services.Importer, maxUploadBytes int64) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		importer:       importer,
		maxUploadBytes: maxUploadBytes,
	}
}

// uploadFiles replaces the stored companies with the contents of two spreadsheets
// @Summary Import companies
// @Description Reconciles the companies and stipend spreadsheets and replaces every stored company
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param companies_details formData file true "Companies spreadsheet (.xlsx or .xls)"
// @Param stipend_details formData file true "Stipend spreadsheet (.xlsx or .xls)"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse "Missing files, wrong file type or schema error"
// @Failure 413 {object} ErrorResponse "Upload too large"
// @Failure 500 {object} ErrorResponse "Spreadsheet could not be parsed"
// @Router /upload [post]
func (h uploadHandler) uploadFiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxUploadBytes))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		companiesFile, companiesHeader, companiesErr := r.FormFile(services.CompaniesSource)
		if companiesErr == nil {
			defer companiesFile.Close()
		}
		stipendFile, stipendHeader, stipendErr := r.FormFile(services.StipendSource)
		if stipendErr == nil {
			defer stipendFile.Close()
		}
		if companiesErr != nil || stipendErr != nil {
			h.responder.WriteError(w, errs.NewMissingFilesError(services.CompaniesSource, services.StipendSource))
			return
		}

		companies, err := upload(services.CompaniesSource, companiesFile, companiesHeader)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		stipends, err := upload(services.StipendSource, stipendFile, stipendHeader)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.importer.ImportFiles(r.Context(), companies, stipends)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("import companies", "companies", err))
			return
		}

		h.responder.WriteJSON(w, UploadResponse{
			Message:                fmt.Sprintf("Imported %d companies.", result.Imported),
			TotalUploadedFromExcel: result.DistinctCompanies,
		})
	}
}

func upload(source string, file multipart.File, header *multipart.FileHeader) (services.Upload, error) {
	if !spreadsheet.Allowed(header.Filename) {
		return services.Upload{}, errs.NewInvalidFileTypeError(source, header.Filename, spreadsheet.AllowedExtensions)
	}
	return services.Upload{Source: source, Filename: header.Filename, File: file}, nil
}
