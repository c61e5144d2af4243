package services

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/rpupo63/company-rating-backend/database"
	"github.com/rpupo63/company-rating-backend/errs"
	"github.com/rpupo63/company-rating-backend/metrics"
	"github.com/rpupo63/company-rating-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxUpdateAttempts bounds the read-merge-write loop for project ratings.
const maxUpdateAttempts = 3

// Patch keys accepted by ParsePatch.
const (
	KeyRatingCompanyOverall = "rating_company_overall"
	KeyRatingLocation       = "rating_location"
	KeyRatingStipend        = "rating_stipend"
	KeyReachedOutreach      = "reached_outreach"
	KeyReachedLinkedIn      = "reached_linkedin"
	KeyRemarks              = "remarks"
	KeyProjectRatings       = "project_ratings"
)

type CompanyService struct {
	logger  zerolog.Logger
	repo    database.CompanyRepo
	metrics *metrics.Metrics
}

func NewCompanyService(repo database.CompanyRepo, m *metrics.Metrics) CompanyService {
	return CompanyService{
		logger:  log.With().Str("serviceName", "companyService").Logger(),
		repo:    repo,
		metrics: m,
	}
}

func (s CompanyService) ListNames(ctx context.Context) ([]string, error) {
	return s.repo.FindNames(ctx)
}

func (s CompanyService) Get(ctx context.Context, name string) (*models.CompanyRecord, error) {
	return s.repo.FindByName(ctx, name)
}

// ApplyUpdate writes the keys present in patch onto the named company and returns the updated record.
//
// Scalar keys overwrite their field verbatim. Project ratings are merged into the stored project list, which
// needs a read before the write; that write is conditional on the version read, and a lost race is retried
// against a fresh read.
func (s CompanyService) ApplyUpdate(ctx context.Context, name string, patch models.CompanyPatch) (*models.CompanyRecord, error) {
	rec, err := s.applyUpdate(ctx, name, patch)
	s.metrics.RecordUpdate(err)
	return rec, err
}

func (s CompanyService) applyUpdate(ctx context.Context, name string, patch models.CompanyPatch) (*models.CompanyRecord, error) {
	if patch.IsEmpty() {
		return nil, errs.NewNoOpError()
	}

	update := models.CompanyUpdate{
		RatingCompanyOverall: patch.RatingCompanyOverall,
		RatingLocation:       patch.RatingLocation,
		RatingStipend:        patch.RatingStipend,
		ReachedOutreach:      patch.ReachedOutreach,
		Remarks:              patch.Remarks,
	}

	if !patch.ProjectRatings.Set {
		matched, err := s.repo.Update(ctx, name, nil, update)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, errs.NewNotFound("company")
		}
		return s.repo.FindByName(ctx, name)
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		current, err := s.repo.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}

		update.Projects = models.Some(MergeProjectRatings(current.Projects, patch.ProjectRatings.Value))
		version := current.Version
		matched, err := s.repo.Update(ctx, name, &version, update)
		if err != nil {
			return nil, err
		}
		if matched {
			update.Apply(current)
			return current, nil
		}

		s.logger.Warn().
			Str("company", name).
			Int64("version", version).
			Int("attempt", attempt).
			Msg("company changed during project rating merge, retrying")
	}
	return nil, errs.NewVersionConflictError("company", maxUpdateAttempts)
}

// MergeProjectRatings overwrites the rating of every existing project named in ratings. Ratings for unknown
// projects are ignored and projects without a matching entry keep their rating. When a name appears more
// than once in ratings the first entry wins.
func MergeProjectRatings(existing, ratings []models.ProjectEntry) []models.ProjectEntry {
	byName := make(map[string]*float64, len(ratings))
	for _, r := range ratings {
		if _, ok := byName[r.Name]; !ok {
			byName[r.Name] = r.Rating
		}
	}

	merged := make([]models.ProjectEntry, len(existing))
	for i, p := range existing {
		merged[i] = p
		if rating, ok := byName[p.Name]; ok {
			merged[i].Rating = rating
		}
	}
	return merged
}

// ParsePatch decodes a JSON update payload. Only the recognised keys are read; a key that is present
// but null clears the field.
func ParsePatch(body []byte) (models.CompanyPatch, error) {
	var patch models.CompanyPatch

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return patch, errs.NewBadRequestError("No JSON payload provided.")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return patch, errs.NewInvalidJSONError(err)
	}

	if err := decodeKey(raw, KeyRatingCompanyOverall, &patch.RatingCompanyOverall); err != nil {
		return patch, err
	}
	if err := decodeKey(raw, KeyRatingLocation, &patch.RatingLocation); err != nil {
		return patch, err
	}
	if err := decodeKey(raw, KeyRatingStipend, &patch.RatingStipend); err != nil {
		return patch, err
	}
	if err := decodeKey(raw, KeyReachedOutreach, &patch.ReachedOutreach); err != nil {
		return patch, err
	}
	if !patch.ReachedOutreach.Set {
		if err := decodeKey(raw, KeyReachedLinkedIn, &patch.ReachedOutreach); err != nil {
			return patch, err
		}
	}
	if err := decodeKey(raw, KeyRemarks, &patch.Remarks); err != nil {
		return patch, err
	}
	if err := decodeKey(raw, KeyProjectRatings, &patch.ProjectRatings); err != nil {
		return patch, err
	}
	return patch, nil
}

func decodeKey[T any](raw map[string]json.RawMessage, key string, dst *models.Optional[T]) error {
	msg, ok := raw[key]
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return errs.NewInvalidFieldError(key, err.Error())
	}
	*dst = models.Some(v)
	return nil
}
