package services

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/rpupo63/company-rating-backend/database"
	"github.com/rpupo63/company-rating-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type RankingService struct {
	logger zerolog.Logger
	repo   database.CompanyRepo
}

func NewRankingService(repo database.CompanyRepo) RankingService {
	return RankingService{
		logger: log.With().Str("serviceName", "rankingService").Logger(),
		repo:   repo,
	}
}

// Rank scores every stored company, best first.
func (s RankingService) Rank(ctx context.Context) ([]models.RankedCompany, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ranked := RankRecords(records)
	s.logger.Debug().Int("companies", len(ranked)).Msg("ranking computed")
	return ranked, nil
}

// RankRecords orders records by descending score. Equal scores fall back to company name ascending.
func RankRecords(records []models.CompanyRecord) []models.RankedCompany {
	ranked := make([]models.RankedCompany, len(records))
	for i, rec := range records {
		ranked[i] = models.RankedCompany{
			Company:      rec.Company,
			Location:     rec.Location,
			Stipend:      rec.Stipend,
			AverageScore: Score(rec),
		}
	}
	slices.SortStableFunc(ranked, func(a, b models.RankedCompany) int {
		if c := cmp.Compare(b.AverageScore, a.AverageScore); c != 0 {
			return c
		}
		return strings.Compare(a.Company, b.Company)
	})
	return ranked
}
