package services

import (
	"math"

	"github.com/rpupo63/company-rating-backend/models"
)

// Score averages the ratings present on a record. The three company ratings count individually; the
// project ratings are first averaged into a single entry. Unset ratings are skipped, not counted as zero.
// The result is rounded to two decimals, halves away from zero. A record with no ratings scores 0.
func Score(rec models.CompanyRecord) float64 {
	var values []float64
	for _, r := range []*float64{rec.RatingCompanyOverall, rec.RatingLocation, rec.RatingStipend} {
		if isRating(r) {
			values = append(values, *r)
		}
	}

	var projectSum float64
	var rated int
	for _, p := range rec.Projects {
		if isRating(p.Rating) {
			projectSum += *p.Rating
			rated++
		}
	}
	if rated > 0 {
		values = append(values, projectSum/float64(rated))
	}

	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return roundScore(sum / float64(len(values)))
}

func isRating(r *float64) bool {
	return r != nil && !math.IsNaN(*r) && !math.IsInf(*r, 0)
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
