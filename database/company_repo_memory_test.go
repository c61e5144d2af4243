package database

import (
	"context"
	"testing"

	"github.com/rpupo63/company-rating-backend/errs"
	"github.com/rpupo63/company-rating-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rating(v float64) *float64 { return &v }

func seed(t *testing.T, repo *MemoryCompanyRepo, names ...string) {
	t.Helper()
	records := make([]models.CompanyRecord, len(names))
	for i, n := range names {
		records[i] = models.NewCompanyRecord(n)
		records[i].Projects = []models.ProjectEntry{{Name: "P1"}}
	}
	require.NoError(t, repo.ReplaceAll(context.Background(), records))
}

func TestMemoryCompanyRepo_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCompanyRepo()

	seed(t, repo, "Acme", "Beta")
	seed(t, repo, "Gamma")

	names, err := repo.FindNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma"}, names)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotEmpty(t, all[0].ID)
}

func TestMemoryCompanyRepo_FindByName(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCompanyRepo()
	seed(t, repo, "Acme")

	rec, err := repo.FindByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", rec.Company)

	_, err = repo.FindByName(ctx, "acme")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, 404, errs.StatusOf(err))
}

func TestMemoryCompanyRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCompanyRepo()
	seed(t, repo, "Acme")

	rec, err := repo.FindByName(ctx, "Acme")
	require.NoError(t, err)
	rec.Projects[0].Rating = rating(5)
	rec.Remarks = "mutated"

	again, err := repo.FindByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Nil(t, again.Projects[0].Rating)
	assert.Empty(t, again.Remarks)
}

func TestMemoryCompanyRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCompanyRepo()
	seed(t, repo, "Acme")

	matched, err := repo.Update(ctx, "Acme", nil, models.CompanyUpdate{
		RatingLocation: models.Some(rating(4)),
		Remarks:        models.Some("call back"),
	})
	require.NoError(t, err)
	assert.True(t, matched)

	rec, err := repo.FindByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, 4.0, *rec.RatingLocation)
	assert.Equal(t, "call back", rec.Remarks)
	assert.Nil(t, rec.RatingStipend)
	assert.Equal(t, int64(1), rec.Version)

	stale := int64(0)
	matched, err = repo.Update(ctx, "Acme", &stale, models.CompanyUpdate{Remarks: models.Some("lost")})
	require.NoError(t, err)
	assert.False(t, matched)

	matched, err = repo.Update(ctx, "Nobody", nil, models.CompanyUpdate{Remarks: models.Some("x")})
	require.NoError(t, err)
	assert.False(t, matched)
}
