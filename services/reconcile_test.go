package services

import (
	"testing"

	"github.com/rpupo63/company-rating-backend/models"
	"github.com/rpupo63/company-rating-backend/spreadsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rating(v float64) *float64 { return &v }

func meta(company, project string) spreadsheet.MetadataRow {
	return spreadsheet.MetadataRow{
		Company:        company,
		Project:        project,
		Location:       "NY",
		BusinessDomain: "Fintech",
		Tags:           "ai, fintech",
	}
}

func TestReconcile_SingleCompany(t *testing.T) {
	records := Reconcile(
		[]spreadsheet.MetadataRow{meta("Acme", "P1"), meta("Acme", "P2")},
		[]spreadsheet.StipendRow{{Company: "Acme", Stipend: rating(5000)}},
	)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "Acme", rec.Company)
	assert.Equal(t, "NY", rec.Location)
	assert.Equal(t, "Fintech", rec.BusinessDomain)
	assert.Equal(t, 5000.0, rec.Stipend)
	assert.Equal(t, []string{"ai", "fintech"}, rec.Tags)
	assert.Equal(t, []models.ProjectEntry{{Name: "P1"}, {Name: "P2"}}, rec.Projects)
	assert.Nil(t, rec.RatingCompanyOverall)
	assert.Nil(t, rec.RatingLocation)
	assert.Nil(t, rec.RatingStipend)
	assert.False(t, rec.ReachedOutreach)
	assert.Empty(t, rec.Remarks)
}

func TestReconcile_FirstRowWins(t *testing.T) {
	second := meta("Acme", "P2")
	second.Location = "SF"
	second.BusinessDomain = "Health"
	second.Tags = "bio"

	records := Reconcile([]spreadsheet.MetadataRow{meta("Acme", "P1"), second}, nil)

	require.Len(t, records, 1)
	assert.Equal(t, "NY", records[0].Location)
	assert.Equal(t, "Fintech", records[0].BusinessDomain)
	assert.Equal(t, []string{"ai", "fintech"}, records[0].Tags)
}

func TestReconcile_MissingStipendDefaultsToZero(t *testing.T) {
	records := Reconcile(
		[]spreadsheet.MetadataRow{meta("Acme", "P1"), meta("Beta", "Q1"), meta("Gamma", "R1")},
		[]spreadsheet.StipendRow{
			{Company: "Acme", Stipend: rating(100)},
			{Company: "Beta"},
			{Company: "Beta", Stipend: rating(900)},
		},
	)

	require.Len(t, records, 3)
	assert.Equal(t, 100.0, records[0].Stipend)
	// the first Beta stipend row is blank and wins over the later one
	assert.Equal(t, 0.0, records[1].Stipend)
	assert.Equal(t, 0.0, records[2].Stipend)
}

func TestReconcile_FirstStipendMatchWins(t *testing.T) {
	records := Reconcile(
		[]spreadsheet.MetadataRow{meta("Acme", "P1")},
		[]spreadsheet.StipendRow{{Company: "Acme", Stipend: rating(1)}, {Company: "Acme", Stipend: rating(2)}},
	)
	require.Len(t, records, 1)
	assert.Equal(t, 1.0, records[0].Stipend)
}

func TestReconcile_DeduplicatesProjects(t *testing.T) {
	records := Reconcile([]spreadsheet.MetadataRow{
		meta("Acme", "P2"),
		meta("Acme", "P1"),
		meta("Acme", "P2"),
		meta("Acme", ""),
		meta("Acme", "P3"),
	}, nil)

	require.Len(t, records, 1)
	assert.Equal(t, []models.ProjectEntry{{Name: "P2"}, {Name: "P1"}, {Name: "P3"}}, records[0].Projects)
}

func TestReconcile_TrimsProjectNamesBeforeDeduplicating(t *testing.T) {
	records := Reconcile([]spreadsheet.MetadataRow{
		meta(" Acme", "P1 "),
		meta("Acme ", "P1"),
		meta("Acme", "  P2"),
	}, nil)

	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].Company)
	assert.Equal(t, []models.ProjectEntry{{Name: "P1"}, {Name: "P2"}}, records[0].Projects)
}

func TestReconcile_SkipsBlankCompanies(t *testing.T) {
	records := Reconcile([]spreadsheet.MetadataRow{meta("", "P1"), meta("  ", "P2")}, nil)
	assert.Empty(t, records)
}

func TestReconcile_OneRecordPerDistinctCompany(t *testing.T) {
	rows := []spreadsheet.MetadataRow{
		meta("Zeta", "A"), meta("Acme", "B"), meta("", "C"), meta("Zeta", "D"), meta(" Acme ", "E"), meta("Mid", ""),
	}
	records := Reconcile(rows, nil)

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Company
	}
	assert.Equal(t, []string{"Acme", "Mid", "Zeta"}, names)
	assert.Equal(t, []models.ProjectEntry{{Name: "B"}, {Name: "E"}}, records[0].Projects)
	assert.Equal(t, []models.ProjectEntry{}, records[1].Projects)
}

func TestReconcile_CompanyNamesAreCaseSensitive(t *testing.T) {
	records := Reconcile(
		[]spreadsheet.MetadataRow{meta("acme", "P1"), meta("Acme", "P1")},
		[]spreadsheet.StipendRow{{Company: "Acme", Stipend: rating(10)}},
	)
	require.Len(t, records, 2)
	assert.Equal(t, "Acme", records[0].Company)
	assert.Equal(t, 10.0, records[0].Stipend)
	assert.Equal(t, 0.0, records[1].Stipend)
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		cell string
		want []string
	}{
		{cell: "", want: []string{}},
		{cell: "   ", want: []string{}},
		{cell: "ai", want: []string{"ai"}},
		{cell: "ai, fintech ,ml", want: []string{"ai", "fintech", "ml"}},
		{cell: "ai,,ml,", want: []string{"ai", "ml"}},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTags(tt.cell))
		})
	}
}
