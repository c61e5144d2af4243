package services

import (
	"slices"
	"strings"

	"github.com/rpupo63/company-rating-backend/models"
	"github.com/rpupo63/company-rating-backend/spreadsheet"
)

// Reconcile left-joins the metadata rows onto the stipend rows by company name and folds each company's
// rows into one record.
//
// Rows without a company name are dropped. The first metadata row of a company supplies its location,
// business domain, tags and stipend; projects are collected across all of its rows, first occurrence wins.
// When a company has several stipend rows the first one is used, and a blank or missing stipend is 0.
// Records come back ordered by company name.
func Reconcile(metadata []spreadsheet.MetadataRow, stipends []spreadsheet.StipendRow) []models.CompanyRecord {
	stipendByCompany := make(map[string]float64, len(stipends))
	for _, s := range stipends {
		name := strings.TrimSpace(s.Company)
		if name == "" {
			continue
		}
		if _, ok := stipendByCompany[name]; ok {
			continue
		}
		var v float64
		if s.Stipend != nil {
			v = *s.Stipend
		}
		stipendByCompany[name] = v
	}

	type group struct {
		record   models.CompanyRecord
		projects map[string]bool
	}
	groups := make(map[string]*group)
	var order []string

	for _, row := range metadata {
		name := strings.TrimSpace(row.Company)
		if name == "" {
			continue
		}

		g, ok := groups[name]
		if !ok {
			rec := models.NewCompanyRecord(name)
			rec.Location = row.Location
			rec.BusinessDomain = row.BusinessDomain
			rec.Tags = SplitTags(row.Tags)
			rec.Stipend = stipendByCompany[name]
			g = &group{record: rec, projects: make(map[string]bool)}
			groups[name] = g
			order = append(order, name)
		}

		project := strings.TrimSpace(row.Project)
		if project == "" || g.projects[project] {
			continue
		}
		g.projects[project] = true
		g.record.Projects = append(g.record.Projects, models.ProjectEntry{Name: project})
	}

	slices.Sort(order)
	records := make([]models.CompanyRecord, 0, len(order))
	for _, name := range order {
		records = append(records, groups[name].record)
	}
	return records
}

// SplitTags splits a comma separated tags cell. Fragments are trimmed and blank ones dropped.
func SplitTags(cell string) []string {
	tags := []string{}
	for _, t := range strings.Split(cell, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
