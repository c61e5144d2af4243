package database

import (
	"context"

	"github.com/rpupo63/company-rating-backend/models"
)

// CompanyRepo is the document store holding one CompanyRecord per company name.
type CompanyRepo interface {
	// FindAll returns every record in import order.
	FindAll(ctx context.Context) ([]models.CompanyRecord, error)
	// FindNames returns every company name in import order.
	FindNames(ctx context.Context) ([]string, error)
	// FindByName returns errs.NewNotFound("company") when no record matches.
	FindByName(ctx context.Context, name string) (*models.CompanyRecord, error)
	// ReplaceAll drops every stored record and stores records in their place.
	ReplaceAll(ctx context.Context, records []models.CompanyRecord) error
	// Update writes the set fields of update and increments the version. With a non-nil expectedVersion the
	// write only happens if the stored version still matches. It reports whether a record was matched.
	Update(ctx context.Context, name string, expectedVersion *int64, update models.CompanyUpdate) (bool, error)
	Ping(ctx context.Context) error
}

type Database struct {
	companyRepo CompanyRepo
	closer      func(context.Context) error
}

// New wraps a repository and the function releasing its connection.
func New(companyRepo CompanyRepo, closer func(context.Context) error) Database {
	return Database{
		companyRepo: companyRepo,
		closer:      closer,
	}
}

func (d Database) CompanyRepo() CompanyRepo {
	return d.companyRepo
}

// Close releases the underlying connection, if any.
func (d Database) Close(ctx context.Context) error {
	if d.closer == nil {
		return nil
	}
	return d.closer(ctx)
}

// nullable converts a rating pointer into a driver value, nil for an unset rating.
func nullable(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nonNilProjects(projects []models.ProjectEntry) []models.ProjectEntry {
	if projects == nil {
		return []models.ProjectEntry{}
	}
	return projects
}
