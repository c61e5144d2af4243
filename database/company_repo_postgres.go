package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/company-rating-backend/errs"
	"github.com/rpupo63/company-rating-backend/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// companyRow is the relational shape of a CompanyRecord. Tags and projects live in JSONB columns.
type companyRow struct {
	ID                   uuid.UUID                                `gorm:"type:uuid;primaryKey;not null"`
	Position             int                                      `gorm:"not null;index:idx_companies_position"`
	Company              string                                   `gorm:"type:text;not null;uniqueIndex:idx_companies_company"`
	Location             string                                   `gorm:"type:text;not null"`
	BusinessDomain       string                                   `gorm:"type:text;not null"`
	Tags                 datatypes.JSONSlice[string]              `gorm:"type:jsonb;not null"`
	Stipend              float64                                  `gorm:"not null"`
	Projects             datatypes.JSONSlice[models.ProjectEntry] `gorm:"type:jsonb;not null"`
	RatingCompanyOverall *float64
	RatingLocation       *float64
	RatingStipend        *float64
	ReachedOutreach      bool   `gorm:"not null"`
	Remarks              string `gorm:"type:text;not null"`
	Version              int64  `gorm:"not null"`
}

func (companyRow) TableName() string {
	return "companies"
}

func (r companyRow) record() models.CompanyRecord {
	return models.CompanyRecord{
		ID:                   r.ID.String(),
		Company:              r.Company,
		Location:             r.Location,
		BusinessDomain:       r.BusinessDomain,
		Tags:                 nonNilTags(r.Tags),
		Stipend:              r.Stipend,
		Projects:             nonNilProjects(r.Projects),
		RatingCompanyOverall: r.RatingCompanyOverall,
		RatingLocation:       r.RatingLocation,
		RatingStipend:        r.RatingStipend,
		ReachedOutreach:      r.ReachedOutreach,
		Remarks:              r.Remarks,
		Version:              r.Version,
	}
}

type PostgresCompanyRepo struct {
	db *gorm.DB
}

func NewPostgresCompanyRepo(db *gorm.DB) *PostgresCompanyRepo {
	return &PostgresCompanyRepo{db}
}

// NewPostgres wraps an open gorm connection, creating the companies table if needed.
func NewPostgres(db *gorm.DB) (Database, error) {
	repo := NewPostgresCompanyRepo(db)
	if err := repo.Migrate(); err != nil {
		return Database{}, err
	}
	closer := func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return New(repo, closer), nil
}

// Migrate creates or updates the companies table
func (r *PostgresCompanyRepo) Migrate() error {
	if err := r.db.AutoMigrate(&companyRow{}); err != nil {
		return errs.NewDatabaseError("migrate", "companies", err)
	}
	return nil
}

// FindAll returns all companies in import order
func (r *PostgresCompanyRepo) FindAll(ctx context.Context) ([]models.CompanyRecord, error) {
	var rows []companyRow
	if err := r.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "companies", err)
	}
	records := make([]models.CompanyRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records, nil
}

func (r *PostgresCompanyRepo) FindNames(ctx context.Context) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).Model(&companyRow{}).Order("position").Pluck("company", &names).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "companies", err)
	}
	return names, nil
}

// FindByName returns a company by its name
func (r *PostgresCompanyRepo) FindByName(ctx context.Context, name string) (*models.CompanyRecord, error) {
	var row companyRow
	err := r.db.WithContext(ctx).Where("company = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("company")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "company", err)
	}
	rec := row.record()
	return &rec, nil
}

// ReplaceAll deletes and inserts inside one transaction, so readers never see an empty table.
func (r *PostgresCompanyRepo) ReplaceAll(ctx context.Context, records []models.CompanyRecord) error {
	rows := make([]companyRow, len(records))
	for i, rec := range records {
		rows[i] = companyRow{
			ID:                   uuid.New(),
			Position:             i,
			Company:              rec.Company,
			Location:             rec.Location,
			BusinessDomain:       rec.BusinessDomain,
			Tags:                 nonNilTags(rec.Tags),
			Stipend:              rec.Stipend,
			Projects:             nonNilProjects(rec.Projects),
			RatingCompanyOverall: rec.RatingCompanyOverall,
			RatingLocation:       rec.RatingLocation,
			RatingStipend:        rec.RatingStipend,
			ReachedOutreach:      rec.ReachedOutreach,
			Remarks:              rec.Remarks,
			Version:              rec.Version,
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&companyRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return errs.NewTransactionFailedError("replace companies", err)
	}
	return nil
}

// Update applies the set fields of update to the named company
func (r *PostgresCompanyRepo) Update(ctx context.Context, name string, expectedVersion *int64, update models.CompanyUpdate) (bool, error) {
	values := map[string]any{
		"version": gorm.Expr("version + 1"),
	}
	if update.RatingCompanyOverall.Set {
		values["rating_company_overall"] = nullable(update.RatingCompanyOverall.Value)
	}
	if update.RatingLocation.Set {
		values["rating_location"] = nullable(update.RatingLocation.Value)
	}
	if update.RatingStipend.Set {
		values["rating_stipend"] = nullable(update.RatingStipend.Value)
	}
	if update.ReachedOutreach.Set {
		values["reached_outreach"] = update.ReachedOutreach.Value
	}
	if update.Remarks.Set {
		values["remarks"] = update.Remarks.Value
	}
	if update.Projects.Set {
		values["projects"] = datatypes.JSONSlice[models.ProjectEntry](nonNilProjects(update.Projects.Value))
	}

	query := r.db.WithContext(ctx).Model(&companyRow{}).Where("company = ?", name)
	if expectedVersion != nil {
		query = query.Where("version = ?", *expectedVersion)
	}
	res := query.Updates(values)
	if res.Error != nil {
		return false, errs.NewDatabaseError("update", "company", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresCompanyRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
