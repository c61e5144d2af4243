package services

import (
	"context"
	"io"
	"time"

	"github.com/rpupo63/company-rating-backend/database"
	"github.com/rpupo63/company-rating-backend/metrics"
	"github.com/rpupo63/company-rating-backend/spreadsheet"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Upload names of the two spreadsheets, also used as their multipart field names.
const (
	CompaniesSource = "companies_details"
	StipendSource   = "stipend_details"
)

// Upload is one spreadsheet handed to the importer.
type Upload struct {
	Source   string
	Filename string
	File     io.ReadSeeker
}

type ImportResult struct {
	// Imported is the number of records written.
	Imported int
	// DistinctCompanies is the number of distinct non-empty company names in the metadata sheet.
	DistinctCompanies int
}

type Importer struct {
	logger  zerolog.Logger
	repo    database.CompanyRepo
	metrics *metrics.Metrics
}

func NewImporter(repo database.CompanyRepo, m *metrics.Metrics) Importer {
	return Importer{
		logger:  log.With().Str("serviceName", "importer").Logger(),
		repo:    repo,
		metrics: m,
	}
}

// ImportFiles parses both spreadsheets concurrently and imports them. Any read, schema or row error aborts
// the import before the store is touched.
func (i Importer) ImportFiles(ctx context.Context, companies, stipends Upload) (ImportResult, error) {
	var (
		metadataRows []spreadsheet.MetadataRow
		stipendRows  []spreadsheet.StipendRow
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		sheet, err := spreadsheet.Read(companies.Source, companies.Filename, companies.File)
		if err != nil {
			return err
		}
		metadataRows, err = spreadsheet.DecodeMetadata(companies.Source, sheet)
		return err
	})
	g.Go(func() error {
		sheet, err := spreadsheet.Read(stipends.Source, stipends.Filename, stipends.File)
		if err != nil {
			return err
		}
		stipendRows, err = spreadsheet.DecodeStipends(stipends.Source, sheet)
		return err
	})
	if err := g.Wait(); err != nil {
		i.metrics.RecordImport(err, 0)
		return ImportResult{}, err
	}

	return i.Import(ctx, metadataRows, stipendRows)
}

// Import reconciles the rows and replaces the stored collection with the result.
func (i Importer) Import(ctx context.Context, metadata []spreadsheet.MetadataRow, stipends []spreadsheet.StipendRow) (ImportResult, error) {
	start := time.Now()
	records := Reconcile(metadata, stipends)

	if err := i.repo.ReplaceAll(ctx, records); err != nil {
		i.logger.Error().Err(err).Int("companies", len(records)).Msg("replacing companies failed")
		i.metrics.RecordImport(err, 0)
		return ImportResult{}, err
	}

	i.logger.Info().
		Int("metadataRows", len(metadata)).
		Int("stipendRows", len(stipends)).
		Int("companies", len(records)).
		Dur("duration", time.Since(start)).
		Msg("companies imported")
	i.metrics.RecordImport(nil, len(records))

	return ImportResult{Imported: len(records), DistinctCompanies: len(records)}, nil
}
