package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpupo63/company-rating-backend/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the stored companies with two spreadsheets",
	Long: `Reads the companies and stipend spreadsheets, reconciles them into one record
per company and replaces every stored company with the result.`,
	Example: `  company-ratings import --companies companies.xlsx --stipends stipends.xls`,
	Args:    cobra.NoArgs,
	RunE:    runImport,
}

func init() {
	importCmd.Flags().String("companies", "", "companies spreadsheet (.xlsx or .xls)")
	importCmd.Flags().String("stipends", "", "stipend spreadsheet (.xlsx or .xls)")
	_ = importCmd.MarkFlagRequired("companies")
	_ = importCmd.MarkFlagRequired("stipends")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	companiesPath, _ := cmd.Flags().GetString("companies")
	stipendsPath, _ := cmd.Flags().GetString("stipends")

	companies, err := os.Open(companiesPath)
	if err != nil {
		return fmt.Errorf("opening companies spreadsheet: %w", err)
	}
	defer companies.Close()

	stipends, err := os.Open(stipendsPath)
	if err != nil {
		return fmt.Errorf("opening stipend spreadsheet: %w", err)
	}
	defer stipends.Close()

	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("opening company store: %w", err)
	}
	defer db.Close(cmd.Context())

	importer := services.NewImporter(db.CompanyRepo(), nil)
	result, err := importer.ImportFiles(cmd.Context(),
		services.Upload{Source: services.CompaniesSource, Filename: filepath.Base(companiesPath), File: companies},
		services.Upload{Source: services.StipendSource, Filename: filepath.Base(stipendsPath), File: stipends},
	)
	if err != nil {
		return err
	}

	log.Info().Int("companies", result.Imported).Msg("import finished")
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d companies.\n", result.Imported)
	return nil
}
