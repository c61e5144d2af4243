package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/rpupo63/company-rating-backend/models"
	"github.com/rpupo63/company-rating-backend/services"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:     "rank",
	Short:   "Print the company ranking",
	Example: `  company-ratings rank`,
	Args:    cobra.NoArgs,
	RunE:    runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("opening company store: %w", err)
	}
	defer db.Close(cmd.Context())

	ranking, err := services.NewRankingService(db.CompanyRepo()).Rank(cmd.Context())
	if err != nil {
		return err
	}
	return writeRanking(cmd.OutOrStdout(), ranking)
}

// writeRanking renders the ranking as a table, best score first
func writeRanking(w io.Writer, ranking []models.RankedCompany) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Company", "Location", "Stipend", "Average Score")

	for i, company := range ranking {
		if err := table.Append(
			cast.ToString(i+1),
			company.Company,
			company.Location,
			cast.ToString(company.Stipend),
			fmt.Sprintf("%.2f", company.AverageScore),
		); err != nil {
			return err
		}
	}
	return table.Render()
}
