package cli

import (
	"time"

	"github.com/spf13/cobra"

	"weather-report/internal/app"
)

var (
	reportCity   string
	reportYear   int
	reportMonth  int
	reportInput  string
	reportSales  string
	reportOutDir string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate one calendar month of observations into daily and ten-day tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ReportOptions{
			City:      reportCity,
			Year:      reportYear,
			Month:     reportMonth,
			InputPath: reportInput,
			SalesPath: reportSales,
			OutDir:    reportOutDir,
		}
		return getApp().Report(cmd.Context(), opts)
	},
}

func init() {
	now := time.Now()
	reportCmd.Flags().StringVar(&reportCity, "city", "東京", "Configured city to fetch (online mode)")
	reportCmd.Flags().IntVar(&reportYear, "year", now.Year(), "Report year")
	reportCmd.Flags().IntVar(&reportMonth, "month", int(now.Month()), "Report month (1-12)")
	reportCmd.Flags().StringVar(&reportInput, "input", "", "Offline JSON payload file (skips the API)")
	reportCmd.Flags().StringVar(&reportSales, "sales-csv", "", "Per-day sales/inventory CSV to join on date")
	reportCmd.Flags().StringVar(&reportOutDir, "out-dir", "", "Directory for CSV/PNG artefacts")
}
