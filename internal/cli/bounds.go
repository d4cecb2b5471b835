package cli

import (
	"time"

	"github.com/spf13/cobra"

	"weather-report/internal/app"
)

var (
	boundsYear  int
	boundsMonth int
)

var boundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Print the UTC query range for a local calendar month",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Bounds(app.BoundsOptions{Year: boundsYear, Month: boundsMonth})
	},
}

func init() {
	now := time.Now()
	boundsCmd.Flags().IntVar(&boundsYear, "year", now.Year(), "Year")
	boundsCmd.Flags().IntVar(&boundsMonth, "month", int(now.Month()), "Month (1-12)")
}
