package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"agriprice/internal/collector"
	"agriprice/internal/model"
)

var (
	predictCommodity string
	predictMonths    int
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Request a price prediction from the API and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if predictMonths < 1 {
			return fmt.Errorf("--months must be at least 1")
		}
		client := collector.NewAPIClient(cfg.Dashboard.APIBaseURL, cfg.Proxy, cfg.Timeout())
		resp, err := client.Predict(cmd.Context(), model.PredictionRequest{
			Months:    predictMonths,
			Commodity: predictCommodity,
		})
		if err != nil {
			return fmt.Errorf("predict %s: %w", predictCommodity, err)
		}

		rows := resp.Rows()
		if len(rows) != predictMonths {
			return fmt.Errorf("expected %d predictions, got %d", predictMonths, len(rows))
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "DATE\t%s\n", predictCommodity)
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t₹%.2f\n", r.Date, r.Price)
		}
		return w.Flush()
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictCommodity, "commodity", model.DefaultCommodity, "Commodity to forecast")
	predictCmd.Flags().IntVarP(&predictMonths, "months", "m", 1, "Number of months ahead")
}
