package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func flowCmd() *cobra.Command {
	var (
		lookback int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "flow TICKER",
		Short: "Print the cumulative volume delta report for an underlying",
		Long: `Print the cumulative volume delta report for an underlying.

The CVD series runs on synthesized intraday bars; divergence compares the
price trend against the flow trend over the trailing lookback window.

Examples:
  gexctl flow GGAL
  gexctl flow GGAL --lookback 20 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := buildService(cfg, false)

			view, err := svc.Flow(normalizeTicker(args[0]), lookback)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(view)
			}

			fmt.Printf("%s  %d intraday bars\n", view.Symbol, len(view.Points))
			if view.Divergence != nil {
				d := view.Divergence
				fmt.Printf("divergence %s  price %s (%.2f%%)  cvd %s (%.0f)\n",
					d.Kind, d.PriceTrend, d.PriceChangePct, d.CVDTrend, d.CVDChange)
			}
			if view.Summary != nil {
				s := view.Summary
				fmt.Printf("volume %d  avg %.0f  rvol %.2f  net CVD %.0f\n",
					s.CurrentVolume, s.AverageVolume, s.RelativeVolume, s.NetCVD)
			}

			fmt.Printf("\n%20s %10s %10s %10s %12s\n", "TIME", "PRICE", "BUY", "SELL", "CVD")
			for _, p := range view.Points {
				fmt.Printf("%20s %10.2f %10d %10d %12.0f\n",
					p.Timestamp.Format("2006-01-02 15:04"), p.Price, p.BuyVolume, p.SellVolume, p.CVD)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&lookback, "lookback", 0, "divergence lookback periods (default 10)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")

	return cmd
}
