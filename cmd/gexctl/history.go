package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/byma-gex-api/internal/history"
)

func historyCmd() *cobra.Command {
	var (
		dataDir string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "history [DATE TICKER]",
		Short: "Browse recorded gamma exposure snapshots",
		Long: `Browse recorded gamma exposure snapshots.

Without arguments, lists the available archive dates. With a date and a
ticker, replays that day's captured snapshots in order.

Examples:
  # List recorded days
  gexctl history

  # Replay one day for one underlying
  gexctl history 2026-08-25 GGAL`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or DATE TICKER, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := history.NewReader(dataDir, logger)

			if len(args) == 0 {
				dates, err := reader.Dates()
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(dates)
				}
				for _, date := range dates {
					fmt.Println(date)
				}
				return nil
			}

			records, err := reader.Read(args[0], normalizeTicker(args[1]))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(records)
			}

			fmt.Printf("%-25s %10s %12s %10s %10s %10s\n",
				"CAPTURED_AT", "SPOT", "NET_GEX", "FLIP", "MAX_PAIN", "REGIME")
			for _, rec := range records {
				if rec.Gex == nil || rec.Gex.Profile == nil {
					continue
				}
				fmt.Printf("%-25s %10.2f %12.2f %10s %10s %10s\n",
					rec.CapturedAt.Format("2006-01-02T15:04:05Z07:00"),
					rec.Gex.SpotPrice, rec.Gex.NetGex,
					fmtPtr(rec.Gex.FlipPoint), fmtPtr(rec.Gex.MaxPain), rec.Gex.Regime)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "archive directory written by the recorder")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")

	return cmd
}
