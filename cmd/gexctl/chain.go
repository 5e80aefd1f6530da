package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func chainCmd() *cobra.Command {
	var (
		mock   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "chain TICKER",
		Short: "Print the priced option chain for an underlying",
		Long: `Print the priced option chain for an underlying.

Examples:
  # Live chain for Grupo Galicia
  gexctl chain GGAL

  # Synthetic chain, JSON output
  gexctl chain GGAL --mock --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := buildService(cfg, mock)

			view, err := svc.Chain(cmd.Context(), normalizeTicker(args[0]))
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(view)
			}

			fmt.Printf("%s  spot %.2f  (%d series)\n\n", view.Symbol, view.SpotPrice, len(view.Rows))
			fmt.Printf("%10s %4s %5s  %8s %8s %8s | %8s %8s %8s\n",
				"STRIKE", "EXP", "DTE", "C.LAST", "C.IV", "C.DELTA", "P.LAST", "P.IV", "P.DELTA")
			for _, row := range view.Rows {
				cLast, cIV, cDelta := "-", "-", "-"
				if row.Call != nil {
					cLast = fmtPtr(row.Call.Last)
					cIV = fmtPtr(row.Call.IV)
					cDelta = fmtPtr(row.Call.Delta)
				}
				pLast, pIV, pDelta := "-", "-", "-"
				if row.Put != nil {
					pLast = fmtPtr(row.Put.Last)
					pIV = fmtPtr(row.Put.IV)
					pDelta = fmtPtr(row.Put.Delta)
				}
				fmt.Printf("%10.2f %4s %5d  %8s %8s %8s | %8s %8s %8s\n",
					row.Strike, row.ExpiryCode, row.DaysToExpiry,
					cLast, cIV, cDelta, pLast, pIV, pDelta)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mock, "mock", false, "use synthetic market data")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")

	return cmd
}
