package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func gexCmd() *cobra.Command {
	var (
		mock   bool
		asJSON bool
		levels bool
	)

	cmd := &cobra.Command{
		Use:   "gex TICKER",
		Short: "Print the dealer gamma exposure profile for an underlying",
		Long: `Print the dealer gamma exposure profile for an underlying.

Examples:
  # Full per-strike profile
  gexctl gex GGAL

  # Condensed key levels only
  gexctl gex GGAL --levels`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := buildService(cfg, mock)
			ticker := normalizeTicker(args[0])

			if levels {
				view, err := svc.Levels(cmd.Context(), ticker)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(view)
				}
				fmt.Printf("%s  spot %.2f  regime %s\n", view.Symbol, view.SpotPrice, view.Regime)
				fmt.Printf("flip point %s  max pain %s  net GEX %.2fM\n\n",
					fmtPtr(view.FlipPoint), fmtPtr(view.MaxPain), view.NetGex)
				fmt.Printf("%10s %12s %10s %10s\n", "STRIKE", "TOTAL_GEX", "CALL_OI", "PUT_OI")
				for _, lvl := range view.TopLevels {
					fmt.Printf("%10.2f %12.2f %10d %10d\n", lvl.Strike, lvl.TotalGex, lvl.CallOI, lvl.PutOI)
				}
				return nil
			}

			view, err := svc.Gex(cmd.Context(), ticker)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(view)
			}

			fmt.Printf("%s  spot %.2f  regime %s\n", view.Symbol, view.SpotPrice, view.Regime)
			fmt.Printf("flip point %s  max pain %s\n", fmtPtr(view.FlipPoint), fmtPtr(view.MaxPain))
			fmt.Printf("net GEX %.2fM  call %.2fM  put %.2fM  VEX %.2fM  CEX %.2fK\n\n",
				view.NetGex, view.TotalCallGex, view.TotalPutGex, view.TotalVex, view.TotalCex)
			fmt.Printf("%10s %12s %12s %12s %9s\n", "STRIKE", "CALL_GEX", "PUT_GEX", "TOTAL_GEX", "MONEY")
			for _, se := range view.Strikes {
				fmt.Printf("%10.2f %12.2f %12.2f %12.2f %9s\n",
					se.Strike, se.CallGex, se.PutGex, se.TotalGex, se.Moneyness)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mock, "mock", false, "use synthetic market data")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	cmd.Flags().BoolVar(&levels, "levels", false, "print key levels only")

	return cmd
}
