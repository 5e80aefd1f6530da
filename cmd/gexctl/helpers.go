package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dgnsrekt/byma-gex-api/internal/analytics"
	"github.com/dgnsrekt/byma-gex-api/internal/chain"
	"github.com/dgnsrekt/byma-gex-api/internal/config"
	"github.com/dgnsrekt/byma-gex-api/internal/contract"
	"github.com/dgnsrekt/byma-gex-api/internal/marketdata"
	"github.com/dgnsrekt/byma-gex-api/internal/mockdata"
	"github.com/dgnsrekt/byma-gex-api/internal/pricing"
)

// buildService assembles the full analytics stack. With mock set the market
// source is the synthetic generator instead of the live feed.
func buildService(cfg *config.Config, mock bool) *analytics.Service {
	kernel := pricing.NewKernel(cfg.Pricing.RiskFreeRate, logger)
	builder := chain.NewBuilder(kernel, contract.NewExpiryResolver(), logger)
	generator := mockdata.NewGenerator(cfg.Mock.Seed, cfg.Pricing.RiskFreeRate)

	var market analytics.MarketSource
	if mock {
		market = generator
	} else {
		client := marketdata.NewHTTPClient(
			cfg.API.BaseURL,
			cfg.API.StocksPath,
			cfg.API.OptionsPath,
			cfg.API.RatePerSecond,
			cfg.API.Timeout(),
			cfg.API.RetryDelay(),
			cfg.API.RetryCount,
			logger,
		)
		market = marketdata.NewService(client, cfg.API.CacheTTL(), logger)
	}

	return analytics.NewService(market, generator, builder, logger)
}

// printJSON writes an indented document to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fmtPtr renders an optional float for table output.
func fmtPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func normalizeTicker(arg string) string {
	return strings.ToUpper(strings.TrimSpace(arg))
}
