// Package marketdata fetches live BYMA stock and option quotes, caching
// snapshots for the provider's refresh interval to respect its rate limit.
package marketdata

import "strings"

// StockQuote is one row of the live stocks feed. The provider uses "c" for
// the current price.
type StockQuote struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"c"`
}

// OptionQuote is one raw option row. Optional numeric fields stay as
// pointers so absent is distinguishable from zero.
type OptionQuote struct {
	Ticker       string   `json:"symbol"`
	Bid          *float64 `json:"px_bid"`
	Ask          *float64 `json:"px_ask"`
	Last         *float64 `json:"c"`
	Volume       *int64   `json:"v"`
	OpenInterest *int64   `json:"oi"`
}

// optionRoots maps underlying symbols to their option ticker prefixes.
// Anything missing falls back to the first three letters.
var optionRoots = map[string]string{
	"GGAL":  "GFG",
	"YPF":   "YPF",
	"PAMP":  "PAM",
	"ALUA":  "ALU",
	"TXAR":  "TXR",
	"BBAR":  "BBR",
	"EDN":   "EDN",
	"LOMA":  "LOM",
	"MIRG":  "MIR",
	"SUPV":  "SUP",
	"TECO2": "TEC",
	"TGSU2": "TGS",
	"TRAN":  "TRA",
	"VALO":  "VAL",
}

// OptionRoot resolves the option ticker prefix for an underlying symbol.
func OptionRoot(symbol string) string {
	symbol = strings.ToUpper(symbol)
	if root, ok := optionRoots[symbol]; ok {
		return root
	}
	if len(symbol) > 3 {
		return symbol[:3]
	}
	return symbol
}
