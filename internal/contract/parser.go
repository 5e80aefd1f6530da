// Package contract turns raw BYMA option tickers into structured facts:
// root symbol, side, strike and expiry month code.
package contract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var ErrUnparseable = errors.New("ticker does not match any known option format")

// Side is the option side encoded in the ticker.
type Side string

const (
	Call Side = "call"
	Put  Side = "put"
)

// Contract is the result of parsing an option ticker.
type Contract struct {
	Root       string
	Side       Side
	Strike     float64
	ExpiryCode string
	Ticker     string
}

// decimalDropThreshold marks strikes where the upstream feed is known to
// drop the decimal separator (97539 means 9753.9). The threshold is tied to
// BYMA's quirks; do not reuse it for other providers.
const decimalDropThreshold = 20000.0

// Ticker patterns, tried in priority order. BYMA uses C for calls and V
// (venta) for puts.
var tickerPatterns = []*regexp.Regexp{
	// Classic form: GFGC3000D, YPFV2500AB
	regexp.MustCompile(`^([A-Z]{2,4})([CV])(\d+)([A-Z]{1,2})$`),
	// Expiry separated by a dot: GFGC3000.AB
	regexp.MustCompile(`^([A-Z]{2,4})([CV])(\d+)\.([A-Z]{2})$`),
	// Explicit decimal strike: GFGC9753.9AB
	regexp.MustCompile(`^([A-Z]{2,4})([CV])(\d+\.\d+)([A-Z]{2})$`),
}

// Parse normalizes a raw option ticker. It never panics; tickers that match
// no pattern return ErrUnparseable and the caller is expected to skip them.
func Parse(ticker string) (*Contract, error) {
	upper := strings.ToUpper(strings.TrimSpace(ticker))

	for _, pattern := range tickerPatterns {
		m := pattern.FindStringSubmatch(upper)
		if m == nil {
			continue
		}

		root, sideCode, strikeStr, expiryCode := m[1], m[2], m[3], m[4]

		var side Side
		switch sideCode {
		case "C":
			side = Call
		case "V":
			side = Put
		default:
			return nil, ErrUnparseable
		}

		strike, err := strconv.ParseFloat(strikeStr, 64)
		if err != nil || strike <= 0 {
			return nil, ErrUnparseable
		}

		strike = normalizeStrike(strike, strikeStr)

		return &Contract{
			Root:       root,
			Side:       side,
			Strike:     strike,
			ExpiryCode: expiryCode,
			Ticker:     upper,
		}, nil
	}

	return nil, ErrUnparseable
}

// normalizeStrike corrects strikes whose decimal separator was dropped by
// the feed. A strike above the threshold with no literal dot in the original
// substring is assumed to be scaled by 10 (97539 -> 9753.9).
func normalizeStrike(strike float64, raw string) float64 {
	if strike > decimalDropThreshold && !strings.Contains(raw, ".") {
		return strike / 10.0
	}
	return strike
}
