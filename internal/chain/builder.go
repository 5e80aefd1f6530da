// Package chain assembles raw option quotes into a priced straddle-view
// option chain: tickers normalized, expiries resolved, Greeks solved.
package chain

import (
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/contract"
	"github.com/dgnsrekt/byma-gex-api/internal/marketdata"
	"github.com/dgnsrekt/byma-gex-api/internal/pricing"
)

// minPriceableMark filters marks too small to solve against; the feed
// reports stale penny prints on dead series.
const minPriceableMark = 0.01

// PricedContract is one parsed option with its market data and, when the
// kernel converged, its volatility and Greeks. Greeks is nil for contracts
// whose price could not be solved; they still count for open interest.
type PricedContract struct {
	contract.Contract
	DaysToExpiry int
	MarketPrice  float64
	Volume       int64
	OpenInterest int64
	Greeks       *pricing.Result
}

// SideQuote is one side (call or put) of a chain row.
type SideQuote struct {
	Ticker       string   `json:"ticker"`
	Bid          *float64 `json:"bid,omitempty"`
	Ask          *float64 `json:"ask,omitempty"`
	Last         *float64 `json:"last,omitempty"`
	Volume       *int64   `json:"volume,omitempty"`
	OpenInterest *int64   `json:"open_interest,omitempty"`
	IV           *float64 `json:"iv,omitempty"`
	Delta        *float64 `json:"delta,omitempty"`
	Gamma        *float64 `json:"gamma,omitempty"`
	Theta        *float64 `json:"theta,omitempty"`
	Vega         *float64 `json:"vega,omitempty"`
}

// Row pairs the call and put side of one (strike, expiry) series. Sides are
// never mixed across expiry codes.
type Row struct {
	Strike       float64    `json:"strike"`
	ExpiryCode   string     `json:"expiry_code"`
	DaysToExpiry int        `json:"days_to_expiry"`
	Call         *SideQuote `json:"call,omitempty"`
	Put          *SideQuote `json:"put,omitempty"`
}

// Chain is the complete priced view for one underlying.
type Chain struct {
	Symbol    string           `json:"ticker"`
	SpotPrice float64          `json:"spot_price"`
	Timestamp time.Time        `json:"timestamp"`
	Rows      []Row            `json:"chain"`
	Contracts []PricedContract `json:"-"`
}

// SmilePoint is one implied-volatility observation for the smile view.
type SmilePoint struct {
	Strike float64       `json:"strike"`
	IV     float64       `json:"iv"`
	Side   contract.Side `json:"option_type"`
}

// Builder prices raw quotes into chains.
type Builder struct {
	kernel *pricing.Kernel
	expiry *contract.ExpiryResolver
	logger *zap.Logger
}

func NewBuilder(kernel *pricing.Kernel, expiry *contract.ExpiryResolver, logger *zap.Logger) *Builder {
	return &Builder{kernel: kernel, expiry: expiry, logger: logger}
}

// Build normalizes, prices and groups a snapshot's option quotes. Quotes
// with unparseable tickers are skipped; contracts the kernel cannot price
// are kept without Greeks. One bad quote never aborts the batch.
func (b *Builder) Build(snapshot *marketdata.Snapshot, now time.Time) *Chain {
	priced := make([]PricedContract, 0, len(snapshot.Options))

	for _, quote := range snapshot.Options {
		parsed, err := contract.Parse(quote.Ticker)
		if err != nil {
			b.logger.Debug("skipping unparseable ticker", zap.String("ticker", quote.Ticker))
			continue
		}

		pc := PricedContract{
			Contract:     *parsed,
			DaysToExpiry: b.expiry.DaysToExpiry(parsed.ExpiryCode, now),
			MarketPrice:  markPrice(quote),
			Volume:       int64Value(quote.Volume),
			OpenInterest: int64Value(quote.OpenInterest),
		}

		if pc.MarketPrice > minPriceableMark {
			result, err := b.kernel.Solve(pricing.Input{
				Spot:         snapshot.Spot,
				Strike:       parsed.Strike,
				DaysToExpiry: pc.DaysToExpiry,
				MarketPrice:  pc.MarketPrice,
				Side:         parsed.Side,
			})
			if err != nil {
				b.logUnpriceable(parsed.Ticker, err)
			} else {
				pc.Greeks = result
			}
		}

		priced = append(priced, pc)
	}

	return &Chain{
		Symbol:    snapshot.Symbol,
		SpotPrice: snapshot.Spot,
		Timestamp: now,
		Rows:      buildRows(snapshot.Options, priced),
		Contracts: priced,
	}
}

// logUnpriceable keeps validation noise at debug while surfacing numerical
// failures, which usually mean arbitrage-violating marks worth a look.
func (b *Builder) logUnpriceable(ticker string, err error) {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		b.logger.Debug("contract failed validation", zap.String("ticker", ticker), zap.Error(err))
		return
	}
	b.logger.Debug("contract unpriceable", zap.String("ticker", ticker), zap.Error(err))
}

// markPrice picks the price to solve against: last trade first, then the
// bid/ask mid, then whichever side is quoted.
func markPrice(q marketdata.OptionQuote) float64 {
	bid := floatValue(q.Bid)
	ask := floatValue(q.Ask)
	last := floatValue(q.Last)

	switch {
	case last > 0:
		return last
	case bid > 0 && ask > 0:
		return (bid + ask) / 2
	case bid > 0:
		return bid
	case ask > 0:
		return ask
	default:
		return 0
	}
}

type rowKey struct {
	strike float64
	expiry string
}

// buildRows groups contracts strictly by (strike, expiry code) so a row's
// call and put always belong to the same series.
func buildRows(quotes []marketdata.OptionQuote, priced []PricedContract) []Row {
	quoteByTicker := make(map[string]marketdata.OptionQuote, len(quotes))
	for _, q := range quotes {
		quoteByTicker[q.Ticker] = q
	}

	rows := make(map[rowKey]*Row)
	for i := range priced {
		pc := &priced[i]
		key := rowKey{strike: pc.Strike, expiry: pc.ExpiryCode}

		row, ok := rows[key]
		if !ok {
			row = &Row{
				Strike:       pc.Strike,
				ExpiryCode:   pc.ExpiryCode,
				DaysToExpiry: pc.DaysToExpiry,
			}
			rows[key] = row
		}

		side := buildSideQuote(pc, quoteByTicker[pc.Ticker])
		if pc.Side == contract.Call {
			row.Call = side
		} else {
			row.Put = side
		}
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strike != out[j].Strike {
			return out[i].Strike < out[j].Strike
		}
		return out[i].ExpiryCode < out[j].ExpiryCode
	})

	return out
}

func buildSideQuote(pc *PricedContract, quote marketdata.OptionQuote) *SideQuote {
	side := &SideQuote{
		Ticker:       pc.Ticker,
		Bid:          positiveOrNil(quote.Bid),
		Ask:          positiveOrNil(quote.Ask),
		Last:         positiveOrNil(quote.Last),
		Volume:       quote.Volume,
		OpenInterest: quote.OpenInterest,
	}

	if pc.Greeks != nil {
		side.IV = ptr(pc.Greeks.IV)
		side.Delta = ptr(pc.Greeks.Delta)
		side.Gamma = ptr(pc.Greeks.Gamma)
		side.Theta = ptr(pc.Greeks.Theta)
		side.Vega = ptr(pc.Greeks.Vega)
	}

	return side
}

// Smile extracts the per-strike IV points for both sides, sorted by strike.
func (c *Chain) Smile() []SmilePoint {
	var points []SmilePoint
	for _, pc := range c.Contracts {
		if pc.Greeks == nil || pc.Greeks.IV <= 0 {
			continue
		}
		points = append(points, SmilePoint{
			Strike: pc.Strike,
			IV:     pc.Greeks.IV,
			Side:   pc.Side,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Strike != points[j].Strike {
			return points[i].Strike < points[j].Strike
		}
		return points[i].Side < points[j].Side
	})

	return points
}

func ptr(v float64) *float64 { return &v }

func positiveOrNil(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func floatValue(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func int64Value(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
