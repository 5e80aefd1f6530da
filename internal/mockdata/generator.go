// Package mockdata synthesizes option chains and intraday volume windows.
// The upstream feed exposes neither historical bars nor a sandbox, so the
// mock generator backs both local development and the order-flow engine.
package mockdata

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/dgnsrekt/byma-gex-api/internal/contract"
	"github.com/dgnsrekt/byma-gex-api/internal/flow"
	"github.com/dgnsrekt/byma-gex-api/internal/marketdata"
	"github.com/dgnsrekt/byma-gex-api/internal/pricing"
)

const (
	strikeCount    = 13
	strikeSpanPct  = 0.30 // ladder covers spot ±30%
	baseVol        = 0.45
	skewPerStep    = 0.015 // OTM puts trade richer
	minSpreadPct   = 0.03
	maxSpreadPct   = 0.02 // added on top of min
	peakOI         = 2500
	intradayPoints = 50
	barInterval    = 15 * time.Minute
)

// Generator produces deterministic synthetic market data: the same seed and
// symbol always yield the same chain, so tests and demos are reproducible.
type Generator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	rate float64
	now  func() time.Time
}

func NewGenerator(seed int64, rate float64) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		rate: rate,
		now:  time.Now,
	}
}

// spotFor derives a stable per-symbol spot from the symbol name, pinned to
// the peso price range the local board actually trades in.
func spotFor(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 1000 + float64(h.Sum32()%90)*100
}

// GetSnapshot synthesizes a full snapshot for the symbol. Option marks are
// theoretical values under a sloped volatility curve, so the solver
// recovers a plausible smile from them.
func (g *Generator) GetSnapshot(_ context.Context, symbol string) (*marketdata.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	spot := spotFor(symbol)
	root := marketdata.OptionRoot(symbol)
	now := g.now()
	code := monthCode(now)
	days := daysToSettlement(now)
	t := float64(days) / 365.0

	step := spot * 2 * strikeSpanPct / float64(strikeCount-1)
	firstStrike := spot * (1 - strikeSpanPct)

	options := make([]marketdata.OptionQuote, 0, strikeCount*2)
	for k := 0; k < strikeCount; k++ {
		strike := roundStrike(firstStrike + float64(k)*step)
		stepsFromATM := (strike - spot) / step

		options = append(options,
			g.quote(root, contract.Call, strike, spot, t, stepsFromATM, code),
			g.quote(root, contract.Put, strike, spot, t, stepsFromATM, code),
		)
	}

	return &marketdata.Snapshot{
		Symbol:    symbol,
		Spot:      spot,
		Options:   options,
		FetchedAt: now,
	}, nil
}

func (g *Generator) quote(root string, side contract.Side, strike, spot, t, stepsFromATM float64, code string) marketdata.OptionQuote {
	sigma := baseVol - skewPerStep*stepsFromATM
	if sigma < 0.10 {
		sigma = 0.10
	}

	theo := pricing.Price(side, spot, strike, t, g.rate, sigma)
	spread := theo * (minSpreadPct + g.rng.Float64()*maxSpreadPct)

	bid := round2(theo - spread/2)
	ask := round2(theo + spread/2)
	if ask <= bid {
		ask = bid + 0.01
	}
	last := round2(theo * (1 + (g.rng.Float64()-0.5)*0.02))

	oi := openInterestAt(stepsFromATM)
	volume := int64(float64(oi) * (0.05 + g.rng.Float64()*0.25))

	suffix := "C"
	if side == contract.Put {
		suffix = "V"
	}
	ticker := root + suffix + formatStrike(strike) + code

	q := marketdata.OptionQuote{
		Ticker:       ticker,
		OpenInterest: &oi,
		Volume:       &volume,
	}
	if bid > 0 {
		q.Bid = &bid
	}
	if ask > 0 {
		q.Ask = &ask
	}
	if last > 0 {
		q.Last = &last
	}
	return q
}

// openInterestAt concentrates open interest near the money, decaying with
// distance the way real boards thin out.
func openInterestAt(stepsFromATM float64) int64 {
	oi := int64(peakOI * math.Exp(-0.18*stepsFromATM*stepsFromATM))
	if oi < 25 {
		oi = 25
	}
	return oi
}

// IntradaySamples synthesizes a random-walk bar window ending now. Quotes
// straddle each close so trade classification exercises the spread rule.
func (g *Generator) IntradaySamples(symbol string, periods int) []flow.Sample {
	g.mu.Lock()
	defer g.mu.Unlock()

	if periods <= 0 {
		periods = intradayPoints
	}

	price := spotFor(symbol)
	start := g.now().Add(-time.Duration(periods) * barInterval)

	samples := make([]flow.Sample, periods)
	for k := range samples {
		price *= 1 + g.rng.NormFloat64()*0.004
		spread := price * 0.002
		bid := round2(price - spread/2)
		ask := round2(price + spread/2)
		last := round2(bid + g.rng.Float64()*(ask-bid))

		samples[k] = flow.Sample{
			Timestamp: start.Add(time.Duration(k) * barInterval),
			Close:     round2(price),
			Last:      last,
			Volume:    int64(5000 + g.rng.Intn(15000)),
			Bid:       bid,
			Ask:       ask,
		}
	}

	return samples
}

// monthCode returns the single-letter code for next month's settlement.
func monthCode(now time.Time) string {
	next := now.Month()%12 + 1
	return string(rune('A' + int(next) - 1))
}

// daysToSettlement approximates days to the 15th of next month.
func daysToSettlement(now time.Time) int {
	settlement := time.Date(now.Year(), now.Month()+1, 15, 17, 0, 0, 0, now.Location())
	days := int(math.Ceil(settlement.Sub(now).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// roundStrike snaps to whole pesos so tickers stay in the dotless format.
func roundStrike(strike float64) float64 {
	return math.Round(strike)
}

func formatStrike(strike float64) string {
	return strconv.Itoa(int(strike))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
