package chain

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/contract"
	"github.com/dgnsrekt/byma-gex-api/internal/marketdata"
	"github.com/dgnsrekt/byma-gex-api/internal/pricing"
)

func newTestBuilder() *Builder {
	kernel := pricing.NewKernel(0.35, zap.NewNop())
	return NewBuilder(kernel, contract.NewExpiryResolver(), zap.NewNop())
}

func f(v float64) *float64 { return &v }
func i(v int64) *int64     { return &v }

func testSnapshot() *marketdata.Snapshot {
	return &marketdata.Snapshot{
		Symbol: "GGAL",
		Spot:   100,
		Options: []marketdata.OptionQuote{
			{Ticker: "GFGC100D", Last: f(5.0), Volume: i(150), OpenInterest: i(1000)},
			{Ticker: "GFGV100D", Bid: f(4.0), Ask: f(6.0), OpenInterest: i(800)},
			{Ticker: "GFGC120D", OpenInterest: i(500)},
			{Ticker: "123BAD"},
		},
	}
}

func TestBuildGroupsByStrikeAndExpiry(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	chain := newTestBuilder().Build(testSnapshot(), now)

	if chain.Symbol != "GGAL" || chain.SpotPrice != 100 {
		t.Fatalf("chain header = %q %v", chain.Symbol, chain.SpotPrice)
	}
	if len(chain.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(chain.Rows))
	}

	row := chain.Rows[0]
	if row.Strike != 100 || row.ExpiryCode != "D" {
		t.Fatalf("first row = %v %q", row.Strike, row.ExpiryCode)
	}
	if row.Call == nil || row.Put == nil {
		t.Fatal("strike 100 should have both sides")
	}
	if row.Call.Ticker != "GFGC100D" || row.Put.Ticker != "GFGV100D" {
		t.Fatalf("side tickers = %q %q", row.Call.Ticker, row.Put.Ticker)
	}

	row = chain.Rows[1]
	if row.Strike != 120 {
		t.Fatalf("second row strike = %v", row.Strike)
	}
	if row.Call == nil || row.Put != nil {
		t.Fatal("strike 120 should be call-only")
	}
}

func TestBuildSkipsUnparseableTickers(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	chain := newTestBuilder().Build(testSnapshot(), now)

	if len(chain.Contracts) != 3 {
		t.Fatalf("expected 3 contracts, got %d", len(chain.Contracts))
	}
	for _, pc := range chain.Contracts {
		if pc.Ticker == "123BAD" {
			t.Fatal("unparseable ticker was not skipped")
		}
	}
}

func TestBuildPricesQuotedContracts(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	chain := newTestBuilder().Build(testSnapshot(), now)

	byTicker := make(map[string]PricedContract)
	for _, pc := range chain.Contracts {
		byTicker[pc.Ticker] = pc
	}

	call := byTicker["GFGC100D"]
	if call.MarketPrice != 5.0 {
		t.Fatalf("call mark = %v, want last 5.0", call.MarketPrice)
	}
	if call.Greeks == nil {
		t.Fatal("quoted call should have Greeks")
	}
	if call.Greeks.IV <= 0 {
		t.Fatalf("call IV = %v, want > 0", call.Greeks.IV)
	}
	if call.Greeks.Delta <= 0 || call.Greeks.Delta >= 1 {
		t.Fatalf("call delta = %v, want in (0, 1)", call.Greeks.Delta)
	}

	put := byTicker["GFGV100D"]
	if put.MarketPrice != 5.0 {
		t.Fatalf("put mark = %v, want mid 5.0", put.MarketPrice)
	}
	if put.Greeks == nil {
		t.Fatal("quoted put should have Greeks")
	}

	dead := byTicker["GFGC120D"]
	if dead.MarketPrice != 0 || dead.Greeks != nil {
		t.Fatalf("unquoted contract should stay unpriced, got mark %v greeks %v", dead.MarketPrice, dead.Greeks)
	}
	if dead.OpenInterest != 500 {
		t.Fatalf("unpriced contract OI = %d, want 500", dead.OpenInterest)
	}
}

func TestBuildRowCarriesGreeksAndQuote(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	chain := newTestBuilder().Build(testSnapshot(), now)

	call := chain.Rows[0].Call
	if call.Last == nil || *call.Last != 5.0 {
		t.Fatalf("call last = %v", call.Last)
	}
	if call.OpenInterest == nil || *call.OpenInterest != 1000 {
		t.Fatalf("call OI = %v", call.OpenInterest)
	}
	if call.IV == nil || call.Delta == nil || call.Gamma == nil {
		t.Fatal("priced side should expose Greeks")
	}

	dead := chain.Rows[1].Call
	if dead.IV != nil {
		t.Fatal("unpriced side should have nil IV")
	}
}

func TestMarkPricePreference(t *testing.T) {
	tests := []struct {
		name  string
		quote marketdata.OptionQuote
		want  float64
	}{
		{"last wins over quotes", marketdata.OptionQuote{Bid: f(4), Ask: f(6), Last: f(5.5)}, 5.5},
		{"mid when no last", marketdata.OptionQuote{Bid: f(4), Ask: f(6)}, 5},
		{"bid only", marketdata.OptionQuote{Bid: f(4)}, 4},
		{"ask only", marketdata.OptionQuote{Ask: f(6)}, 6},
		{"zero last ignored", marketdata.OptionQuote{Last: f(0), Bid: f(4), Ask: f(6)}, 5},
		{"nothing quoted", marketdata.OptionQuote{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := markPrice(tt.quote); got != tt.want {
				t.Fatalf("markPrice = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSmileSortedByStrike(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	chain := newTestBuilder().Build(testSnapshot(), now)

	points := chain.Smile()
	if len(points) != 2 {
		t.Fatalf("expected 2 smile points, got %d", len(points))
	}
	for _, p := range points {
		if p.Strike != 100 || p.IV <= 0 {
			t.Fatalf("smile point = %+v", p)
		}
	}
	if points[0].Side != contract.Call || points[1].Side != contract.Put {
		t.Fatalf("smile side order = %v %v", points[0].Side, points[1].Side)
	}
}
