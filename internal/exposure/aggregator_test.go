package exposure

import (
	"math"
	"testing"

	"github.com/dgnsrekt/byma-gex-api/internal/contract"
)

func TestSingleGexDirection(t *testing.T) {
	callGex := SingleGex(0.001, 1000, 8000, contract.Call)
	putGex := SingleGex(0.001, 1000, 8000, contract.Put)

	if callGex <= 0 {
		t.Errorf("call gex = %v, want > 0", callGex)
	}
	if putGex >= 0 {
		t.Errorf("put gex = %v, want < 0", putGex)
	}
	if callGex != -putGex {
		t.Errorf("call and put gex not symmetric: %v vs %v", callGex, putGex)
	}

	// gamma * OI * 100 * spot^2 * 0.01 / 1e6
	want := 0.001 * 1000 * 100 * 8000 * 8000 * 0.01 / 1e6
	if math.Abs(callGex-want) > 1e-9 {
		t.Errorf("call gex = %v, want %v", callGex, want)
	}
}

func TestSingleExposuresZeroInputs(t *testing.T) {
	if got := SingleGex(0, 1000, 8000, contract.Call); got != 0 {
		t.Errorf("zero gamma gex = %v, want 0", got)
	}
	if got := SingleGex(0.001, 0, 8000, contract.Call); got != 0 {
		t.Errorf("zero OI gex = %v, want 0", got)
	}
	if got := SingleVex(0, 1000, 8000, contract.Put); got != 0 {
		t.Errorf("zero vanna vex = %v, want 0", got)
	}
	if got := SingleCex(0, 1000, 8000, contract.Put); got != 0 {
		t.Errorf("zero charm cex = %v, want 0", got)
	}
}

func TestBuildProfileTotals(t *testing.T) {
	contracts := []ContractExposure{
		{Strike: 7500, Side: contract.Call, Gamma: 0.002, Vanna: 0.01, Charm: -0.005, OpenInterest: 500},
		{Strike: 7500, Side: contract.Put, Gamma: 0.003, Vanna: 0.02, Charm: -0.004, OpenInterest: 800},
		{Strike: 8000, Side: contract.Call, Gamma: 0.004, Vanna: 0.015, Charm: -0.006, OpenInterest: 1200},
		{Strike: 8500, Side: contract.Put, Gamma: 0.001, Vanna: 0.005, Charm: -0.002, OpenInterest: 300},
	}

	p := BuildProfile(contracts, 8000)

	if len(p.Strikes) != 3 {
		t.Fatalf("strikes = %d, want 3", len(p.Strikes))
	}

	// Strikes sorted ascending.
	for i := 1; i < len(p.Strikes); i++ {
		if p.Strikes[i].Strike <= p.Strikes[i-1].Strike {
			t.Errorf("strikes not ascending at %d", i)
		}
	}

	// total_gex = call_gex + put_gex at every strike; net is the sum.
	var net float64
	for _, s := range p.Strikes {
		if s.TotalGex != s.CallGex+s.PutGex {
			t.Errorf("strike %v total_gex %v != call %v + put %v", s.Strike, s.TotalGex, s.CallGex, s.PutGex)
		}
		net += s.TotalGex
	}
	if math.Abs(p.NetGex-net) > 1e-9 {
		t.Errorf("net gex %v != sum of strikes %v", p.NetGex, net)
	}
	if math.Abs(p.NetGex-(p.TotalCallGex+p.TotalPutGex)) > 1e-9 {
		t.Errorf("net gex %v != call %v + put %v", p.NetGex, p.TotalCallGex, p.TotalPutGex)
	}
}

func TestFlipPointInterpolation(t *testing.T) {
	// Cumulative GEX walks [-2, +1]: the crossing sits 2/3 of the way
	// between strikes 100 and 200.
	strikes := []StrikeExposure{
		{Strike: 100, TotalGex: -2},
		{Strike: 200, TotalGex: 3},
	}

	flip := findFlipPoint(strikes, 150)
	if flip == nil {
		t.Fatal("flip point not found")
	}
	want := 100 + (2.0/3.0)*100
	if math.Abs(*flip-want) > 0.01 {
		t.Errorf("flip point = %v, want %v", *flip, want)
	}
}

func TestFlipPointClosestToSpot(t *testing.T) {
	// Two crossings; the one near spot wins.
	strikes := []StrikeExposure{
		{Strike: 100, TotalGex: -1},
		{Strike: 110, TotalGex: 2},  // crossing near 105
		{Strike: 500, TotalGex: -3}, // crossing far above
		{Strike: 510, TotalGex: 4},
	}

	flip := findFlipPoint(strikes, 108)
	if flip == nil {
		t.Fatal("flip point not found")
	}
	if *flip > 120 {
		t.Errorf("flip point = %v, want the crossing near spot", *flip)
	}
}

func TestFlipPointFallbackBalance(t *testing.T) {
	// No sign change: pick the strike with minimum |cumulative|.
	strikes := []StrikeExposure{
		{Strike: 100, TotalGex: 5},
		{Strike: 200, TotalGex: 1},
		{Strike: 300, TotalGex: 2},
	}

	flip := findFlipPoint(strikes, 200)
	if flip == nil {
		t.Fatal("flip point not found")
	}
	if *flip != 100 {
		t.Errorf("balance point = %v, want 100", *flip)
	}
}

func TestMaxPain(t *testing.T) {
	contracts := []ContractExposure{
		{Strike: 100, Side: contract.Call, Gamma: 0.01, OpenInterest: 300},
		{Strike: 100, Side: contract.Put, Gamma: 0.01, OpenInterest: 200},
		{Strike: 200, Side: contract.Call, Gamma: 0.01, OpenInterest: 700},
		{Strike: 200, Side: contract.Put, Gamma: 0.01, OpenInterest: 500},
		{Strike: 300, Side: contract.Call, Gamma: 0.01, OpenInterest: 150},
		{Strike: 300, Side: contract.Put, Gamma: 0.01, OpenInterest: 150},
	}

	p := BuildProfile(contracts, 200)
	if p.MaxPain == nil {
		t.Fatal("max pain not found")
	}
	if *p.MaxPain != 200 {
		t.Errorf("max pain = %v, want 200 (OI 1200)", *p.MaxPain)
	}
}

func TestMoneyness(t *testing.T) {
	tests := []struct {
		strike float64
		want   string
	}{
		{7000, "ITM"},
		{7700, "ATM"},
		{8000, "ATM"},
		{8300, "ATM"},
		{9000, "OTM"},
	}

	for _, tt := range tests {
		if got := classifyMoneyness(tt.strike, 8000); got != tt.want {
			t.Errorf("classifyMoneyness(%v, 8000) = %q, want %q", tt.strike, got, tt.want)
		}
	}
}

func TestRegime(t *testing.T) {
	// Cumulative GEX flips between 7900 and 8100; spot above the flip means
	// dealers are long gamma.
	contracts := []ContractExposure{
		{Strike: 7900, Side: contract.Put, Gamma: 0.004, OpenInterest: 1000},
		{Strike: 8100, Side: contract.Call, Gamma: 0.008, OpenInterest: 1000},
	}

	p := BuildProfile(contracts, 8100)
	if p.FlipPoint == nil {
		t.Fatal("flip point not found")
	}
	if p.Regime != RegimePositive {
		t.Errorf("regime = %v, want POSITIVE (spot %v above flip %v)", p.Regime, p.SpotPrice, *p.FlipPoint)
	}

	p = BuildProfile(contracts, 7800)
	if p.Regime != RegimeNegative {
		t.Errorf("regime = %v, want NEGATIVE", p.Regime)
	}

	if p := BuildProfile(nil, 8000); p.Regime != RegimeNeutral {
		t.Errorf("empty profile regime = %v, want NEUTRAL", p.Regime)
	}
}

func TestLocalGex(t *testing.T) {
	contracts := []ContractExposure{
		{Strike: 6000, Side: contract.Call, Gamma: 0.001, OpenInterest: 100}, // outside -5%
		{Strike: 7800, Side: contract.Call, Gamma: 0.001, OpenInterest: 100}, // inside
		{Strike: 8200, Side: contract.Call, Gamma: 0.001, OpenInterest: 100}, // inside
		{Strike: 9000, Side: contract.Call, Gamma: 0.001, OpenInterest: 100}, // outside +5%
	}

	p := BuildProfile(contracts, 8000)

	want := SingleGex(0.001, 100, 8000, contract.Call) * 2
	if math.Abs(p.LocalGex-want) > 1e-9 {
		t.Errorf("local gex = %v, want %v", p.LocalGex, want)
	}
}
