package flow

import (
	"errors"
	"testing"
	"time"
)

func mkSamples(closes []float64, volumes []int64) []Sample {
	base := time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC)
	samples := make([]Sample, len(closes))
	for i := range closes {
		samples[i] = Sample{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Close:     closes[i],
			Volume:    volumes[i],
		}
	}
	return samples
}

func TestComputeCVDTickRule(t *testing.T) {
	// First sample seeds as buy; 105 > 100 buy; 103 < 105 sell.
	points := ComputeCVD(mkSamples(
		[]float64{100, 105, 103},
		[]int64{1000, 2000, 1500},
	))

	if len(points) != 3 {
		t.Fatalf("points = %d, want 3", len(points))
	}

	wantCVD := []float64{1000, 3000, 1500}
	wantBuy := []int64{1000, 2000, 0}
	wantSell := []int64{0, 0, 1500}

	for i, p := range points {
		if p.CVD != wantCVD[i] {
			t.Errorf("cvd[%d] = %v, want %v", i, p.CVD, wantCVD[i])
		}
		if p.BuyVolume != wantBuy[i] {
			t.Errorf("buy_volume[%d] = %v, want %v", i, p.BuyVolume, wantBuy[i])
		}
		if p.SellVolume != wantSell[i] {
			t.Errorf("sell_volume[%d] = %v, want %v", i, p.SellVolume, wantSell[i])
		}
		if p.BuyVolume+p.SellVolume != p.Volume {
			t.Errorf("point %d: buy+sell != volume", i)
		}
	}
}

func TestComputeCVDUnchangedCloseReusesDirection(t *testing.T) {
	points := ComputeCVD(mkSamples(
		[]float64{100, 98, 98},
		[]int64{500, 500, 500},
	))

	// Second sample sells; the flat third sample continues selling.
	if points[2].SellVolume != 500 {
		t.Errorf("flat close direction = buy, want sell continuation")
	}
}

func TestComputeCVDSpreadLocation(t *testing.T) {
	base := time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Timestamp: base, Close: 100, Last: 100.9, Bid: 100, Ask: 101, Volume: 100},                          // location 0.9 -> buy
		{Timestamp: base.Add(time.Minute), Close: 100, Last: 100.1, Bid: 100, Ask: 101, Volume: 200},         // location 0.1 -> sell
		{Timestamp: base.Add(2 * time.Minute), Close: 100, Last: 100.5, Bid: 100, Ask: 101, Volume: 300},     // neutral zone -> previous (sell)
		{Timestamp: base.Add(3 * time.Minute), Close: 120, Last: 0, Bid: 0, Ask: 0, Volume: 400},             // no quote -> tick rule buy
		{Timestamp: base.Add(4 * time.Minute), Close: 120, Last: 130, Bid: 119, Ask: 121, Volume: 500},       // clamped to 1 -> buy
	}

	points := ComputeCVD(samples)

	wantNet := []int64{100, -200, -300, 400, 500}
	for i, p := range points {
		if p.NetFlow != wantNet[i] {
			t.Errorf("net_flow[%d] = %v, want %v", i, p.NetFlow, wantNet[i])
		}
	}
}

func TestComputeCVDRunningInvariant(t *testing.T) {
	points := ComputeCVD(mkSamples(
		[]float64{10, 11, 10, 12, 9, 9, 13},
		[]int64{5, 10, 4, 7, 3, 2, 8},
	))

	run := 0.0
	for i, p := range points {
		run += float64(p.NetFlow)
		if p.CVD != run {
			t.Errorf("cvd[%d] = %v, want running %v", i, p.CVD, run)
		}
	}
}

func TestDetectDivergence(t *testing.T) {
	// Price drifting down while CVD climbs: bullish divergence.
	bullish := make([]Point, 10)
	for i := range bullish {
		bullish[i] = Point{Price: 100 - float64(i), CVD: float64(i * 100)}
	}
	d, err := DetectDivergence(bullish, 10)
	if err != nil {
		t.Fatalf("DetectDivergence: %v", err)
	}
	if d.Kind != DivergenceBullish {
		t.Errorf("kind = %v, want bullish", d.Kind)
	}
	if d.PriceTrend != TrendDown || d.CVDTrend != TrendUp {
		t.Errorf("trends = %v/%v, want down/up", d.PriceTrend, d.CVDTrend)
	}
	if d.CVDChange != 900 {
		t.Errorf("cvd change = %v, want 900", d.CVDChange)
	}
	if d.PriceChangePct != -9 {
		t.Errorf("price change pct = %v, want -9", d.PriceChangePct)
	}

	// Reverse: bearish.
	bearish := make([]Point, 10)
	for i := range bearish {
		bearish[i] = Point{Price: 100 + float64(i), CVD: -float64(i * 100)}
	}
	d, err = DetectDivergence(bearish, 10)
	if err != nil {
		t.Fatalf("DetectDivergence: %v", err)
	}
	if d.Kind != DivergenceBearish {
		t.Errorf("kind = %v, want bearish", d.Kind)
	}

	// Aligned trends: no divergence.
	aligned := make([]Point, 10)
	for i := range aligned {
		aligned[i] = Point{Price: 100 + float64(i), CVD: float64(i * 100)}
	}
	d, err = DetectDivergence(aligned, 10)
	if err != nil {
		t.Fatalf("DetectDivergence: %v", err)
	}
	if d.Kind != DivergenceNone {
		t.Errorf("kind = %v, want none", d.Kind)
	}
}

func TestDetectDivergenceInsufficientData(t *testing.T) {
	points := ComputeCVD(mkSamples([]float64{100, 101}, []int64{10, 10}))
	if _, err := DetectDivergence(points, 10); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestSummarize(t *testing.T) {
	points := ComputeCVD(mkSamples(
		[]float64{100, 101, 102, 103},
		[]int64{100, 200, 300, 400},
	))

	s, err := Summarize(points, 4)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.AverageVolume != 250 {
		t.Errorf("average volume = %v, want 250", s.AverageVolume)
	}
	if s.CurrentVolume != 400 {
		t.Errorf("current volume = %v, want 400", s.CurrentVolume)
	}
	if s.RelativeVolume != 1.6 {
		t.Errorf("relative volume = %v, want 1.6", s.RelativeVolume)
	}
	if s.NetCVD != 1000 {
		t.Errorf("net cvd = %v, want 1000", s.NetCVD)
	}

	if _, err := Summarize(nil, 4); err == nil {
		t.Error("Summarize(nil) expected error")
	}
}
