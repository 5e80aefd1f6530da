// Package flow classifies trade volume into buyer- and seller-initiated
// flow and computes cumulative volume delta (CVD) with price/CVD divergence
// detection.
package flow

import (
	"errors"
	"math"
	"time"
)

var ErrInsufficientData = errors.New("not enough samples for the requested lookback")

// DefaultLookback is the divergence detection window.
const DefaultLookback = 10

// Spread-location thresholds for the Lee-Ready style rule. Prints in the
// upper part of the spread lift the ask, prints in the lower part hit the
// bid; the band in between is treated as noise-neutral continuation.
const (
	buyLocation  = 0.6
	sellLocation = 0.4
)

// Sample is one time-ordered price/volume observation, optionally carrying
// the prevailing bid/ask at print time.
type Sample struct {
	Timestamp time.Time
	Close     float64
	Last      float64 // trade price; falls back to Close when zero
	Volume    int64
	Bid       float64
	Ask       float64
}

// Point is one step of the computed CVD series.
type Point struct {
	Timestamp  time.Time `json:"timestamp"`
	Price      float64   `json:"price"`
	Volume     int64     `json:"volume"`
	BuyVolume  int64     `json:"buy_volume"`
	SellVolume int64     `json:"sell_volume"`
	NetFlow    int64     `json:"net_flow"`
	CVD        float64   `json:"cvd"`
}

// Trend is the direction of price or CVD over the lookback window.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// DivergenceKind is the verdict of divergence detection.
type DivergenceKind string

const (
	DivergenceBullish DivergenceKind = "bullish"
	DivergenceBearish DivergenceKind = "bearish"
	DivergenceNone    DivergenceKind = "none"
)

// Divergence reports the price/CVD trend comparison over a trailing window.
// Strength figures are populated regardless of the verdict.
type Divergence struct {
	Kind            DivergenceKind `json:"divergence"`
	PriceTrend      Trend          `json:"price_trend"`
	CVDTrend        Trend          `json:"cvd_trend"`
	PriceChangePct  float64        `json:"price_change_pct"`
	CVDChange       float64        `json:"cvd_change"`
	LookbackPeriods int            `json:"lookback_periods"`
}

// ComputeCVD classifies each sample and accumulates signed volume. The
// spread-location rule applies when a usable bid/ask pair is present; the
// tick rule is the fallback. The first sample seeds the previous direction
// as buy and the previous close as its own close, so a lone sample always
// classifies as buyer-initiated.
func ComputeCVD(samples []Sample) []Point {
	if len(samples) == 0 {
		return nil
	}

	points := make([]Point, 0, len(samples))
	cvd := 0.0
	prevClose := samples[0].Close
	prevDirection := 1

	for _, s := range samples {
		direction := classify(s, prevClose, prevDirection)

		var buyVol, sellVol int64
		if direction == 1 {
			buyVol = s.Volume
		} else {
			sellVol = s.Volume
		}

		netFlow := buyVol - sellVol
		cvd += float64(netFlow)

		points = append(points, Point{
			Timestamp:  s.Timestamp,
			Price:      s.Close,
			Volume:     s.Volume,
			BuyVolume:  buyVol,
			SellVolume: sellVol,
			NetFlow:    netFlow,
			CVD:        cvd,
		})

		prevClose = s.Close
		prevDirection = direction
	}

	return points
}

// classify decides buy (+1) or sell (-1) for one sample.
func classify(s Sample, prevClose float64, prevDirection int) int {
	if s.Ask > s.Bid && s.Bid > 0 {
		last := s.Last
		if last == 0 {
			last = s.Close
		}

		location := (last - s.Bid) / (s.Ask - s.Bid)
		if location < 0 {
			location = 0
		} else if location > 1 {
			location = 1
		}

		switch {
		case location >= buyLocation:
			return 1
		case location <= sellLocation:
			return -1
		default:
			return prevDirection
		}
	}

	// Tick rule fallback.
	switch {
	case s.Close > prevClose:
		return 1
	case s.Close < prevClose:
		return -1
	default:
		return prevDirection
	}
}

// DetectDivergence compares price and CVD trends over the trailing lookback
// window. Bullish: price down while CVD rises. Bearish: price up while CVD
// falls. Windows shorter than the lookback report ErrInsufficientData.
func DetectDivergence(points []Point, lookback int) (*Divergence, error) {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if len(points) < lookback {
		return nil, ErrInsufficientData
	}

	window := points[len(points)-lookback:]
	first, last := window[0], window[len(window)-1]

	priceTrend := TrendDown
	if last.Price > first.Price {
		priceTrend = TrendUp
	}
	cvdTrend := TrendDown
	if last.CVD > first.CVD {
		cvdTrend = TrendUp
	}

	kind := DivergenceNone
	if priceTrend == TrendDown && cvdTrend == TrendUp {
		kind = DivergenceBullish
	} else if priceTrend == TrendUp && cvdTrend == TrendDown {
		kind = DivergenceBearish
	}

	var priceChangePct float64
	if first.Price != 0 {
		priceChangePct = (last.Price - first.Price) / first.Price * 100
	}

	return &Divergence{
		Kind:            kind,
		PriceTrend:      priceTrend,
		CVDTrend:        cvdTrend,
		PriceChangePct:  round2(priceChangePct),
		CVDChange:       last.CVD - first.CVD,
		LookbackPeriods: lookback,
	}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
