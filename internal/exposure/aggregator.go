// Package exposure aggregates per-contract Greeks into dealer exposure
// profiles: gamma (GEX), vanna (VEX) and charm (CEX) by strike, with flip
// point, max pain and regime detection.
package exposure

import (
	"math"
	"sort"

	"github.com/dgnsrekt/byma-gex-api/internal/contract"
)

// Scaling conventions: GEX and VEX are reported in millions, CEX in
// thousands. Contracts carry the standard 100x multiplier.
const (
	contractSize = 100
	gexScale     = 1_000_000
	vexScale     = 1_000_000
	cexScale     = 1_000
)

// Moneyness classification bands around spot.
const (
	itmRatio = 0.95
	otmRatio = 1.05
)

// Regime describes which side of the flip point spot is trading on.
type Regime string

const (
	RegimePositive Regime = "POSITIVE" // dealers long gamma, stabilizing
	RegimeNegative Regime = "NEGATIVE" // dealers short gamma, amplifying
	RegimeNeutral  Regime = "NEUTRAL"
)

// ContractExposure is the flat per-contract input: one parsed and priced
// option's strike, side, Greeks and open interest.
type ContractExposure struct {
	Strike       float64
	Side         contract.Side
	Gamma        float64
	Vanna        float64
	Charm        float64
	OpenInterest int64
}

// StrikeExposure aggregates one strike across both sides.
type StrikeExposure struct {
	Strike    float64 `json:"strike"`
	CallGex   float64 `json:"call_gex"`
	PutGex    float64 `json:"put_gex"`
	TotalGex  float64 `json:"total_gex"`
	CallOI    int64   `json:"call_oi"`
	PutOI     int64   `json:"put_oi"`
	CallGamma float64 `json:"call_gamma"`
	PutGamma  float64 `json:"put_gamma"`
	Vex       float64 `json:"vex"`
	Cex       float64 `json:"cex"`
	Moneyness string  `json:"moneyness"`
}

// Profile is the complete exposure view for one underlying.
type Profile struct {
	SpotPrice    float64          `json:"spot_price"`
	FlipPoint    *float64         `json:"flip_point,omitempty"`
	TotalCallGex float64          `json:"total_call_gex"`
	TotalPutGex  float64          `json:"total_put_gex"`
	NetGex       float64          `json:"net_gex"`
	TotalVex     float64          `json:"total_vex"`
	TotalCex     float64          `json:"total_cex"`
	LocalGex     float64          `json:"local_gex"`
	MaxPain      *float64         `json:"max_pain,omitempty"`
	Regime       Regime           `json:"gex_regime"`
	Strikes      []StrikeExposure `json:"strikes"`
}

// SingleGex computes dealer gamma exposure for one contract, scaled to
// millions. Dealers are assumed short: calls contribute positive gamma,
// puts negative. Missing gamma or open interest contributes exactly zero.
func SingleGex(gamma float64, openInterest int64, spot float64, side contract.Side) float64 {
	if gamma == 0 || openInterest == 0 {
		return 0
	}
	return gamma * float64(openInterest) * contractSize * spot * spot * 0.01 * direction(side) / gexScale
}

// SingleVex is the dealer delta adjustment per 1% IV move, in millions.
func SingleVex(vanna float64, openInterest int64, spot float64, side contract.Side) float64 {
	if vanna == 0 || openInterest == 0 {
		return 0
	}
	return vanna * float64(openInterest) * contractSize * spot * 0.01 * direction(side) / vexScale
}

// SingleCex is the daily dealer delta decay, in thousands.
func SingleCex(charm float64, openInterest int64, spot float64, side contract.Side) float64 {
	if charm == 0 || openInterest == 0 {
		return 0
	}
	return charm * float64(openInterest) * contractSize * spot / 365.0 * direction(side) / cexScale
}

func direction(side contract.Side) float64 {
	if side == contract.Call {
		return 1
	}
	return -1
}

// strikeAccumulator collects both sides of one strike during the fold.
type strikeAccumulator struct {
	callGamma, putGamma float64
	callOI, putOI       int64
	callGex, putGex     float64
	vex, cex            float64
}

// BuildProfile folds the contract list into a per-strike profile and derives
// flip point, max pain, local exposure and regime. Contracts with a
// non-positive strike are skipped; a single bad contract never invalidates
// the batch.
func BuildProfile(contracts []ContractExposure, spot float64) *Profile {
	byStrike := make(map[float64]*strikeAccumulator)

	for _, c := range contracts {
		if c.Strike <= 0 {
			continue
		}

		acc, ok := byStrike[c.Strike]
		if !ok {
			acc = &strikeAccumulator{}
			byStrike[c.Strike] = acc
		}

		gex := SingleGex(c.Gamma, c.OpenInterest, spot, c.Side)
		if c.Side == contract.Call {
			acc.callGamma = c.Gamma
			acc.callOI = c.OpenInterest
			acc.callGex = gex
		} else {
			acc.putGamma = c.Gamma
			acc.putOI = c.OpenInterest
			acc.putGex = gex
		}

		acc.vex += SingleVex(c.Vanna, c.OpenInterest, spot, c.Side)
		acc.cex += SingleCex(c.Charm, c.OpenInterest, spot, c.Side)
	}

	sorted := make([]float64, 0, len(byStrike))
	for strike := range byStrike {
		sorted = append(sorted, strike)
	}
	sort.Float64s(sorted)

	strikes := make([]StrikeExposure, 0, len(sorted))
	for _, strike := range sorted {
		acc := byStrike[strike]
		strikes = append(strikes, StrikeExposure{
			Strike:    strike,
			CallGex:   acc.callGex,
			PutGex:    acc.putGex,
			TotalGex:  acc.callGex + acc.putGex,
			CallOI:    acc.callOI,
			PutOI:     acc.putOI,
			CallGamma: acc.callGamma,
			PutGamma:  acc.putGamma,
			Vex:       acc.vex,
			Cex:       acc.cex,
			Moneyness: classifyMoneyness(strike, spot),
		})
	}

	profile := &Profile{
		SpotPrice: spot,
		Strikes:   strikes,
	}

	for _, s := range strikes {
		profile.TotalCallGex += s.CallGex
		profile.TotalPutGex += s.PutGex
		profile.TotalVex += s.Vex
		profile.TotalCex += s.Cex
	}
	profile.NetGex = profile.TotalCallGex + profile.TotalPutGex

	profile.FlipPoint = findFlipPoint(strikes, spot)
	profile.MaxPain = findMaxPain(strikes)

	localLow, localHigh := spot*itmRatio, spot*otmRatio
	for _, s := range strikes {
		if s.Strike >= localLow && s.Strike <= localHigh {
			profile.LocalGex += s.TotalGex
		}
	}

	switch {
	case profile.FlipPoint != nil && spot < *profile.FlipPoint:
		profile.Regime = RegimeNegative
	case profile.FlipPoint != nil && spot > *profile.FlipPoint:
		profile.Regime = RegimePositive
	default:
		profile.Regime = RegimeNeutral
	}

	return profile
}

func classifyMoneyness(strike, spot float64) string {
	ratio := strike / spot
	switch {
	case ratio < itmRatio:
		return "ITM"
	case ratio > otmRatio:
		return "OTM"
	default:
		return "ATM"
	}
}

// findFlipPoint walks the strike ladder accumulating total GEX and
// interpolates the zero crossing of the running sum. Multiple crossings pick
// the one closest to spot, filtering noise from thin far-OTM strikes. With
// no crossing at all, the strike with the smallest absolute cumulative sum
// stands in as a best-effort balance point.
func findFlipPoint(strikes []StrikeExposure, spot float64) *float64 {
	if len(strikes) == 0 {
		return nil
	}

	var crossings []float64
	cumsum := 0.0

	for i, s := range strikes {
		prev := cumsum
		cumsum += s.TotalGex

		if i == 0 || prev*cumsum >= 0 {
			continue
		}

		flip := s.Strike
		if math.Abs(cumsum-prev) > 1e-4 {
			prevStrike := strikes[i-1].Strike
			ratio := math.Abs(prev) / math.Abs(cumsum-prev)
			flip = prevStrike + ratio*(s.Strike-prevStrike)
		}
		crossings = append(crossings, flip)
	}

	if len(crossings) > 0 {
		best := crossings[0]
		for _, c := range crossings[1:] {
			if math.Abs(c-spot) < math.Abs(best-spot) {
				best = c
			}
		}
		return &best
	}

	cumsum = 0.0
	minAbs := math.Inf(1)
	var balance float64
	for _, s := range strikes {
		cumsum += s.TotalGex
		if math.Abs(cumsum) < minAbs {
			minAbs = math.Abs(cumsum)
			balance = s.Strike
		}
	}
	return &balance
}

// findMaxPain picks the strike with the greatest combined open interest.
// Ties keep the first strike seen in ascending order.
func findMaxPain(strikes []StrikeExposure) *float64 {
	if len(strikes) == 0 {
		return nil
	}

	var maxOI int64
	var maxPain *float64

	for i := range strikes {
		total := strikes[i].CallOI + strikes[i].PutOI
		if total > maxOI {
			maxOI = total
			maxPain = &strikes[i].Strike
		}
	}
	return maxPain
}
