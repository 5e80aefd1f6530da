// Package pricing implements the Black-Scholes pricing kernel: implied
// volatility solving and analytic Greeks for a single option contract.
package pricing

import (
	"math"

	"github.com/dgnsrekt/byma-gex-api/internal/contract"
)

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

func d1d2(spot, strike, t, rate, sigma float64) (float64, float64) {
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	return d1, d1 - sigma*math.Sqrt(t)
}

// Price returns the theoretical Black-Scholes price. For an expired option
// it degenerates to intrinsic value.
func Price(side contract.Side, spot, strike, t, rate, sigma float64) float64 {
	if t <= 0 {
		if side == contract.Call {
			return math.Max(spot-strike, 0)
		}
		return math.Max(strike-spot, 0)
	}

	if sigma <= 0 {
		// Zero volatility collapses to the discounted intrinsic value.
		if side == contract.Call {
			return math.Max(spot-strike*math.Exp(-rate*t), 0)
		}
		return math.Max(strike*math.Exp(-rate*t)-spot, 0)
	}

	d1, d2 := d1d2(spot, strike, t, rate, sigma)
	if side == contract.Call {
		return spot*normCDF(d1) - strike*math.Exp(-rate*t)*normCDF(d2)
	}
	return strike*math.Exp(-rate*t)*normCDF(-d2) - spot*normCDF(-d1)
}

// greeks holds the raw (unrounded) analytic sensitivities at a given sigma.
// Theta is per calendar day and vega per 1% vol move; vanna is per unit vol
// and charm per year, matching the exposure formulas that consume them.
type greeks struct {
	delta float64
	gamma float64
	theta float64
	vega  float64
	vanna float64
	charm float64
}

func analyticGreeks(side contract.Side, spot, strike, t, rate, sigma float64) greeks {
	d1, d2 := d1d2(spot, strike, t, rate, sigma)
	pdf := normPDF(d1)
	sqrtT := math.Sqrt(t)
	discount := math.Exp(-rate * t)

	var g greeks

	if side == contract.Call {
		g.delta = normCDF(d1)
	} else {
		g.delta = normCDF(d1) - 1
	}

	g.gamma = pdf / (spot * sigma * sqrtT)
	g.vega = spot * sqrtT * pdf / 100

	thetaCore := -(spot * pdf * sigma) / (2 * sqrtT)
	if side == contract.Call {
		g.theta = (thetaCore - rate*strike*discount*normCDF(d2)) / 365
	} else {
		g.theta = (thetaCore + rate*strike*discount*normCDF(-d2)) / 365
	}

	// Same for calls and puts with no dividend yield.
	g.vanna = -pdf * d2 / sigma
	g.charm = -pdf * (2*rate*t - d2*sigma*sqrtT) / (2 * t * sigma * sqrtT)

	return g
}
