package pricing

import (
	"errors"
	"math"

	"github.com/dgnsrekt/byma-gex-api/internal/contract"
)

var (
	// ErrNoConvergence means the root-finder exhausted its iteration budget.
	ErrNoConvergence = errors.New("implied volatility did not converge")
	// ErrPriceOutOfBounds means the market price violates arbitrage bounds
	// and no volatility can reproduce it.
	ErrPriceOutOfBounds = errors.New("market price outside arbitrage bounds")
)

const (
	maxIterations = 100
	tolerance     = 1e-6
	minVol        = 1e-4
	maxVol        = 10.0
	tinyVega      = 1e-8
)

// solveIV finds the volatility at which the Black-Scholes price matches the
// market price. Newton-Raphson from a 0.5 starting guess, falling back to
// bisection when vega degenerates; the price function is monotone in sigma
// so the bracketed search always terminates within budget.
func solveIV(side contract.Side, spot, strike, t, rate, marketPrice float64) (float64, error) {
	if err := checkArbitrageBounds(side, spot, strike, t, rate, marketPrice); err != nil {
		return 0, err
	}

	sigma := 0.5
	for i := 0; i < maxIterations; i++ {
		diff := Price(side, spot, strike, t, rate, sigma) - marketPrice
		if math.Abs(diff) < tolerance {
			return sigma, nil
		}

		// Raw vega, not the per-1% presentation figure.
		vega := analyticGreeks(side, spot, strike, t, rate, sigma).vega * 100
		if math.Abs(vega) < tinyVega {
			break
		}

		sigma -= diff / vega
		if sigma < minVol {
			sigma = minVol
		} else if sigma > maxVol {
			sigma = maxVol
		}
	}

	return bisectIV(side, spot, strike, t, rate, marketPrice)
}

// bisectIV brackets sigma in [minVol, maxVol] and halves until the price
// difference is within tolerance.
func bisectIV(side contract.Side, spot, strike, t, rate, marketPrice float64) (float64, error) {
	lo, hi := minVol, maxVol

	if Price(side, spot, strike, t, rate, lo) > marketPrice ||
		Price(side, spot, strike, t, rate, hi) < marketPrice {
		return 0, ErrPriceOutOfBounds
	}

	for i := 0; i < 2*maxIterations; i++ {
		mid := (lo + hi) / 2
		diff := Price(side, spot, strike, t, rate, mid) - marketPrice
		if math.Abs(diff) < tolerance {
			return mid, nil
		}
		if diff > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}

	return 0, ErrNoConvergence
}

// checkArbitrageBounds rejects prices no volatility can explain: below
// discounted intrinsic value or above the model maximum.
func checkArbitrageBounds(side contract.Side, spot, strike, t, rate, marketPrice float64) error {
	discounted := strike * math.Exp(-rate*t)

	var lower, upper float64
	if side == contract.Call {
		lower = math.Max(spot-discounted, 0)
		upper = spot
	} else {
		lower = math.Max(discounted-spot, 0)
		upper = discounted
	}

	if marketPrice < lower-tolerance || marketPrice > upper+tolerance {
		return ErrPriceOutOfBounds
	}
	return nil
}
