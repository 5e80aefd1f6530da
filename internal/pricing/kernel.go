package pricing

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/contract"
)

// suspiciousVolCeiling marks solved volatilities worth flagging. Anything
// above 500% is almost certainly bad input data, but the figure is still
// returned so callers can distinguish "implausible" from "failed".
const suspiciousVolCeiling = 5.0

// ValidationError reports an input rejected before any numerical work.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Input is one contract's pricing request.
type Input struct {
	Spot         float64
	Strike       float64
	DaysToExpiry int
	Rate         float64
	MarketPrice  float64
	Side         contract.Side
}

// Result carries the solved volatility and the Greeks derived from it. All
// figures come from the same sigma and are rounded to 4 decimals.
type Result struct {
	IV    float64
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Vanna float64
	Charm float64
}

// Kernel solves implied volatility and Greeks. It is stateless apart from
// the default risk-free rate and never performs I/O.
type Kernel struct {
	rate   float64
	logger *zap.Logger
}

func NewKernel(defaultRate float64, logger *zap.Logger) *Kernel {
	return &Kernel{rate: defaultRate, logger: logger}
}

// DefaultRate returns the kernel's risk-free rate.
func (k *Kernel) DefaultRate() float64 {
	return k.rate
}

// Solve validates the input, solves for implied volatility and computes the
// analytic Greeks. On any numerical failure it returns an error and no
// partial Greeks. A zero Input.Rate falls back to the kernel default.
func (k *Kernel) Solve(in Input) (*Result, error) {
	if in.Spot <= 0 {
		return nil, &ValidationError{Field: "spot", Reason: "must be positive"}
	}
	if in.Strike <= 0 {
		return nil, &ValidationError{Field: "strike", Reason: "must be positive"}
	}
	if in.MarketPrice <= 0 {
		return nil, &ValidationError{Field: "market_price", Reason: "must be positive"}
	}
	if in.DaysToExpiry < 0 {
		return nil, &ValidationError{Field: "days_to_expiry", Reason: "cannot be negative"}
	}
	if in.Side != contract.Call && in.Side != contract.Put {
		return nil, &ValidationError{Field: "side", Reason: "must be call or put"}
	}

	// Expired contracts carry no optionality; skip the root-finder.
	if in.DaysToExpiry == 0 {
		res := &Result{}
		if in.Side == contract.Call && in.Spot > in.Strike {
			res.Delta = 1.0
		}
		return res, nil
	}

	rate := in.Rate
	if rate == 0 {
		rate = k.rate
	}

	t := float64(in.DaysToExpiry) / 365.0

	iv, err := solveIV(in.Side, in.Spot, in.Strike, t, rate, in.MarketPrice)
	if err != nil {
		return nil, err
	}

	if iv <= 0 || iv > suspiciousVolCeiling {
		k.logger.Warn("suspicious implied volatility",
			zap.Float64("iv", iv),
			zap.Float64("spot", in.Spot),
			zap.Float64("strike", in.Strike),
			zap.Int("daysToExpiry", in.DaysToExpiry),
		)
	}

	g := analyticGreeks(in.Side, in.Spot, in.Strike, t, rate, iv)

	return &Result{
		IV:    round4(iv),
		Delta: round4(g.delta),
		Gamma: round4(g.gamma),
		Theta: round4(g.theta),
		Vega:  round4(g.vega),
		Vanna: round4(g.vanna),
		Charm: round4(g.charm),
	}, nil
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
