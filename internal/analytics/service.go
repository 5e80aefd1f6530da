// Package analytics composes market data, the pricing chain and the
// exposure and flow engines into the views the API serves.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/chain"
	"github.com/dgnsrekt/byma-gex-api/internal/exposure"
	"github.com/dgnsrekt/byma-gex-api/internal/flow"
	"github.com/dgnsrekt/byma-gex-api/internal/marketdata"
)

// topLevelCount caps the number of strikes reported in the key-levels view.
const topLevelCount = 5

// MarketSource provides underlying snapshots. Satisfied by
// marketdata.Service and by mock generators.
type MarketSource interface {
	GetSnapshot(ctx context.Context, symbol string) (*marketdata.Snapshot, error)
}

// FlowSource provides intraday volume samples for an underlying. The live
// feed carries no intraday history, so implementations synthesize it.
type FlowSource interface {
	IntradaySamples(symbol string, periods int) []flow.Sample
}

// Service builds the analytic views for one request.
type Service struct {
	market  MarketSource
	flows   FlowSource
	builder *chain.Builder
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(market MarketSource, flows FlowSource, builder *chain.Builder, logger *zap.Logger) *Service {
	return &Service{
		market:  market,
		flows:   flows,
		builder: builder,
		logger:  logger,
		now:     time.Now,
	}
}

// Chain fetches a snapshot and prices the full option chain.
func (s *Service) Chain(ctx context.Context, symbol string) (*chain.Chain, error) {
	snapshot, err := s.market.GetSnapshot(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot for %s: %w", symbol, err)
	}
	return s.builder.Build(snapshot, s.now()), nil
}

// SmileView is the volatility smile for one underlying.
type SmileView struct {
	Symbol    string             `json:"ticker"`
	SpotPrice float64            `json:"spot_price"`
	Timestamp time.Time          `json:"timestamp"`
	Points    []chain.SmilePoint `json:"smile"`
}

// Smile builds the per-strike implied volatility view.
func (s *Service) Smile(ctx context.Context, symbol string) (*SmileView, error) {
	ch, err := s.Chain(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return &SmileView{
		Symbol:    ch.Symbol,
		SpotPrice: ch.SpotPrice,
		Timestamp: ch.Timestamp,
		Points:    ch.Smile(),
	}, nil
}

// GexView wraps an exposure profile with its request metadata.
type GexView struct {
	Symbol    string    `json:"ticker"`
	Timestamp time.Time `json:"timestamp"`
	*exposure.Profile
}

// Gex builds the dealer exposure profile. Contracts the kernel could not
// price still feed open interest into max pain with zero Greeks.
func (s *Service) Gex(ctx context.Context, symbol string) (*GexView, error) {
	ch, err := s.Chain(ctx, symbol)
	if err != nil {
		return nil, err
	}

	contracts := make([]exposure.ContractExposure, 0, len(ch.Contracts))
	for _, pc := range ch.Contracts {
		ce := exposure.ContractExposure{
			Strike:       pc.Strike,
			Side:         pc.Side,
			OpenInterest: pc.OpenInterest,
		}
		if pc.Greeks != nil {
			ce.Gamma = pc.Greeks.Gamma
			ce.Vanna = pc.Greeks.Vanna
			ce.Charm = pc.Greeks.Charm
		}
		contracts = append(contracts, ce)
	}

	profile := exposure.BuildProfile(contracts, ch.SpotPrice)
	s.logger.Debug("built exposure profile",
		zap.String("symbol", symbol),
		zap.Int("contracts", len(contracts)),
		zap.Float64("net_gex", profile.NetGex),
		zap.String("regime", string(profile.Regime)))

	return &GexView{Symbol: ch.Symbol, Timestamp: ch.Timestamp, Profile: profile}, nil
}

// KeyLevel is one strike ranked by absolute gamma exposure.
type KeyLevel struct {
	Strike   float64 `json:"strike"`
	TotalGex float64 `json:"total_gex"`
	CallOI   int64   `json:"call_oi"`
	PutOI    int64   `json:"put_oi"`
}

// LevelsView is the condensed key-levels summary of an exposure profile.
type LevelsView struct {
	Symbol    string          `json:"ticker"`
	Timestamp time.Time       `json:"timestamp"`
	SpotPrice float64         `json:"spot_price"`
	FlipPoint *float64        `json:"flip_point,omitempty"`
	MaxPain   *float64        `json:"max_pain,omitempty"`
	NetGex    float64         `json:"net_gex"`
	Regime    exposure.Regime `json:"gex_regime"`
	TopLevels []KeyLevel      `json:"top_levels"`
}

// Levels condenses the exposure profile to flip point, max pain and the
// strikes carrying the most gamma.
func (s *Service) Levels(ctx context.Context, symbol string) (*LevelsView, error) {
	view, err := s.Gex(ctx, symbol)
	if err != nil {
		return nil, err
	}

	ranked := make([]exposure.StrikeExposure, len(view.Strikes))
	copy(ranked, view.Strikes)
	sort.Slice(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].TotalGex) > math.Abs(ranked[j].TotalGex)
	})
	if len(ranked) > topLevelCount {
		ranked = ranked[:topLevelCount]
	}

	levels := make([]KeyLevel, 0, len(ranked))
	for _, se := range ranked {
		levels = append(levels, KeyLevel{
			Strike:   se.Strike,
			TotalGex: se.TotalGex,
			CallOI:   se.CallOI,
			PutOI:    se.PutOI,
		})
	}

	return &LevelsView{
		Symbol:    view.Symbol,
		Timestamp: view.Timestamp,
		SpotPrice: view.SpotPrice,
		FlipPoint: view.FlipPoint,
		MaxPain:   view.MaxPain,
		NetGex:    view.NetGex,
		Regime:    view.Regime,
		TopLevels: levels,
	}, nil
}

// FlowView is the order-flow report for one underlying.
type FlowView struct {
	Symbol     string           `json:"ticker"`
	Timestamp  time.Time        `json:"timestamp"`
	Points     []flow.Point     `json:"cvd"`
	Divergence *flow.Divergence `json:"divergence,omitempty"`
	Summary    *flow.Summary    `json:"summary,omitempty"`
}

// Flow computes cumulative volume delta, divergence and the volume summary
// over the intraday window. A window shorter than the lookback still
// returns the CVD series, just without a divergence verdict.
func (s *Service) Flow(symbol string, lookback int) (*FlowView, error) {
	if lookback <= 0 {
		lookback = flow.DefaultLookback
	}

	samples := s.flows.IntradaySamples(symbol, 0)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no intraday samples for %s", symbol)
	}

	points := flow.ComputeCVD(samples)
	view := &FlowView{
		Symbol:    symbol,
		Timestamp: s.now(),
		Points:    points,
	}

	divergence, err := flow.DetectDivergence(points, lookback)
	if err != nil {
		s.logger.Debug("divergence unavailable", zap.String("symbol", symbol), zap.Error(err))
	} else {
		view.Divergence = divergence
	}

	summary, err := flow.Summarize(points, lookback)
	if err == nil {
		view.Summary = summary
	}

	return view, nil
}
