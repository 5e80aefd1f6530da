package ws

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/analytics"
	"github.com/dgnsrekt/byma-gex-api/internal/flow"
)

// AnalyticsProvider supplies the views the streamer pushes. Satisfied by
// analytics.Service.
type AnalyticsProvider interface {
	Gex(ctx context.Context, symbol string) (*analytics.GexView, error)
	Flow(symbol string, lookback int) (*analytics.FlowView, error)
}

// Streamer periodically recomputes exposure and flow views for every ticker
// with at least one subscriber and broadcasts them.
type Streamer struct {
	hub      *Hub
	provider AnalyticsProvider
	interval time.Duration
	logger   *zap.Logger
}

// NewStreamer creates a new Streamer.
func NewStreamer(hub *Hub, provider AnalyticsProvider, interval time.Duration, logger *zap.Logger) *Streamer {
	return &Streamer{
		hub:      hub,
		provider: provider,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the streaming loop. Call in a goroutine.
// Returns when context is cancelled.
func (s *Streamer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("streamer started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("streamer stopping")
			return

		case <-ticker.C:
			s.broadcastAll(ctx)
		}
	}
}

// broadcastAll refreshes and pushes views for every active ticker. A ticker
// that fails to refresh is skipped until the next interval.
func (s *Streamer) broadcastAll(ctx context.Context) {
	tickers := s.hub.ActiveTickers()
	if len(tickers) == 0 {
		return
	}

	for _, symbol := range tickers {
		gex, err := s.provider.Gex(ctx, symbol)
		if err != nil {
			s.logger.Debug("failed to refresh exposure",
				zap.String("ticker", symbol),
				zap.Error(err),
			)
			continue
		}
		s.push(symbol, "gex", gex)

		flowView, err := s.provider.Flow(symbol, flow.DefaultLookback)
		if err != nil {
			s.logger.Debug("failed to refresh flow",
				zap.String("ticker", symbol),
				zap.Error(err),
			)
			continue
		}
		s.push(symbol, "flow", flowView)
	}
}

func (s *Streamer) push(symbol, kind string, data interface{}) {
	payload, err := json.Marshal(serverMessage{Type: kind, Ticker: symbol, Data: data})
	if err != nil {
		s.logger.Debug("failed to encode broadcast",
			zap.String("ticker", symbol),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}
	s.hub.Broadcast(symbol, payload)
}
