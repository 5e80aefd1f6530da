package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	stocksCacheKey  = "stocks"
	optionsCacheKey = "options"
)

// Service joins the stocks and options feeds into per-underlying snapshots.
// Both feeds share one TTL cache so repeated requests inside the provider's
// refresh window never hit the network.
type Service struct {
	client Client
	cache  *SnapshotCache
	logger *zap.Logger
}

// Snapshot is the joined view for one underlying: its spot price and every
// raw option quote whose ticker belongs to it.
type Snapshot struct {
	Symbol    string
	Spot      float64
	Options   []OptionQuote
	FetchedAt time.Time
}

func NewService(client Client, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		cache:  NewSnapshotCache(cacheTTL),
		logger: logger,
	}
}

// ClearCache drops cached feed snapshots.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Info("market data cache cleared")
}

// GetSpot returns the last price for an underlying symbol.
func (s *Service) GetSpot(ctx context.Context, symbol string) (float64, error) {
	stocks, err := s.stocks(ctx)
	if err != nil {
		return 0, err
	}

	upper := strings.ToUpper(symbol)
	for _, stock := range stocks {
		if strings.ToUpper(stock.Symbol) == upper && stock.Last > 0 {
			return stock.Last, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

// GetSnapshot fetches stocks and options concurrently, joins them, and
// filters the options down to the underlying's option root.
func (s *Service) GetSnapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	type stocksResult struct {
		stocks []StockQuote
		err    error
	}
	type optionsResult struct {
		options []OptionQuote
		err     error
	}

	stocksCh := make(chan stocksResult, 1)
	optionsCh := make(chan optionsResult, 1)

	go func() {
		st, err := s.stocks(ctx)
		stocksCh <- stocksResult{st, err}
	}()
	go func() {
		opts, err := s.options(ctx)
		optionsCh <- optionsResult{opts, err}
	}()

	st := <-stocksCh
	opts := <-optionsCh

	if st.err != nil {
		return nil, st.err
	}
	if opts.err != nil {
		return nil, opts.err
	}

	upper := strings.ToUpper(symbol)
	var spot float64
	for _, stock := range st.stocks {
		if strings.ToUpper(stock.Symbol) == upper {
			spot = stock.Last
			break
		}
	}
	if spot <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	root := OptionRoot(upper)
	var filtered []OptionQuote
	for _, opt := range opts.options {
		if strings.HasPrefix(strings.ToUpper(opt.Ticker), root) {
			filtered = append(filtered, opt)
		}
	}

	s.logger.Debug("snapshot assembled",
		zap.String("symbol", upper),
		zap.String("optionRoot", root),
		zap.Float64("spot", spot),
		zap.Int("options", len(filtered)),
	)

	return &Snapshot{
		Symbol:    upper,
		Spot:      spot,
		Options:   filtered,
		FetchedAt: time.Now(),
	}, nil
}

func (s *Service) stocks(ctx context.Context) ([]StockQuote, error) {
	if cached, ok := s.cache.Get(stocksCacheKey); ok {
		return cached.([]StockQuote), nil
	}

	stocks, err := s.client.FetchStocks(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(stocksCacheKey, stocks)
	s.logger.Debug("stocks fetched", zap.Int("count", len(stocks)))
	return stocks, nil
}

func (s *Service) options(ctx context.Context) ([]OptionQuote, error) {
	if cached, ok := s.cache.Get(optionsCacheKey); ok {
		return cached.([]OptionQuote), nil
	}

	options, err := s.client.FetchOptions(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(optionsCacheKey, options)
	s.logger.Debug("options fetched", zap.Int("count", len(options)))
	return options, nil
}
