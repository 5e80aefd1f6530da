// Package recorder captures exposure profiles for a set of tickers and
// archives them through the history store.
package recorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/analytics"
)

// Archive is the sink for captured records. Satisfied by history.Store
// through the Sink adapter below.
type Archive interface {
	Record(date, ticker string, capturedAt time.Time, view *analytics.GexView) error
}

// GexSource supplies the view to capture. Satisfied by analytics.Service.
type GexSource interface {
	Gex(ctx context.Context, symbol string) (*analytics.GexView, error)
}

// BatchResult summarizes one capture pass.
type BatchResult struct {
	Total    int
	Captured int
	Failed   int
	Errors   []string
}

type taskResult struct {
	ticker string
	err    error
}

// Recorder fans capture jobs out to a bounded worker pool.
type Recorder struct {
	source  GexSource
	archive Archive
	workers int
	now     func() time.Time
	logger  *zap.Logger
}

func NewRecorder(source GexSource, archive Archive, workers int, logger *zap.Logger) *Recorder {
	if workers < 1 {
		workers = 1
	}
	return &Recorder{
		source:  source,
		archive: archive,
		workers: workers,
		now:     time.Now,
		logger:  logger,
	}
}

// CaptureAll runs one pass over the tickers: fetch each exposure view and
// archive it under the given date. One ticker failing never stops the pass.
func (r *Recorder) CaptureAll(ctx context.Context, date string, tickers []string) *BatchResult {
	result := &BatchResult{Total: len(tickers)}

	if len(tickers) == 0 {
		return result
	}

	jobs := make(chan string, len(tickers))
	results := make(chan taskResult, len(tickers))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, date, jobs, results)
		}()
	}

	// Send jobs
	go func() {
		for _, ticker := range tickers {
			select {
			case <-ctx.Done():
				return
			case jobs <- ticker:
			}
		}
		close(jobs)
	}()

	// Wait for workers and close results
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results
	for res := range results {
		if res.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", res.ticker, res.err))
		} else {
			result.Captured++
		}
	}

	return result
}

func (r *Recorder) worker(ctx context.Context, date string, jobs <-chan string, results chan<- taskResult) {
	for ticker := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := r.capture(ctx, date, ticker)

		select {
		case <-ctx.Done():
			return
		case results <- taskResult{ticker: ticker, err: err}:
		}
	}
}

func (r *Recorder) capture(ctx context.Context, date, ticker string) error {
	view, err := r.source.Gex(ctx, ticker)
	if err != nil {
		return fmt.Errorf("fetching exposure: %w", err)
	}

	capturedAt := r.now()
	if err := r.archive.Record(date, ticker, capturedAt, view); err != nil {
		return fmt.Errorf("archiving: %w", err)
	}

	r.logger.Debug("captured exposure",
		zap.String("ticker", ticker),
		zap.String("date", date),
		zap.Float64("netGex", view.NetGex),
	)
	return nil
}
