package recorder

import (
	"time"

	"github.com/dgnsrekt/byma-gex-api/internal/analytics"
	"github.com/dgnsrekt/byma-gex-api/internal/history"
)

// Sink adapts the history store to the Archive interface.
type Sink struct {
	store *history.Store
}

func NewSink(store *history.Store) *Sink {
	return &Sink{store: store}
}

func (s *Sink) Record(date, ticker string, capturedAt time.Time, view *analytics.GexView) error {
	return s.store.Append(date, ticker, history.Record{
		CapturedAt: capturedAt,
		Gex:        view,
	})
}
