package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/analytics"
	"github.com/dgnsrekt/byma-gex-api/internal/chain"
	"github.com/dgnsrekt/byma-gex-api/internal/marketdata"
)

// Analytics is the view surface the handlers serve. Satisfied by
// analytics.Service.
type Analytics interface {
	Chain(ctx context.Context, symbol string) (*chain.Chain, error)
	Smile(ctx context.Context, symbol string) (*analytics.SmileView, error)
	Gex(ctx context.Context, symbol string) (*analytics.GexView, error)
	Levels(ctx context.Context, symbol string) (*analytics.LevelsView, error)
	Flow(symbol string, lookback int) (*analytics.FlowView, error)
}

// CacheClearer invalidates the live snapshot cache.
type CacheClearer interface {
	ClearCache()
}

type Server struct {
	live    Analytics
	mock    Analytics
	cache   CacheClearer
	tickers map[string]bool
	logger  *zap.Logger
}

// NewServer builds the handler set. tickers is the configured board; mock
// may be nil when synthetic data is disabled.
func NewServer(live, mock Analytics, cache CacheClearer, tickers []string, logger *zap.Logger) *Server {
	set := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		set[strings.ToUpper(t)] = true
	}
	return &Server{
		live:    live,
		mock:    mock,
		cache:   cache,
		tickers: set,
		logger:  logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// source picks the live or mock view provider. An unknown ticker or a mock
// request with mock data disabled returns nil and writes the response.
func (s *Server) source(w http.ResponseWriter, r *http.Request) (Analytics, string) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if !s.tickers[ticker] {
		writeError(w, http.StatusNotFound, "unknown ticker: "+ticker)
		return nil, ""
	}

	if r.URL.Query().Get("mock") == "true" {
		if s.mock == nil {
			writeError(w, http.StatusNotFound, "mock data is disabled")
			return nil, ""
		}
		return s.mock, ticker
	}
	return s.live, ticker
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	src, ticker := s.source(w, r)
	if src == nil {
		return
	}
	view, err := src.Chain(r.Context(), ticker)
	if err != nil {
		s.writeUpstreamError(w, ticker, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSmile(w http.ResponseWriter, r *http.Request) {
	src, ticker := s.source(w, r)
	if src == nil {
		return
	}
	view, err := src.Smile(r.Context(), ticker)
	if err != nil {
		s.writeUpstreamError(w, ticker, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGex(w http.ResponseWriter, r *http.Request) {
	src, ticker := s.source(w, r)
	if src == nil {
		return
	}
	view, err := src.Gex(r.Context(), ticker)
	if err != nil {
		s.writeUpstreamError(w, ticker, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	src, ticker := s.source(w, r)
	if src == nil {
		return
	}
	view, err := src.Levels(r.Context(), ticker)
	if err != nil {
		s.writeUpstreamError(w, ticker, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	src, ticker := s.source(w, r)
	if src == nil {
		return
	}

	lookback := 0
	if raw := r.URL.Query().Get("lookback"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "lookback must be a positive integer")
			return
		}
		lookback = n
	}

	view, err := src.Flow(ticker, lookback)
	if err != nil {
		s.writeUpstreamError(w, ticker, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.cache.ClearCache()
	s.logger.Info("snapshot cache cleared")
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "snapshot cache cleared",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"tickers": len(s.tickers),
	})
}

func (s *Server) writeUpstreamError(w http.ResponseWriter, ticker string, err error) {
	switch {
	case errors.Is(err, marketdata.ErrSymbolNotFound):
		writeError(w, http.StatusNotFound, "no quotes for "+ticker)
	case errors.Is(err, marketdata.ErrUpstream), errors.Is(err, marketdata.ErrRateLimited):
		s.logger.Warn("upstream failure", zap.String("ticker", ticker), zap.Error(err))
		writeError(w, http.StatusBadGateway, "market data feed unavailable")
	default:
		s.logger.Error("request failed", zap.String("ticker", ticker), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
