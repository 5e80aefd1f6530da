// Package server exposes the analytics engine over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter wires the API routes. wsHandler is optional; when nil the
// streaming endpoint is not mounted.
func NewRouter(server *Server, wsHandler http.HandlerFunc, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)
	r.Use(zapLoggerMiddleware(logger))

	r.Get("/health", server.handleHealth)

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/chain/{ticker}", server.handleChain)
		api.Get("/chain/{ticker}/smile", server.handleSmile)
		api.Get("/analytics/gex/{ticker}", server.handleGex)
		api.Get("/analytics/gex/{ticker}/levels", server.handleLevels)
		api.Get("/analytics/flow/{ticker}", server.handleFlow)
		api.Post("/cache/clear", server.handleCacheClear)
	})

	if wsHandler != nil {
		r.Get("/ws", wsHandler)
	}

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func zapLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
			)
			next.ServeHTTP(w, r)
		})
	}
}
