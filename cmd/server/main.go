package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/analytics"
	"github.com/dgnsrekt/byma-gex-api/internal/chain"
	"github.com/dgnsrekt/byma-gex-api/internal/config"
	"github.com/dgnsrekt/byma-gex-api/internal/contract"
	"github.com/dgnsrekt/byma-gex-api/internal/marketdata"
	"github.com/dgnsrekt/byma-gex-api/internal/mockdata"
	"github.com/dgnsrekt/byma-gex-api/internal/pricing"
	"github.com/dgnsrekt/byma-gex-api/internal/server"
	"github.com/dgnsrekt/byma-gex-api/internal/ws"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load config
	cfg, err := config.Load(os.Getenv("BYMA_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	// Setup logger
	logger, err := buildLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.String("baseURL", cfg.API.BaseURL),
		zap.Strings("tickers", cfg.Tickers),
		zap.Float64("riskFreeRate", cfg.Pricing.RiskFreeRate),
		zap.Bool("wsEnabled", cfg.Server.WSEnabled),
		zap.Bool("mockEnabled", cfg.Mock.Enabled),
	)

	// Market data client and cached snapshot service
	client := marketdata.NewHTTPClient(
		cfg.API.BaseURL,
		cfg.API.StocksPath,
		cfg.API.OptionsPath,
		cfg.API.RatePerSecond,
		cfg.API.Timeout(),
		cfg.API.RetryDelay(),
		cfg.API.RetryCount,
		logger,
	)
	market := marketdata.NewService(client, cfg.API.CacheTTL(), logger)

	// Pricing and analytics
	kernel := pricing.NewKernel(cfg.Pricing.RiskFreeRate, logger)
	builder := chain.NewBuilder(kernel, contract.NewExpiryResolver(), logger)

	// The feed has no intraday history, so the flow engine always runs on
	// synthesized bars.
	generator := mockdata.NewGenerator(cfg.Mock.Seed, cfg.Pricing.RiskFreeRate)

	live := analytics.NewService(market, generator, builder, logger)

	var mock server.Analytics
	if cfg.Mock.Enabled {
		mock = analytics.NewService(generator, generator, builder, logger)
	}

	srv := server.NewServer(live, mock, market, cfg.Tickers, logger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket components (optional)
	var wsHandler http.HandlerFunc
	if cfg.Server.WSEnabled {
		hub := ws.NewHub(logger)
		go hub.Run(ctx)

		allowed := make(map[string]bool, len(cfg.Tickers))
		for _, t := range cfg.Tickers {
			allowed[t] = true
		}
		wsHandler = hub.HandleWS(allowed)

		streamer := ws.NewStreamer(hub, live, cfg.Server.WSStreamInterval(), logger)
		go streamer.Run(ctx)

		logger.Info("WebSocket enabled",
			zap.Duration("streamInterval", cfg.Server.WSStreamInterval()),
		)
	}

	router := server.NewRouter(srv, wsHandler, logger)

	// Setup HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Cancel context to stop WebSocket components
	cancel()

	// Graceful HTTP server shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return 1
	}

	logger.Info("server stopped")
	return 0
}

func buildLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
