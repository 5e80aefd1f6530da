package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/analytics"
	"github.com/dgnsrekt/byma-gex-api/internal/chain"
	"github.com/dgnsrekt/byma-gex-api/internal/config"
	"github.com/dgnsrekt/byma-gex-api/internal/contract"
	"github.com/dgnsrekt/byma-gex-api/internal/history"
	"github.com/dgnsrekt/byma-gex-api/internal/marketdata"
	"github.com/dgnsrekt/byma-gex-api/internal/mockdata"
	"github.com/dgnsrekt/byma-gex-api/internal/notify"
	"github.com/dgnsrekt/byma-gex-api/internal/pricing"
	"github.com/dgnsrekt/byma-gex-api/internal/recorder"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	// Load recorder config
	recCfg := LoadRecorderConfig()

	logger.Info("recorder configuration loaded",
		zap.String("dataDir", recCfg.DataDir),
		zap.Duration("interval", recCfg.Interval),
		zap.Int("openHour", recCfg.OpenHour),
		zap.Int("closeHour", recCfg.CloseHour),
		zap.String("timezone", recCfg.Timezone),
		zap.Int("workers", recCfg.Workers),
	)

	// Load service config
	cfg, err := config.Load(recCfg.ConfigPath)
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}

	// Notification config
	ntfyCfg := notify.LoadConfig()
	if err := ntfyCfg.Validate(); err != nil {
		logger.Error("invalid notification config", zap.Error(err))
		return 1
	}
	notifier := notify.New(ntfyCfg, logger)

	// Build the analytics stack
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
	kernel := pricing.NewKernel(cfg.Pricing.RiskFreeRate, logger)
	builder := chain.NewBuilder(kernel, contract.NewExpiryResolver(), logger)
	generator := mockdata.NewGenerator(cfg.Mock.Seed, cfg.Pricing.RiskFreeRate)
	service := analytics.NewService(market, generator, builder, logger)

	// Archive and capture pool
	store := history.NewStore(recCfg.DataDir)
	rec := recorder.NewRecorder(service, recorder.NewSink(store), recCfg.Workers, logger)

	scheduler := NewScheduler(recCfg.OpenHour, recCfg.CloseHour, recCfg.Timezone)
	tracker := NewSessionTracker(recCfg.StateFile)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("recorder started",
		zap.String("session", fmt.Sprintf("%02d:00-%02d:00 %s", recCfg.OpenHour, recCfg.CloseHour, recCfg.Timezone)),
	)

	var session *notify.SessionSummary
	var sessionStart time.Time

	closeSession := func() {
		if session == nil {
			return
		}
		session.Duration = time.Since(sessionStart)

		if err := store.Commit(session.Date); err != nil {
			logger.Error("failed to commit archive", zap.String("date", session.Date), zap.Error(err))
			if nerr := notifier.SendSessionFailed(ctx, session, err); nerr != nil {
				logger.Warn("failed to send notification", zap.Error(nerr))
			}
			session = nil
			return
		}
		if err := store.Cleanup(session.Date); err != nil {
			logger.Warn("failed to cleanup staging", zap.String("date", session.Date), zap.Error(err))
		}
		if err := tracker.SetLastSessionDate(session.Date); err != nil {
			logger.Error("failed to update tracker", zap.Error(err))
		}

		logger.Info("session closed",
			zap.String("date", session.Date),
			zap.Int("passes", session.Passes),
			zap.Int("captured", session.Captured),
			zap.Int("failed", session.Failed),
		)
		if err := notifier.SendSessionClosed(ctx, session); err != nil {
			logger.Warn("failed to send notification", zap.Error(err))
		}
		session = nil
	}

	capturePass := func() {
		today := scheduler.TodayDate()

		if !scheduler.InSession() || tracker.AlreadyRecorded(today) {
			closeSession()
			return
		}

		if session == nil {
			session = &notify.SessionSummary{Date: today}
			sessionStart = time.Now()
			logger.Info("session opened", zap.String("date", today))
		}

		result := rec.CaptureAll(ctx, today, cfg.Tickers)
		session.Add(result)

		logger.Info("capture pass complete",
			zap.String("date", today),
			zap.Int("captured", result.Captured),
			zap.Int("failed", result.Failed),
		)
	}

	if recCfg.RunOnStartup {
		capturePass()
	}

	ticker := time.NewTicker(recCfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			closeSession()
			cancel()
			return 0

		case <-ticker.C:
			capturePass()

		case <-ctx.Done():
			closeSession()
			return 0
		}
	}
}
