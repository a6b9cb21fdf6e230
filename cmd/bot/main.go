package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"CryptoSentinel/internal/advisor"
	"CryptoSentinel/internal/alert"
	"CryptoSentinel/internal/collector"
	"CryptoSentinel/internal/config"
	"CryptoSentinel/internal/forecast"
	"CryptoSentinel/internal/notifier"
	"CryptoSentinel/internal/optimizer"
	"CryptoSentinel/internal/scheduler"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	log.Info().Msg("CryptoSentinel starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	// Init market data fetcher
	fetcher := collector.NewCryptoCompareFetcher(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, cfg.Proxy)
	log.Info().Str("source", fetcher.Name()).Msg("market data source ready")

	// Init alert store
	var store alert.Store
	if cfg.Alerts.SQLitePath != "" {
		ss, err := alert.NewSQLiteStore(cfg.Alerts.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite alert store failed, using in-memory store")
			store = alert.NewMemoryStore()
		} else {
			store = ss
			defer ss.Close()
		}
	} else {
		store = alert.NewMemoryStore()
	}

	// Init analytics
	adv := advisor.New(fetcher, &optimizer.ReturnSolver{}, forecast.SARIMA{},
		cfg.Analytics.HistoryLimit, cfg.Analytics.SMAWindow, log)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, store, fetcher, adv, tn, cfg.Alerts.Recipients, log)
	sched.ForecastDays = cfg.Analytics.ForecastDays
	if err := sched.RegisterAll(cfg.Alerts.Cron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling for alert-management commands
	go tn.StartPolling(ctx, sched.HandleCommand, log)
	log.Info().Msg("Telegram polling started")

	// Optional: evaluate alerts immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, evaluating alerts now")
		go sched.RunNow()
	}

	log.Info().Msg("CryptoSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("CryptoSentinel stopped")
}
