package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/agent"
	"PortfolioSentinel/internal/broker"
	"PortfolioSentinel/internal/config"
	"PortfolioSentinel/internal/fund"
	"PortfolioSentinel/internal/notifier"
	"PortfolioSentinel/internal/recorder"
	"PortfolioSentinel/internal/scheduler"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	log.Info().Msg("PortfolioSentinel starting...")

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found")
	}

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

	// Brokerage credentials
	apiKey := os.Getenv("ALPACA_API_KEY")
	apiSecret := os.Getenv("ALPACA_SECRET_KEY")
	if apiKey == "" || apiSecret == "" {
		log.Fatal().Msg("ALPACA_API_KEY and ALPACA_SECRET_KEY must be set")
	}

	// Init broker
	b, err := broker.NewAlpacaBroker(apiKey, apiSecret, cfg.Alpaca.BaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init broker")
	}

	// Init fund manager
	fm, err := fund.NewManager(cfg.Fund.CheckpointFile)
	if err != nil {
		log.Fatal().Err(err).Msg("init fund manager")
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init reporting scheduler
	sched := scheduler.NewScheduler(ctx, b, tn, rec, log)
	if err := sched.RegisterAll(cfg.Schedule.ReportCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Init funding agent
	poll := time.Duration(cfg.Schedule.PollSeconds) * time.Second
	a := agent.New(b, fm, rec, tn, cfg.Fund.TargetRatio, cfg.Fund.HorizonDays, poll, log)

	// Start Telegram polling
	if tn.Enabled() {
		go tn.StartPolling(ctx, a.HandleCommand)
		log.Info().Msg("Telegram polling started")
	}

	// Run the funding loop
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	log.Info().Msg("PortfolioSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal or a fatal agent error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("funding loop failed")
		}
	}

	log.Info().Msg("PortfolioSentinel stopped")
}
