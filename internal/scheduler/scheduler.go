package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/broker"
	"PortfolioSentinel/internal/notifier"
	"PortfolioSentinel/internal/recorder"
)

// Scheduler runs the reporting jobs that sit outside the funding loop.
type Scheduler struct {
	Cron     *cron.Cron
	Broker   broker.Broker
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Ctx      context.Context

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, b broker.Broker, tn *notifier.TelegramNotifier, rec recorder.Recorder, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Broker:   b,
		Notifier: tn,
		Recorder: rec,
		Ctx:      ctx,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the end-of-day report task.
func (s *Scheduler) RegisterAll(reportCron string) error {
	if _, err := s.Cron.AddFunc(reportCron, s.dailyReport); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) dailyReport() {
	s.log.Info().Msg("running daily report")
	acct, err := s.Broker.Account()
	if err != nil {
		s.log.Error().Err(err).Msg("daily report account fetch")
		return
	}

	if err := s.Recorder.RecordAccountSnapshot(acct); err != nil {
		s.log.Error().Err(err).Msg("record account snapshot")
	}

	if s.Notifier != nil && s.Notifier.Enabled() {
		if err := s.Notifier.SendWithRetry(s.Ctx, notifier.FormatAccountStatus(acct), 3); err != nil {
			s.log.Error().Err(err).Msg("send daily report")
		}
	}
}
