package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/allocator"
	"PortfolioSentinel/internal/broker"
	"PortfolioSentinel/internal/fund"
	"PortfolioSentinel/internal/model"
	"PortfolioSentinel/internal/notifier"
	"PortfolioSentinel/internal/recorder"
)

// Agent drives the funding loop: once per eligible trading day it computes
// the dollar budget, turns it into a purchase plan, submits the orders, and
// advances the checkpoint.
type Agent struct {
	Broker   broker.Broker
	Fund     *fund.Manager
	Recorder recorder.Recorder
	Notifier *notifier.TelegramNotifier

	TargetRatio float64
	HorizonDays int
	Poll        time.Duration

	log zerolog.Logger
}

// New creates an Agent.
func New(b broker.Broker, fm *fund.Manager, rec recorder.Recorder, tn *notifier.TelegramNotifier,
	targetRatio float64, horizonDays int, poll time.Duration, log zerolog.Logger) *Agent {
	return &Agent{
		Broker:      b,
		Fund:        fm,
		Recorder:    rec,
		Notifier:    tn,
		TargetRatio: targetRatio,
		HorizonDays: horizonDays,
		Poll:        poll,
		log:         log.With().Str("component", "agent").Logger(),
	}
}

// Run executes funding cycles until the context is cancelled or a fatal
// error occurs. Precondition violations and brokerage failures are returned
// rather than swallowed; masking them risks checkpoint drift.
func (a *Agent) Run(ctx context.Context) error {
	for {
		if err := a.ensureCheckpoint(time.Now().UTC()); err != nil {
			return err
		}

		next, err := a.nextFundingTime(time.Now().UTC())
		if err != nil {
			return err
		}
		a.log.Info().Time("next", next).Msg("waiting until next funding time")
		if err := a.waitUntil(ctx, next); err != nil {
			return err
		}

		rec, err := a.RunCycle(time.Now().UTC())
		if err != nil {
			return err
		}
		if rec != nil {
			a.report(ctx, rec)
			continue
		}

		// No-op cycle with a never-funded checkpoint keeps the eligible
		// timestamp in the past; pause one poll interval instead of
		// hammering the API.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.Poll):
		}
	}
}

// ensureCheckpoint samples a fresh checkpoint from the live portfolio when
// none exists on disk.
func (a *Agent) ensureCheckpoint(now time.Time) error {
	if a.Fund.Initialized() {
		return nil
	}
	a.log.Info().Msg("no checkpoint found, sampling live portfolio")
	positions, err := a.Broker.Positions()
	if err != nil {
		return err
	}
	return a.Fund.Initialize(positions, a.TargetRatio, a.HorizonDays, now)
}

// nextFundingTime computes the next eligible funding timestamp: the first
// trading session open (plus the broker's fixed offset) at or after the
// later of now and a full day past the last funding.
func (a *Agent) nextFundingTime(now time.Time) (time.Time, error) {
	from := now
	cp := a.Fund.Checkpoint()
	if cp.LastFundingDate != nil {
		if earliest := cp.LastFundingDate.Add(24 * time.Hour); earliest.After(from) {
			from = earliest
		}
	}
	return a.Broker.NextFundingTime(from)
}

// waitUntil sleeps in poll-sized slices until the deadline passes or the
// context is cancelled.
func (a *Agent) waitUntil(ctx context.Context, deadline time.Time) error {
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.Poll):
		}
	}
	return nil
}

// RunCycle performs one funding cycle at the given time. It returns nil when
// the cycle was a no-op (nothing to fund today). The checkpoint is advanced
// only after every planned order was submitted; a failure partway through
// leaves it untouched so the next cycle recomputes from elapsed days.
func (a *Agent) RunCycle(now time.Time) (*model.CycleRecord, error) {
	acct, err := a.Broker.Account()
	if err != nil {
		return nil, err
	}
	a.log.Info().
		Float64("equity", acct.Equity).
		Float64("cash", acct.Cash).
		Float64("buying_power", acct.BuyingPower).
		Msg("account snapshot")

	funding, err := a.Fund.ComputeFunding(acct, now)
	if err != nil {
		return nil, err
	}
	a.log.Info().
		Float64("daily", funding.Daily).
		Float64("today", funding.Today).
		Int64("days_elapsed", funding.DaysElapsed).
		Int64("days_remaining", funding.DaysRemaining).
		Msg("funding computed")

	if funding.Today <= 0 {
		a.log.Info().Msg("nothing to fund today")
		return nil, nil
	}

	positions, err := a.Broker.Positions()
	if err != nil {
		return nil, err
	}

	symbols, equities, prices, ideal := a.planningVectors(positions)
	plan, _ := allocator.BuildPlan(equities, prices, ideal, funding.Today)
	a.log.Info().Int("orders", len(plan)).Float64("total", plan.Total()).Msg("purchase plan built")

	orders := make([]model.OrderRecord, 0, len(plan))
	for _, sel := range plan {
		order, err := a.Broker.SubmitBuy(symbols[sel.Index], prices[sel.Index], sel.Amount)
		if err != nil {
			// Fail fast: already-submitted orders stand, the checkpoint is
			// not advanced, and the next cycle self-corrects.
			return nil, fmt.Errorf("submit order for %s: %w", symbols[sel.Index], err)
		}
		orders = append(orders, order)
	}

	if err := a.Fund.MarkFunded(now); err != nil {
		return nil, err
	}

	return &model.CycleRecord{
		Time:          now,
		Equity:        acct.Equity,
		Cash:          acct.Cash,
		BuyingPower:   acct.BuyingPower,
		DailyFunding:  funding.Daily,
		FundingToday:  funding.Today,
		DaysElapsed:   funding.DaysElapsed,
		DaysRemaining: funding.DaysRemaining,
		Orders:        orders,
	}, nil
}

// planningVectors builds the index-aligned vectors for one planning cycle.
// Positions without a usable price are dropped: they cannot be purchased and
// a zero price would never consume budget.
func (a *Agent) planningVectors(positions []model.Position) (symbols []string, equities, prices, ideal []float64) {
	cp := a.Fund.Checkpoint()
	for _, p := range positions {
		if p.CurrentPrice <= 0 {
			a.log.Warn().Str("symbol", p.Symbol).Msg("skipping position without a price")
			continue
		}
		symbols = append(symbols, p.Symbol)
		equities = append(equities, p.MarketValue)
		prices = append(prices, p.CurrentPrice)
		ideal = append(ideal, cp.IdealAllocation(p.Symbol))
	}
	return symbols, equities, prices, ideal
}

// report persists and broadcasts a completed cycle. Failures here are logged
// but do not abort the loop; the funding state is already consistent.
func (a *Agent) report(ctx context.Context, rec *model.CycleRecord) {
	if err := a.Recorder.RecordCycle(rec); err != nil {
		a.log.Error().Err(err).Msg("record cycle")
	}
	if a.Notifier != nil && a.Notifier.Enabled() {
		if err := a.Notifier.SendWithRetry(ctx, notifier.FormatCycleReport(rec), 3); err != nil {
			a.log.Error().Err(err).Msg("send cycle report")
		}
	}
}

// HandleCommand processes a user command and returns a reply.
func (a *Agent) HandleCommand(command string) string {
	switch command {
	case "/status":
		acct, err := a.Broker.Account()
		if err != nil {
			return fmt.Sprintf("account lookup failed: %v", err)
		}
		return notifier.FormatAccountStatus(acct)
	case "/checkpoint":
		if !a.Fund.Initialized() {
			return "No checkpoint yet."
		}
		return notifier.FormatCheckpoint(a.Fund.Checkpoint())
	default:
		return "Commands:\n• /status\n• /checkpoint"
	}
}
