package fund

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"PortfolioSentinel/internal/model"
)

// Precondition violations signal a misconfigured finish date or account
// state. They are fatal for the current invocation, not recoverable.
var (
	ErrFinishDatePassed        = errors.New("finish date is not in the future")
	ErrInsufficientBuyingPower = errors.New("buying power below the daily funding rate")
)

// Funding is the scheduler's decision for one trading-day tick.
type Funding struct {
	Daily         float64
	Today         float64
	DaysElapsed   int64
	DaysRemaining int64
}

// Manager owns the single checkpoint for a run and implements the funding
// schedule over it. Load and save happen only at the boundaries: once at
// startup (or first-run initialization) and once after a fully submitted
// plan.
type Manager struct {
	mu       sync.Mutex
	cp       *model.Checkpoint
	filePath string
}

// NewManager loads the checkpoint from disk. A missing file leaves the
// manager uninitialized; the caller is expected to sample the live portfolio
// via Initialize before scheduling.
func NewManager(filePath string) (*Manager, error) {
	cp, err := LoadCheckpoint(filePath)
	if err != nil && !errors.Is(err, ErrNoCheckpoint) {
		return nil, err
	}
	return &Manager{cp: cp, filePath: filePath}, nil
}

// Initialized reports whether a checkpoint exists.
func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cp != nil
}

// Initialize samples the live portfolio into a fresh checkpoint: the ideal
// allocation becomes the portfolio's current fractional composition and the
// current market values are kept as reference equities. The checkpoint is
// persisted immediately.
func (m *Manager) Initialize(positions []model.Position, targetRatio float64, horizonDays int, now time.Time) error {
	total := 0.0
	for _, p := range positions {
		total += p.MarketValue
	}
	if total <= 0 {
		return fmt.Errorf("cannot sample ideal allocation from an empty portfolio")
	}

	reference := make(map[string]float64, len(positions))
	ideal := make(map[string]float64, len(positions))
	for _, p := range positions {
		reference[p.Symbol] = p.MarketValue
		ideal[p.Symbol] = p.MarketValue / total
	}

	cp := &model.Checkpoint{
		LastFundingDate:             nil,
		ReferenceEquities:           reference,
		IdealAllocations:            ideal,
		TargetInvestmentEquityRatio: targetRatio,
		FinishDate:                  now.AddDate(0, 0, horizonDays),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := SaveCheckpoint(m.filePath, cp); err != nil {
		return err
	}
	m.cp = cp
	return nil
}

// Checkpoint returns a deep copy of the current checkpoint. It panics when
// the manager is uninitialized; callers gate on Initialized first.
func (m *Manager) Checkpoint() model.Checkpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *m.cp
	cp.ReferenceEquities = copyMap(m.cp.ReferenceEquities)
	cp.IdealAllocations = copyMap(m.cp.IdealAllocations)
	if m.cp.LastFundingDate != nil {
		t := *m.cp.LastFundingDate
		cp.LastFundingDate = &t
	}
	return cp
}

// ComputeFunding decides how many dollars to invest today. The daily rate is
// the additional investment still needed to reach the target equity ratio,
// spread evenly over the whole days left until the finish date; the amount
// funded today scales with the whole days elapsed since the last funding
// (exactly one day's worth on the first cycle).
func (m *Manager) ComputeFunding(acct model.AccountSnapshot, now time.Time) (Funding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	daysRemaining := wholeDays(m.cp.FinishDate.Sub(now))
	if daysRemaining <= 0 {
		return Funding{}, fmt.Errorf("%w: %s", ErrFinishDatePassed, m.cp.FinishDate.Format(time.RFC3339))
	}

	additional := acct.Equity*m.cp.TargetInvestmentEquityRatio - acct.Invested()
	daily := additional / float64(daysRemaining)
	if daily < 0 {
		daily = 0
	}
	if acct.BuyingPower < daily {
		return Funding{}, fmt.Errorf("%w: have %.2f, need %.2f", ErrInsufficientBuyingPower, acct.BuyingPower, daily)
	}

	elapsed := int64(1)
	if m.cp.LastFundingDate != nil {
		elapsed = wholeDays(now.Sub(*m.cp.LastFundingDate))
	}

	return Funding{
		Daily:         daily,
		Today:         daily * float64(elapsed),
		DaysElapsed:   elapsed,
		DaysRemaining: daysRemaining,
	}, nil
}

// MarkFunded records a completed funding cycle and persists the checkpoint.
// This is the only mutation after initialization, and it happens only once
// the entire plan has been submitted.
func (m *Manager) MarkFunded(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cp.LastFundingDate = &now
	return SaveCheckpoint(m.filePath, m.cp)
}

func wholeDays(d time.Duration) int64 {
	return int64(d / (24 * time.Hour))
}

func copyMap(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
