package agent

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/fund"
	"PortfolioSentinel/internal/model"
	"PortfolioSentinel/internal/recorder"
)

// fakeBroker is an in-memory Broker for exercising the agent without the
// network.
type fakeBroker struct {
	acct      model.AccountSnapshot
	positions []model.Position
	next      time.Time

	failAfter int // fail submissions once this many succeeded; -1 never fails
	submitted []model.OrderRecord
}

func (f *fakeBroker) Account() (model.AccountSnapshot, error) { return f.acct, nil }

func (f *fakeBroker) Positions() ([]model.Position, error) { return f.positions, nil }

func (f *fakeBroker) NextFundingTime(_ time.Time) (time.Time, error) { return f.next, nil }

func (f *fakeBroker) SubmitBuy(symbol string, refPrice, dollars float64) (model.OrderRecord, error) {
	if f.failAfter >= 0 && len(f.submitted) >= f.failAfter {
		return model.OrderRecord{}, errors.New("submission rejected")
	}
	rec := model.OrderRecord{
		OrderID:    "fake",
		Symbol:     symbol,
		Amount:     dollars,
		LimitPrice: refPrice,
		Qty:        1,
	}
	f.submitted = append(f.submitted, rec)
	return rec, nil
}

func newTestAgent(t *testing.T, b *fakeBroker) *Agent {
	t.Helper()
	fm, err := fund.NewManager(filepath.Join(t.TempDir(), "checkpoint.json"))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return New(b, fm, recorder.NewNoopRecorder(), nil, 1.0, 100, time.Millisecond, zerolog.Nop())
}

func TestEnsureCheckpoint_SamplesLivePortfolio(t *testing.T) {
	b := &fakeBroker{
		positions: []model.Position{
			{Symbol: "VTI", MarketValue: 300, CurrentPrice: 3},
			{Symbol: "BND", MarketValue: 700, CurrentPrice: 3},
		},
		failAfter: -1,
	}
	a := newTestAgent(t, b)
	now := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

	if err := a.ensureCheckpoint(now); err != nil {
		t.Fatalf("ensure checkpoint: %v", err)
	}
	if !a.Fund.Initialized() {
		t.Fatal("expected initialized fund manager")
	}
	cp := a.Fund.Checkpoint()
	if cp.IdealAllocations["VTI"] != 0.3 || cp.IdealAllocations["BND"] != 0.7 {
		t.Errorf("unexpected sampled allocation: %v", cp.IdealAllocations)
	}
}

func TestRunCycle_SubmitsPlanAndAdvancesCheckpoint(t *testing.T) {
	b := &fakeBroker{
		acct: model.AccountSnapshot{Equity: 2000, Cash: 1000, BuyingPower: 1000},
		positions: []model.Position{
			{Symbol: "VTI", MarketValue: 300, CurrentPrice: 3},
			{Symbol: "BND", MarketValue: 700, CurrentPrice: 3},
		},
		failAfter: -1,
	}
	a := newTestAgent(t, b)
	now := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	if err := a.ensureCheckpoint(now); err != nil {
		t.Fatalf("ensure checkpoint: %v", err)
	}

	// Invested 1000 of 2000 at ratio 1.0 over 100 days: 10 dollars today,
	// which covers three 3-dollar purchases.
	rec, err := a.RunCycle(now)
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a cycle record")
	}
	if len(rec.Orders) != 3 {
		t.Errorf("expected 3 orders, got %d", len(rec.Orders))
	}
	total := 0.0
	for _, o := range rec.Orders {
		total += o.Amount
	}
	if total > rec.FundingToday {
		t.Errorf("orders total %v exceeds today's funding %v", total, rec.FundingToday)
	}

	cp := a.Fund.Checkpoint()
	if cp.LastFundingDate == nil || !cp.LastFundingDate.Equal(now) {
		t.Errorf("checkpoint not advanced: %v", cp.LastFundingDate)
	}
}

func TestRunCycle_EmptyPlanStillCompletes(t *testing.T) {
	// Funding is positive but below every price: the plan is empty and the
	// cycle still counts as funded.
	b := &fakeBroker{
		acct: model.AccountSnapshot{Equity: 2000, Cash: 1000, BuyingPower: 1000},
		positions: []model.Position{
			{Symbol: "VTI", MarketValue: 300, CurrentPrice: 500},
			{Symbol: "BND", MarketValue: 700, CurrentPrice: 500},
		},
		failAfter: -1,
	}
	a := newTestAgent(t, b)
	now := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	if err := a.ensureCheckpoint(now); err != nil {
		t.Fatalf("ensure checkpoint: %v", err)
	}

	rec, err := a.RunCycle(now)
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if rec == nil || len(rec.Orders) != 0 {
		t.Fatalf("expected completed cycle with no orders, got %+v", rec)
	}
	if cp := a.Fund.Checkpoint(); cp.LastFundingDate == nil {
		t.Error("checkpoint should advance even for an empty plan")
	}
}

func TestRunCycle_NoopWhenAlreadyFundedToday(t *testing.T) {
	b := &fakeBroker{
		acct: model.AccountSnapshot{Equity: 2000, Cash: 1000, BuyingPower: 1000},
		positions: []model.Position{
			{Symbol: "VTI", MarketValue: 1000, CurrentPrice: 3},
		},
		failAfter: -1,
	}
	a := newTestAgent(t, b)
	now := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	if err := a.ensureCheckpoint(now); err != nil {
		t.Fatalf("ensure checkpoint: %v", err)
	}
	if err := a.Fund.MarkFunded(now.Add(-time.Hour)); err != nil {
		t.Fatalf("mark funded: %v", err)
	}

	rec, err := a.RunCycle(now)
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if rec != nil {
		t.Errorf("expected no-op cycle, got %+v", rec)
	}
	if len(b.submitted) != 0 {
		t.Errorf("no orders expected, got %d", len(b.submitted))
	}
}

func TestRunCycle_FailFastLeavesCheckpointUntouched(t *testing.T) {
	b := &fakeBroker{
		acct: model.AccountSnapshot{Equity: 2000, Cash: 1000, BuyingPower: 1000},
		positions: []model.Position{
			{Symbol: "VTI", MarketValue: 300, CurrentPrice: 3},
			{Symbol: "BND", MarketValue: 700, CurrentPrice: 3},
		},
		failAfter: 1,
	}
	a := newTestAgent(t, b)
	now := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	if err := a.ensureCheckpoint(now); err != nil {
		t.Fatalf("ensure checkpoint: %v", err)
	}

	_, err := a.RunCycle(now)
	if err == nil {
		t.Fatal("expected submission failure to propagate")
	}
	if len(b.submitted) != 1 {
		t.Errorf("expected exactly one submitted order before the failure, got %d", len(b.submitted))
	}
	if cp := a.Fund.Checkpoint(); cp.LastFundingDate != nil {
		t.Error("checkpoint must not advance after a partial execution")
	}
}

func TestPlanningVectors_SkipsUnpricedPositions(t *testing.T) {
	b := &fakeBroker{
		positions: []model.Position{
			{Symbol: "VTI", MarketValue: 500, CurrentPrice: 10},
			{Symbol: "HALTED", MarketValue: 500, CurrentPrice: 0},
		},
		failAfter: -1,
	}
	a := newTestAgent(t, b)
	now := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	if err := a.ensureCheckpoint(now); err != nil {
		t.Fatalf("ensure checkpoint: %v", err)
	}

	symbols, equities, prices, ideal := a.planningVectors(b.positions)
	if len(symbols) != 1 || symbols[0] != "VTI" {
		t.Fatalf("expected only VTI, got %v", symbols)
	}
	if len(equities) != 1 || len(prices) != 1 || len(ideal) != 1 {
		t.Errorf("vector lengths out of step: %d %d %d", len(equities), len(prices), len(ideal))
	}
	if ideal[0] != 0.5 {
		t.Errorf("expected ideal 0.5 for VTI, got %v", ideal[0])
	}
}
