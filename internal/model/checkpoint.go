package model

import "time"

// Checkpoint is the persisted scheduling state. It is created on first run by
// sampling the live portfolio and afterwards only LastFundingDate changes.
type Checkpoint struct {
	LastFundingDate             *time.Time         `json:"last_funding_date"`
	ReferenceEquities           map[string]float64 `json:"reference_equities"`
	IdealAllocations            map[string]float64 `json:"ideal_allocations"`
	TargetInvestmentEquityRatio float64            `json:"target_investment_equity_ratio"`
	FinishDate                  time.Time          `json:"finish_date"`
}

// IdealAllocation returns the target fraction for a symbol, 0 for symbols
// that were not part of the sampled portfolio.
func (c *Checkpoint) IdealAllocation(symbol string) float64 {
	return c.IdealAllocations[symbol]
}
