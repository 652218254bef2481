package model

import "time"

// AccountSnapshot holds the account figures for "now".
type AccountSnapshot struct {
	Equity      float64
	Cash        float64
	BuyingPower float64
}

// Invested is the portion of equity currently held as positions.
func (a AccountSnapshot) Invested() float64 {
	return a.Equity - a.Cash
}

// Position is one held asset as reported by the brokerage. Slice order of a
// positions snapshot defines the index correspondence for one planning cycle.
type Position struct {
	Symbol       string
	MarketValue  float64
	CurrentPrice float64
}

// OrderRecord describes one submitted buy order.
type OrderRecord struct {
	OrderID    string
	Symbol     string
	Amount     float64
	LimitPrice float64
	Qty        int64
}

// CycleRecord summarizes one completed funding cycle.
type CycleRecord struct {
	Time          time.Time
	Equity        float64
	Cash          float64
	BuyingPower   float64
	DailyFunding  float64
	FundingToday  float64
	DaysElapsed   int64
	DaysRemaining int64
	Orders        []OrderRecord
}
