package broker

import (
	"time"

	"PortfolioSentinel/internal/model"
)

// Broker is the brokerage surface the agent operates against. The planner
// and scheduler never touch the network themselves; everything they need is
// materialized through this interface first.
type Broker interface {
	// Account returns the account figures for "now".
	Account() (model.AccountSnapshot, error)

	// Positions returns the held assets. The slice order defines the index
	// correspondence used for one planning cycle and is stable within it.
	Positions() ([]model.Position, error)

	// NextFundingTime returns the earliest eligible funding timestamp at or
	// after from: the next trading session's open plus a fixed offset.
	NextFundingTime(from time.Time) (time.Time, error)

	// SubmitBuy places a day-scoped limit buy order for dollars worth of
	// symbol, priced slightly below refPrice.
	SubmitBuy(symbol string, refPrice, dollars float64) (model.OrderRecord, error)
}
