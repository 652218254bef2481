package recorder

import "PortfolioSentinel/internal/model"

// Recorder persists funding history for later analysis.
type Recorder interface {
	RecordCycle(rec *model.CycleRecord) error
	RecordAccountSnapshot(acct model.AccountSnapshot) error
	Close() error
}
