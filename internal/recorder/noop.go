package recorder

import "PortfolioSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *model.CycleRecord) error              { return nil }
func (n *NoopRecorder) RecordAccountSnapshot(_ model.AccountSnapshot) error { return nil }
func (n *NoopRecorder) Close() error                                        { return nil }
