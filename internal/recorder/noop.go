package recorder

import "DrawdownSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReport(_ *model.DailyReport, _ model.DeliveryResult) error { return nil }
func (n *NoopRecorder) History(_ string, _ int) ([]SymbolSnapshot, error)             { return nil, nil }
func (n *NoopRecorder) Close() error                                                   { return nil }
