package recorder

import (
	"time"

	"DrawdownSentinel/internal/model"
)

// SymbolSnapshot is one stored per-symbol row of a past report.
type SymbolSnapshot struct {
	RecordedAt     time.Time
	Period         model.Period
	PeakPrice      float64
	CurrentPrice   float64
	DrawdownPct    float64
	MaxDrawdownPct float64
	Signal         string
	MAValue        *float64
	MADiffPct      *float64
}

// Recorder persists historical report data for later analysis.
type Recorder interface {
	RecordReport(rep *model.DailyReport, delivery model.DeliveryResult) error
	History(symbol string, limit int) ([]SymbolSnapshot, error)
	Close() error
}
