package calculator

import (
	"math"

	"DrawdownSentinel/internal/model"
)

const (
	TrendLabelUptrend      = "uptrend sustained"
	TrendLabelWeak         = "weak zone, caution warranted"
	TrendLabelInsufficient = "insufficient data"
)

// AnalyzeTrend classifies current against a moving average. A nil, non-positive
// or non-finite average yields the insufficient-data variant.
func AnalyzeTrend(current float64, ma *float64) model.TrendAnalysis {
	if ma == nil || *ma <= 0 || math.IsNaN(*ma) || math.IsInf(*ma, 0) {
		return model.TrendAnalysis{
			Position: model.PositionUnknown,
			Label:    TrendLabelInsufficient,
		}
	}

	maValue := *ma
	diff := (current - maValue) / maValue * 100

	t := model.TrendAnalysis{MAValue: &maValue, DiffPct: &diff}
	// diff == 0 counts as above.
	if diff >= 0 {
		t.Position = model.PositionAbove
		t.Label = TrendLabelUptrend
	} else {
		t.Position = model.PositionBelow
		t.Label = TrendLabelWeak
	}
	return t
}
