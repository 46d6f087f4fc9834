package calculator

import (
	"math"

	"DrawdownSentinel/internal/model"
)

// AnalyzeDrawdown compares the latest close with the highest close of the series.
// Non-finite prices are ignored; an empty or all-invalid series yields the zero result.
func AnalyzeDrawdown(prices []float64) model.DrawdownResult {
	valid := finite(prices)
	if len(valid) == 0 {
		return model.DrawdownResult{}
	}

	peak := math.Inf(-1)
	for _, p := range valid {
		if p > peak {
			peak = p
		}
	}
	current := valid[len(valid)-1]

	res := model.DrawdownResult{PeakPrice: peak, CurrentPrice: current}
	if peak > 0 {
		res.DrawdownPct = (current - peak) / peak * 100
	}
	return res
}

// MaximumDrawdown returns the worst decline from a running high observed at any
// point of the series, as a non-positive percentage.
func MaximumDrawdown(prices []float64) float64 {
	valid := finite(prices)
	if len(valid) == 0 {
		return 0
	}

	mdd := 0.0
	runMax := math.Inf(-1)
	for _, p := range valid {
		if p > runMax {
			runMax = p
		}
		if runMax <= 0 {
			continue
		}
		if dd := (p - runMax) / runMax * 100; dd < mdd {
			mdd = dd
		}
	}
	return mdd
}

// HasValid reports whether prices contains at least one finite value.
func HasValid(prices []float64) bool {
	for _, p := range prices {
		if !math.IsNaN(p) && !math.IsInf(p, 0) {
			return true
		}
	}
	return false
}

func finite(prices []float64) []float64 {
	out := make([]float64, 0, len(prices))
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}
