package calculator

import (
	"errors"
	"math"
)

// DefaultMAWindow is the long-term trend window in trading days.
const DefaultMAWindow = 200

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MovingAverage returns the mean of the last window prices, or nil when the
// series is too short or the mean is not a finite number.
func MovingAverage(prices []float64, window int) *float64 {
	ma, err := CalculateSMA(prices, window)
	if err != nil || math.IsNaN(ma) || math.IsInf(ma, 0) {
		return nil
	}
	return &ma
}
