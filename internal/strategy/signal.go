package strategy

import "DrawdownSentinel/internal/model"

// Tiers maps drawdown depth to a buy signal, most severe first.
// A drawdown at or below MaxDrawdown selects the tier.
var Tiers = []struct {
	MaxDrawdown float64
	Signal      model.BuySignal
}{
	{-30, model.SignalTier3},
	{-20, model.SignalTier2},
	{-10, model.SignalTier1},
}

// Classify maps a drawdown percentage to its buy signal. NaN maps to SignalNone.
func Classify(drawdownPct float64) model.BuySignal {
	for _, t := range Tiers {
		if drawdownPct <= t.MaxDrawdown {
			return t.Signal
		}
	}
	return model.SignalNone
}
