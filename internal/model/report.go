package model

import "time"

// DrawdownResult describes how far the latest close sits below the period high.
type DrawdownResult struct {
	PeakPrice    float64
	CurrentPrice float64
	DrawdownPct  float64 // <= 0
}

// BuySignal is a drawdown-tier accumulation label.
type BuySignal int

const (
	SignalNone BuySignal = iota
	SignalTier1
	SignalTier2
	SignalTier3
)

var signalLabels = map[BuySignal]string{
	SignalNone:  "hold/wait",
	SignalTier1: "1st buy: scout/initial position",
	SignalTier2: "2nd buy: increase position size",
	SignalTier3: "3rd buy: deep oversold accumulation",
}

// Label returns the text shown in reports.
func (s BuySignal) Label() string {
	if l, ok := signalLabels[s]; ok {
		return l
	}
	return signalLabels[SignalNone]
}

// IsBuy reports whether the signal is any buy tier.
func (s BuySignal) IsBuy() bool { return s != SignalNone }

func (s BuySignal) String() string {
	switch s {
	case SignalTier1:
		return "tier-1"
	case SignalTier2:
		return "tier-2"
	case SignalTier3:
		return "tier-3"
	default:
		return "none"
	}
}

// TrendPosition tells whether price trades above or below its moving average.
type TrendPosition string

const (
	PositionAbove   TrendPosition = "above"
	PositionBelow   TrendPosition = "below"
	PositionUnknown TrendPosition = "unknown"
)

// TrendAnalysis compares the current price with a moving average.
// MAValue and DiffPct are nil when the average is unavailable.
type TrendAnalysis struct {
	Window   int
	MAValue  *float64
	DiffPct  *float64
	Position TrendPosition
	Label    string
}

// Available reports whether a moving average was computed.
func (t TrendAnalysis) Available() bool { return t.MAValue != nil && t.DiffPct != nil }

// SymbolReport aggregates one symbol's analysis.
type SymbolReport struct {
	Symbol         string
	Samples        int
	Drawdown       DrawdownResult
	MaxDrawdownPct float64
	Signal         BuySignal
	Trend          *TrendAnalysis // nil when trend analysis is not enabled
}

// SentimentRating buckets the Fear & Greed score.
type SentimentRating string

const (
	RatingExtremeFear  SentimentRating = "extreme fear"
	RatingFear         SentimentRating = "fear"
	RatingNeutral      SentimentRating = "neutral"
	RatingGreed        SentimentRating = "greed"
	RatingExtremeGreed SentimentRating = "extreme greed"
	RatingUnknown      SentimentRating = "unknown"
)

// RatingForScore maps a 0-100 score onto its rating bucket.
func RatingForScore(score float64) SentimentRating {
	switch {
	case score < 0 || score > 100:
		return RatingUnknown
	case score < 25:
		return RatingExtremeFear
	case score < 45:
		return RatingFear
	case score <= 55:
		return RatingNeutral
	case score <= 75:
		return RatingGreed
	default:
		return RatingExtremeGreed
	}
}

// MarketSentiment is the Fear & Greed snapshot. Score is nil when the
// provider failed, in which case Error describes why.
type MarketSentiment struct {
	Score         *float64
	Rating        SentimentRating
	PreviousClose *float64
	PreviousWeek  *float64
	Error         string
}

// Available reports whether a score was fetched.
func (s MarketSentiment) Available() bool { return s.Score != nil }

// DailyReport is the assembled output of one collection run.
type DailyReport struct {
	Period      Period
	GeneratedAt time.Time
	Sentiment   MarketSentiment
	Symbols     []SymbolReport
}

// BuySignals returns the symbols carrying any buy tier.
func (r *DailyReport) BuySignals() []SymbolReport {
	var out []SymbolReport
	for _, s := range r.Symbols {
		if s.Signal.IsBuy() {
			out = append(out, s)
		}
	}
	return out
}

// DeliveryResult is what the chat transport reports back.
type DeliveryResult struct {
	OK        bool
	MessageID string
	Error     string
}
