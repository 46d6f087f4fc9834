package report

import (
	"time"

	"DrawdownSentinel/internal/calculator"
	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/strategy"
)

// AnalyzeSymbol runs the drawdown and signal analysis over closes. When
// trendCloses is non-nil the moving-average trend is computed from it as well.
// It returns false when closes holds no finite price.
func AnalyzeSymbol(symbol string, closes, trendCloses []float64, trendWindow int) (model.SymbolReport, bool) {
	if !calculator.HasValid(closes) {
		return model.SymbolReport{}, false
	}

	dd := calculator.AnalyzeDrawdown(closes)
	rep := model.SymbolReport{
		Symbol:         symbol,
		Samples:        len(closes),
		Drawdown:       dd,
		MaxDrawdownPct: calculator.MaximumDrawdown(closes),
		Signal:         strategy.Classify(dd.DrawdownPct),
	}

	if trendCloses != nil {
		tr := calculator.AnalyzeTrend(dd.CurrentPrice, calculator.MovingAverage(trendCloses, trendWindow))
		tr.Window = trendWindow
		rep.Trend = &tr
	}
	return rep, true
}

// Assemble builds the daily report. Symbols are emitted in watchlist order;
// those without an entry in analyses are omitted.
func Assemble(period model.Period, generatedAt time.Time, sentiment model.MarketSentiment,
	watchlist []string, analyses map[string]model.SymbolReport) *model.DailyReport {

	symbols := make([]model.SymbolReport, 0, len(analyses))
	seen := make(map[string]bool, len(watchlist))
	for _, sym := range watchlist {
		if seen[sym] {
			continue
		}
		seen[sym] = true
		if a, ok := analyses[sym]; ok {
			if a.Symbol == "" {
				a.Symbol = sym
			}
			symbols = append(symbols, a)
		}
	}

	return &model.DailyReport{
		Period:      period,
		GeneratedAt: generatedAt,
		Sentiment:   sentiment,
		Symbols:     symbols,
	}
}
