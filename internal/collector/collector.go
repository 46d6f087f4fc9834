package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"DrawdownSentinel/internal/calculator"
	"DrawdownSentinel/internal/metrics"
	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/report"
	"DrawdownSentinel/internal/sentiment"
)

// ExtendedPeriod is fetched when the requested period is too short for the
// moving-average window.
const ExtendedPeriod = model.Period1y

// MockFetcher returns controllable fixed data for development and testing.
// Symbols listed in Errors fail; symbols without Data return no bars.
type MockFetcher struct {
	mu     sync.Mutex
	Data   map[string][]model.OHLCV
	Long   map[string][]model.OHLCV // served for ExtendedPeriod when set
	Errors map[string]error
	Calls  []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol string, period model.Period) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, fmt.Sprintf("%s:%s", symbol, period))
	m.mu.Unlock()

	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	if period == ExtendedPeriod {
		if bars, ok := m.Long[symbol]; ok {
			return bars, nil
		}
	}
	return m.Data[symbol], nil
}

// MockBars builds daily bars from closing prices, oldest first.
func MockBars(closes ...float64) []model.OHLCV {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c * 0.999,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching and report assembly.
type Collector struct {
	Fetcher     Fetcher
	Sentiment   sentiment.Provider
	TrendWindow int
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, sp sentiment.Provider, trendWindow int, m *metrics.Metrics) *Collector {
	if trendWindow <= 0 {
		trendWindow = calculator.DefaultMAWindow
	}
	return &Collector{
		Fetcher:     fetcher,
		Sentiment:   sp,
		TrendWindow: trendWindow,
		Metrics:     m,
		Now:         time.Now,
	}
}

// Collect fetches sentiment and every watchlist symbol concurrently and
// assembles the report. Failed symbols are logged and left out; a failed
// sentiment fetch is carried as an error marker.
func (c *Collector) Collect(ctx context.Context, wl model.Watchlist, period model.Period) *model.DailyReport {
	started := c.Now()

	var g errgroup.Group
	var sent model.MarketSentiment
	results := make([]*model.SymbolReport, len(wl.Symbols))

	g.Go(func() error {
		sent = c.fetchSentiment(ctx)
		return nil
	})
	for i, sym := range wl.Symbols {
		g.Go(func() error {
			if rep, ok := c.collectSymbol(ctx, sym, period, wl.TrendEnabled(sym)); ok {
				results[i] = &rep
			}
			return nil
		})
	}
	g.Wait()

	analyses := make(map[string]model.SymbolReport, len(results))
	for _, r := range results {
		if r != nil {
			analyses[r.Symbol] = *r
		}
	}

	finished := c.Now()
	rep := report.Assemble(period, finished, sent, wl.Symbols, analyses)
	c.Metrics.RecordReport(started, finished)
	log.Infof("report assembled: %d/%d symbols, period %s", len(rep.Symbols), len(wl.Symbols), period)
	return rep
}

func (c *Collector) fetchSentiment(ctx context.Context) model.MarketSentiment {
	if c.Sentiment == nil {
		return model.MarketSentiment{Rating: model.RatingUnknown, Error: "sentiment provider not configured"}
	}
	s := c.Sentiment.Fetch(ctx)
	if !s.Available() {
		c.Metrics.RecordSentimentFailure()
		if s.Rating == "" {
			s.Rating = model.RatingUnknown
		}
		if s.Error == "" {
			s.Error = "no score returned"
		}
	}
	return s
}

func (c *Collector) collectSymbol(ctx context.Context, symbol string, period model.Period, trend bool) (model.SymbolReport, bool) {
	logger := log.WithField("symbol", symbol)

	bars, err := c.Fetcher.FetchHistory(ctx, symbol, period)
	if err != nil {
		logger.Warnf("fetch %s history failed: %v", period, err)
		c.Metrics.RecordSymbolFailure(symbol)
		return model.SymbolReport{}, false
	}
	if len(bars) == 0 {
		logger.Warnf("no %s history returned", period)
		c.Metrics.RecordSymbolFailure(symbol)
		return model.SymbolReport{}, false
	}
	closes := model.Closes(bars)

	var trendCloses []float64
	if trend {
		trendCloses = c.trendHistory(ctx, logger, symbol, period, closes)
	}

	rep, ok := report.AnalyzeSymbol(symbol, closes, trendCloses, c.TrendWindow)
	if !ok {
		logger.Warnf("no valid prices in %s history", period)
		c.Metrics.RecordSymbolFailure(symbol)
		return model.SymbolReport{}, false
	}
	logger.Infof("%.1f%% from peak (%.2f), signal %s", rep.Drawdown.DrawdownPct, rep.Drawdown.CurrentPrice, rep.Signal)
	return rep, true
}

// trendHistory returns closes long enough for the moving average when
// possible, falling back to ExtendedPeriod for short requested periods.
// The result is non-nil so the report always carries a trend section.
func (c *Collector) trendHistory(ctx context.Context, logger *log.Entry, symbol string,
	period model.Period, closes []float64) []float64 {

	if len(closes) >= c.TrendWindow || !period.Shorter(ExtendedPeriod) {
		return closes
	}
	bars, err := c.Fetcher.FetchHistory(ctx, symbol, ExtendedPeriod)
	if err != nil || len(bars) == 0 {
		logger.Warnf("extended %s history unavailable for MA%d: %v", ExtendedPeriod, c.TrendWindow, err)
		return closes
	}
	return model.Closes(bars)
}
