package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawdownSentinel/internal/model"
)

func fptr(v float64) *float64 { return &v }

func sampleReport(at time.Time, tslaCurrent float64) *model.DailyReport {
	return &model.DailyReport{
		Period:      model.Period1y,
		GeneratedAt: at,
		Sentiment:   model.MarketSentiment{Score: fptr(32), Rating: model.RatingFear},
		Symbols: []model.SymbolReport{
			{
				Symbol:   "TSLA",
				Samples:  251,
				Drawdown: model.DrawdownResult{PeakPrice: 500, CurrentPrice: tslaCurrent, DrawdownPct: (tslaCurrent - 500) / 5},
				Signal:   model.SignalTier2,
				Trend: &model.TrendAnalysis{
					Window: 200, MAValue: fptr(380), DiffPct: fptr(5.26), Position: model.PositionAbove,
				},
			},
			{
				Symbol:   "SCHD",
				Samples:  251,
				Drawdown: model.DrawdownResult{PeakPrice: 30, CurrentPrice: 28.5, DrawdownPct: -5},
				Signal:   model.SignalNone,
			},
		},
	}
}

func TestSQLiteRecorder_RecordAndHistory(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "db", "sentinel.db"))
	require.NoError(t, err)
	defer r.Close()

	day1 := time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	require.NoError(t, r.RecordReport(sampleReport(day1, 400), model.DeliveryResult{OK: true, MessageID: "11"}))
	require.NoError(t, r.RecordReport(sampleReport(day2, 350), model.DeliveryResult{OK: false, Error: "blocked"}))

	var runs int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM report_runs`).Scan(&runs))
	assert.Equal(t, 2, runs)

	hist, err := r.History("TSLA", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 350.0, hist[0].CurrentPrice, "newest first")
	assert.Equal(t, day2.Unix(), hist[0].RecordedAt.Unix())
	assert.Equal(t, "tier-2", hist[0].Signal)
	require.NotNil(t, hist[0].MAValue)
	assert.Equal(t, 380.0, *hist[0].MAValue)

	schd, err := r.History("SCHD", 1)
	require.NoError(t, err)
	require.Len(t, schd, 1)
	assert.Nil(t, schd[0].MAValue)
	assert.Equal(t, "none", schd[0].Signal)

	none, err := r.History("SCHG", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteRecorder_NullSentiment(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "sentinel.db"))
	require.NoError(t, err)
	defer r.Close()

	rep := &model.DailyReport{
		Period:      model.Period6mo,
		GeneratedAt: time.Now(),
		Sentiment:   model.MarketSentiment{Rating: model.RatingUnknown, Error: "timeout"},
	}
	require.NoError(t, r.RecordReport(rep, model.DeliveryResult{OK: true}))

	var score *float64
	var fgErr string
	require.NoError(t, r.db.QueryRow(`SELECT fg_score, fg_error FROM report_runs`).Scan(&score, &fgErr))
	assert.Nil(t, score)
	assert.Equal(t, "timeout", fgErr)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordReport(&model.DailyReport{}, model.DeliveryResult{}))
	hist, err := r.History("TSLA", 3)
	assert.NoError(t, err)
	assert.Nil(t, hist)
	assert.NoError(t, r.Close())
}
