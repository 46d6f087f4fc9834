package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawdownSentinel/internal/model"
)

const chartPayload = `{"chart":{"result":[{"timestamp":[1700000300,1700000000,1700000100,1700000200],
"indicators":{"quote":[{"open":[4,1,null,3],"high":[4,1,null,3],"low":[4,1,null,3],
"close":[4.5,1.5,null,3.5],"volume":[40,10,null,30]}]}}],"error":null}}`

func newYahooTest(t *testing.T, h http.HandlerFunc) *YahooFetcher {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("", 0)
	f.BaseURL = srv.URL
	return f
}

func TestYahooFetchHistory(t *testing.T) {
	var gotPath, gotQuery string
	f := newYahooTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(chartPayload))
	})

	bars, err := f.FetchHistory(context.Background(), "TSLA", model.Period6mo)
	require.NoError(t, err)
	assert.Equal(t, "/TSLA", gotPath)
	assert.Equal(t, "interval=1d&range=6mo", gotQuery)

	// null bar skipped, sorted chronologically
	require.Len(t, bars, 3)
	assert.Equal(t, []float64{1.5, 3.5, 4.5}, model.Closes(bars))
	assert.Equal(t, 10.0, bars[0].Volume)
}

func TestYahooSymbolMap(t *testing.T) {
	var gotPath string
	f := newYahooTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(chartPayload))
	})
	_, err := f.FetchHistory(context.Background(), "SPX", model.Period1y)
	require.NoError(t, err)
	assert.Equal(t, "/^GSPC", gotPath)
}

func TestYahooFetchHistory_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, "delisted"},
		{"bad status", http.StatusBadGateway, `bad gateway`, "status 502"},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, "no data"},
		{"garbage", http.StatusOK, `{{`, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newYahooTest(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := f.FetchHistory(context.Background(), "ZZZZ", model.Period1y)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestYahooRateLimiterHonoursContext(t *testing.T) {
	f := newYahooTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartPayload))
	})
	f.Limiter = NewYahooFetcher("", 1).Limiter

	_, err := f.FetchHistory(context.Background(), "TSLA", model.Period1y)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.FetchHistory(ctx, "TSLA", model.Period1y)
	assert.Error(t, err)
}
