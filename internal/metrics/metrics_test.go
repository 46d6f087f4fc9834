package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordReport(time.Now(), time.Now())
	m.RecordDelivery(true)
	m.RecordSymbolFailure("TSLA")
	m.RecordSentimentFailure()
}

func TestRecorders(t *testing.T) {
	m := New()
	start := time.Now()
	m.RecordReport(start, start.Add(2*time.Second))
	m.RecordDelivery(true)
	m.RecordDelivery(false)
	m.RecordDelivery(false)
	m.RecordSymbolFailure("SCHG")
	m.RecordSentimentFailure()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsBuilt))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SymbolFetchErrors.WithLabelValues("SCHG")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SentimentErrors))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordSymbolFailure("TSLA")
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `sentinel_symbol_fetch_errors_total{symbol="TSLA"} 1`)
}
