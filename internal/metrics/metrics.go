package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for report runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ReportsBuilt       prometheus.Counter
	Deliveries         *prometheus.CounterVec
	SymbolFetchErrors  *prometheus.CounterVec
	SentimentErrors    prometheus.Counter
	CollectDuration    prometheus.Histogram
	LastReportUnixTime prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ReportsBuilt: f.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_reports_built_total",
			Help: "Number of daily reports assembled",
		}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_report_deliveries_total",
			Help: "Report deliveries by result",
		}, []string{"result"}),
		SymbolFetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_symbol_fetch_errors_total",
			Help: "Price history fetches that produced no data",
		}, []string{"symbol"}),
		SentimentErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_sentiment_errors_total",
			Help: "Fear & Greed fetches that failed",
		}),
		CollectDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_collect_duration_seconds",
			Help:    "Time to collect and assemble one report",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		LastReportUnixTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "sentinel_last_report_timestamp_seconds",
			Help: "Unix time of the most recent assembled report",
		}),
	}
}

func (m *Metrics) RecordReport(started, finished time.Time) {
	if m == nil {
		return
	}
	m.ReportsBuilt.Inc()
	m.CollectDuration.Observe(finished.Sub(started).Seconds())
	m.LastReportUnixTime.Set(float64(finished.Unix()))
}

func (m *Metrics) RecordDelivery(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.Deliveries.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordSymbolFailure(symbol string) {
	if m == nil {
		return
	}
	m.SymbolFetchErrors.WithLabelValues(symbol).Inc()
}

func (m *Metrics) RecordSentimentFailure() {
	if m == nil {
		return
	}
	m.SentimentErrors.Inc()
}

// Handler serves /metrics and /health.
func (m *Metrics) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return r
}
