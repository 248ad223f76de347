package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "narratives"

// Metrics holds the collectors for one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	throttled  *prometheus.CounterVec
	categories prometheus.Gauge
	listed     *prometheus.GaugeVec
	grouped    *prometheus.GaugeVec
	files      *prometheus.CounterVec
	lastRun    prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "CoinGecko API requests by endpoint and HTTP status (\"error\" when no response).",
		}, []string{"endpoint", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "CoinGecko API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		throttled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_throttled_total",
			Help:      "HTTP 429 responses by endpoint.",
		}, []string{"endpoint"}),
		categories: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "categories",
			Help:      "Categories processed in the last run.",
		}),
		listed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exchange_tickers",
			Help:      "Tickers quoted in the target asset listed per exchange.",
		}, []string{"exchange"}),
		grouped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watchlist_tickers",
			Help:      "Ticker lines written across all categories per exchange.",
		}, []string{"exchange"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_written_total",
			Help:      "Watchlist files written by kind.",
		}, []string{"kind"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.throttled,
		m.categories,
		m.listed,
		m.grouped,
		m.files,
		m.lastRun,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one HTTP round trip. statusCode 0 means no response.
func (m *Metrics) ObserveRequest(endpoint string, statusCode int, d time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	m.requests.WithLabelValues(endpoint, code).Inc()
	m.latency.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveThrottle records an HTTP 429.
func (m *Metrics) ObserveThrottle(endpoint string) {
	m.throttled.WithLabelValues(endpoint).Inc()
}

// ObserveCategories records how many categories the run processes.
func (m *Metrics) ObserveCategories(n int) {
	m.categories.Set(float64(n))
}

// ObserveExchange records listed and watchlisted ticker counts.
func (m *Metrics) ObserveExchange(exchange string, listed, grouped int) {
	m.listed.WithLabelValues(exchange).Set(float64(listed))
	m.grouped.WithLabelValues(exchange).Set(float64(grouped))
}

// ObserveFileWritten counts a written file of the given kind.
func (m *Metrics) ObserveFileWritten(kind string) {
	m.files.WithLabelValues(kind).Inc()
}

// MarkRunComplete stamps the completion time.
func (m *Metrics) MarkRunComplete(t time.Time) {
	m.lastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes all metrics in text exposition format to path,
// atomically, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
