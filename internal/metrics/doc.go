// Package metrics provides Prometheus metrics for a watchlist run.
//
// Key metrics:
//   - API request counts and latencies by endpoint and status code
//   - Throttled (HTTP 429) responses
//   - Categories fetched, tickers listed and watchlisted per exchange
//   - Watchlist files written
//
// A run is a short-lived CLI process, so metrics are exported by writing the
// registry to a node_exporter textfile instead of serving /metrics.
package metrics
