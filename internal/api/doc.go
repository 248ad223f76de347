// Package api provides the CoinGecko REST client.
//
// REST endpoint:
//   - Demo/public: https://api.coingecko.com/api/v3
//
// Endpoints used:
//   - GET /coins/categories            narrative categories, market-cap order
//   - GET /coins/markets               coins per category, paged by page/per_page
//   - GET /exchanges/{id}/tickers      exchange listings, paged via the Link header
//
// Every request waits on the configured Limiter. HTTP 429 is retried with
// exponential backoff up to a fixed number of attempts; transport failures
// surface as ErrUnavailable so callers can stop paging and keep what they have.
package api
