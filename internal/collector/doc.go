// Package collector implements the watchlist run.
//
// A run:
//   - Fetches the top categories by market cap
//   - Fetches member coins for every category
//   - For each exchange, fetches its target-quoted tickers, groups them by
//     category and derives an index expression per category
//   - Writes per-category (or combined) watchlists plus an index file
//
// Everything runs sequentially; the API client's limiter paces requests.
package collector
