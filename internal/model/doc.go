// Package model defines shared data types used across the watchlist pipeline.
//
// Conventions:
//   - IDs: CoinGecko string identifiers (e.g. "bitcoin", "layer-1")
//   - Ticker strings: "{EXCHANGE}:{BASE}{TARGET}" (e.g. "BINANCE:BTCUSDT")
//   - Ordering: anything keyed by category uses OrderedMap so output follows
//     the API's market-cap ordering
package model
