// Package watchlist joins category membership with exchange listings.
//
// The pipeline for one exchange is:
//
//	tickers  --BuildTickerDict-->  coin ID -> "BINANCE:BTCUSDT"
//	coins    --Categorize------->  category name -> ordered ticker strings
//	grouped  --IndexExpressions->  category name -> "(A*B*...)^(1/N)"
//
// Category and coin order from the API is preserved throughout.
package watchlist
