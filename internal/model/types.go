package model

// -----------------------------------------------------------------------------
// Reference Types
// -----------------------------------------------------------------------------

// Category is a narrative grouping of coins (e.g. "Artificial Intelligence (AI)").
type Category struct {
	ID   string // Primary key (e.g., "artificial-intelligence")
	Name string // Display name, used as the watchlist section header
}

// Exchange is a statically configured venue whose tickers are listed.
type Exchange struct {
	APIID string // CoinGecko exchange ID (e.g., "binance", "bybit_spot")
	Name  string // Display name (e.g., "Bybit"), uppercased in ticker strings
}

// Target is the quote asset tickers are filtered to.
type Target struct {
	ID     string // CoinGecko coin ID used to query listings (e.g., "tether")
	Symbol string // Quote symbol tickers must match (e.g., "USDT")
}

// Ticker is a single trading pair listed on an exchange.
type Ticker struct {
	CoinID string // CoinGecko coin ID of the base asset
	Base   string // Base symbol (e.g., "BTC")
	Target string // Quote symbol (e.g., "USDT")
}

// -----------------------------------------------------------------------------
// Defaults
// -----------------------------------------------------------------------------

// DefaultExchanges are the venues watchlists are generated for.
func DefaultExchanges() []Exchange {
	return []Exchange{
		{APIID: "binance", Name: "Binance"},
		{APIID: "bybit_spot", Name: "Bybit"},
	}
}

// DefaultTarget is the USDT quote asset.
func DefaultTarget() Target {
	return Target{ID: "tether", Symbol: "USDT"}
}
