package api

// APICategory represents an entry from GET /coins/categories.
type APICategory struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	MarketCap          float64  `json:"market_cap"`
	MarketCapChange24h float64  `json:"market_cap_change_24h"`
	Content            string   `json:"content"`
	Top3Coins          []string `json:"top_3_coins"`
	Volume24h          float64  `json:"volume_24h"`
	UpdatedAt          string   `json:"updated_at"`
}

// APICoinMarket represents an entry from GET /coins/markets.
type APICoinMarket struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	CurrentPrice  float64 `json:"current_price"`
	MarketCap     float64 `json:"market_cap"`
	MarketCapRank *int    `json:"market_cap_rank"`
	TotalVolume   float64 `json:"total_volume"`
}

// ExchangeTickersResponse from GET /exchanges/{id}/tickers
type ExchangeTickersResponse struct {
	Name    string      `json:"name"`
	Tickers []APITicker `json:"tickers"`
}

// APITicker represents a trading pair from an exchange listing.
type APITicker struct {
	Base         string  `json:"base"`
	Target       string  `json:"target"`
	CoinID       string  `json:"coin_id"`
	TargetCoinID string  `json:"target_coin_id"`
	Last         float64 `json:"last"`
	Volume       float64 `json:"volume"`
	TradeURL     string  `json:"trade_url"`
	IsAnomaly    bool    `json:"is_anomaly"`
	IsStale      bool    `json:"is_stale"`
}

// GetCoinMarketsOptions configures a GetCoinMarkets request.
type GetCoinMarketsOptions struct {
	VsCurrency string // defaults to "usd"
	Category   string
	Order      string // defaults to "market_cap_desc"
	PerPage    int
	Page       int
}
