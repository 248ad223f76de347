package config

import (
	"os"
	"time"

	"github.com/rickgao/narrative-watchlists/internal/model"
)

// EnvAPIKey is read when the config does not set api.api_key.
const EnvAPIKey = "COINGECKO_API_KEY"

// Default values for optional configuration fields.
const (
	DefaultBaseURL         = "https://api.coingecko.com/api/v3"
	DefaultAPITimeout      = 30 * time.Second
	DefaultMaxRetries      = 5
	DefaultThrottleBackoff = 10 * time.Second
	DefaultMaxRequests     = 1
	DefaultRatePeriod      = 2 * time.Second
	DefaultCategoryLimit   = 500
	DefaultMaxCoins        = 1000
	DefaultPageSize        = 250
	DefaultIndexSize       = 10
	DefaultOutputDir       = "Watchlists"
	DefaultIndexDir        = "."
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.APIKey == "" {
		c.API.APIKey = os.Getenv(EnvAPIKey)
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == nil {
		retries := DefaultMaxRetries
		c.API.MaxRetries = &retries
	}
	if c.API.ThrottleBackoff == 0 {
		c.API.ThrottleBackoff = DefaultThrottleBackoff
	}

	// Rate limit defaults
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = DefaultMaxRequests
	}
	if c.RateLimit.Period == 0 {
		c.RateLimit.Period = DefaultRatePeriod
	}

	// Run defaults
	if c.Run.CategoryLimit == 0 {
		c.Run.CategoryLimit = DefaultCategoryLimit
	}
	if c.Run.MaxCoins == 0 {
		c.Run.MaxCoins = DefaultMaxCoins
	}
	if c.Run.PageSize == 0 {
		c.Run.PageSize = DefaultPageSize
	}
	if c.Run.IndexSize == 0 {
		c.Run.IndexSize = DefaultIndexSize
	}

	// Exchange and target defaults
	if len(c.Exchanges) == 0 {
		for _, e := range model.DefaultExchanges() {
			c.Exchanges = append(c.Exchanges, ExchangeConfig{APIID: e.APIID, Name: e.Name})
		}
	}
	if c.Target.ID == "" && c.Target.Symbol == "" {
		t := model.DefaultTarget()
		c.Target = TargetConfig{ID: t.ID, Symbol: t.Symbol}
	}

	// Output defaults
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Output.IndexDir == "" {
		c.Output.IndexDir = DefaultIndexDir
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
