package config

import (
	"log/slog"
	"time"

	"github.com/rickgao/narrative-watchlists/internal/model"
)

// Config is the root configuration for a watchlist run.
type Config struct {
	API       APIConfig        `yaml:"api"`
	RateLimit RateLimitConfig  `yaml:"rate_limit"`
	Run       RunConfig        `yaml:"run"`
	Exchanges []ExchangeConfig `yaml:"exchanges"`
	Target    TargetConfig     `yaml:"target"`
	Output    OutputConfig     `yaml:"output"`
	Log       LogConfig        `yaml:"log"`
	Metrics   MetricsConfig    `yaml:"metrics"`
}

// APIConfig holds CoinGecko API settings.
type APIConfig struct {
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"` // sent as x-cg-demo-api-key
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      *int          `yaml:"max_retries"`      // retries after HTTP 429; nil means default, 0 disables
	ThrottleBackoff time.Duration `yaml:"throttle_backoff"` // first 429 delay, doubles per retry
}

// RateLimitConfig holds the client-side sliding window.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	Period      time.Duration `yaml:"period"`
}

// RunConfig holds per-run limits. CLI flags override these.
type RunConfig struct {
	CategoryLimit int  `yaml:"category_limit"`
	MaxCoins      int  `yaml:"max_coins"` // per category
	Combined      bool `yaml:"combined"`  // one file per exchange instead of one per category
	PageSize      int  `yaml:"page_size"` // per_page for /coins/markets
	IndexSize     int  `yaml:"index_size"`
}

// ExchangeConfig identifies an exchange to build watchlists for.
type ExchangeConfig struct {
	APIID string `yaml:"api_id"`
	Name  string `yaml:"name"`
}

// TargetConfig is the quote asset tickers are filtered to.
type TargetConfig struct {
	ID     string `yaml:"id"`
	Symbol string `yaml:"symbol"`
}

// OutputConfig holds output locations.
type OutputConfig struct {
	Dir      string `yaml:"dir"`       // per-category and combined watchlists
	IndexDir string `yaml:"index_dir"` // index files
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// MetricsConfig holds Prometheus textfile export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // empty disables export
}

// Retries returns the configured 429 retry count, or the default when unset.
func (a APIConfig) Retries() int {
	if a.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *a.MaxRetries
}

// ExchangeModels returns the configured exchanges in order.
func (c *Config) ExchangeModels() []model.Exchange {
	out := make([]model.Exchange, 0, len(c.Exchanges))
	for _, e := range c.Exchanges {
		out = append(out, model.Exchange{APIID: e.APIID, Name: e.Name})
	}
	return out
}

// TargetModel returns the configured quote asset.
func (c *Config) TargetModel() model.Target {
	return model.Target{ID: c.Target.ID, Symbol: c.Target.Symbol}
}

// SlogLevel maps Level to a slog.Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
