package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if c.API.Retries() < 0 {
		return errors.New("api.max_retries must be >= 0")
	}
	if c.API.ThrottleBackoff <= 0 {
		return errors.New("api.throttle_backoff must be positive")
	}

	if c.RateLimit.MaxRequests < 1 {
		return errors.New("rate_limit.max_requests must be >= 1")
	}
	if c.RateLimit.Period <= 0 {
		return errors.New("rate_limit.period must be positive")
	}

	// Zero is reachable only through CLI flags; applyDefaults replaces it.
	if c.Run.CategoryLimit < 0 {
		return errors.New("run.category_limit must be >= 0")
	}
	if c.Run.MaxCoins < 0 {
		return errors.New("run.max_coins must be >= 0")
	}
	if c.Run.PageSize < 1 || c.Run.PageSize > 250 {
		return fmt.Errorf("run.page_size must be between 1 and 250, got %d", c.Run.PageSize)
	}
	if c.Run.IndexSize < 1 {
		return errors.New("run.index_size must be >= 1")
	}

	if len(c.Exchanges) == 0 {
		return errors.New("at least one exchange is required")
	}
	for i, e := range c.Exchanges {
		if e.APIID == "" {
			return fmt.Errorf("exchanges[%d].api_id is required", i)
		}
		if e.Name == "" {
			return fmt.Errorf("exchanges[%d].name is required", i)
		}
	}

	if c.Target.ID == "" {
		return errors.New("target.id is required")
	}
	if c.Target.Symbol == "" {
		return errors.New("target.symbol is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}
