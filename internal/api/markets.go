package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// GetCoinMarkets fetches a page of coin market data.
func (c *Client) GetCoinMarkets(ctx context.Context, opts GetCoinMarketsOptions) ([]APICoinMarket, error) {
	query := url.Values{}

	vs := opts.VsCurrency
	if vs == "" {
		vs = "usd"
	}
	query.Set("vs_currency", vs)

	if opts.Category != "" {
		query.Set("category", opts.Category)
	}

	order := opts.Order
	if order == "" {
		order = "market_cap_desc"
	}
	query.Set("order", order)

	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}

	var resp []APICoinMarket
	if _, err := c.get(ctx, "markets", "/coins/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get coin markets: %w", err)
	}

	return resp, nil
}

// FetchCoinsByCategory pages through /coins/markets collecting coin IDs for
// a category in market-cap order. It stops at maxCoins, on a short page, or
// when the API becomes unreachable, in which case the partial list is returned.
func (c *Client) FetchCoinsByCategory(ctx context.Context, categoryID string, maxCoins int) ([]string, error) {
	c.logger.Info("fetching coins for category", "category", categoryID)

	coins := make([]string, 0)
	opts := GetCoinMarketsOptions{
		Category: categoryID,
		PerPage:  c.pageSize,
		Page:     1,
	}

	for len(coins) < maxCoins {
		page, err := c.GetCoinMarkets(ctx, opts)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				c.logger.Warn("failed to fetch more coins",
					"category", categoryID,
					"page", opts.Page,
					"error", err,
				)
				break
			}
			return nil, fmt.Errorf("category %s page %d: %w", categoryID, opts.Page, err)
		}

		ids := CoinIDs(page)
		if remaining := maxCoins - len(coins); len(ids) > remaining {
			ids = ids[:remaining]
		}
		coins = append(coins, ids...)

		c.logger.Debug("fetched coins page",
			"category", categoryID,
			"page", opts.Page,
			"count", len(page),
		)

		if len(page) < opts.PerPage {
			break
		}
		opts.Page++
	}

	c.logger.Info("fetched coins for category", "category", categoryID, "count", len(coins))
	return coins, nil
}
