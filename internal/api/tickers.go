package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/narrative-watchlists/internal/model"
)

// GetExchangeTickers fetches one page of an exchange's ticker listing.
// path may be relative to the base URL or an absolute pagination link.
func (c *Client) GetExchangeTickers(ctx context.Context, path string, query url.Values) (*ExchangeTickersResponse, string, error) {
	var resp ExchangeTickersResponse
	header, err := c.get(ctx, "tickers", path, query, &resp)
	if err != nil {
		return nil, "", fmt.Errorf("get exchange tickers: %w", err)
	}

	return &resp, header.Get("Link"), nil
}

// FetchTickers collects every ticker on an exchange quoted in target,
// following the Link header's "next" relation until it runs out.
// Tickers quoted in any other asset are dropped.
func (c *Client) FetchTickers(ctx context.Context, exchange model.Exchange, target model.Target) ([]model.Ticker, error) {
	c.logger.Info("fetching tickers for exchange", "exchange", exchange.Name)

	path := "/exchanges/" + url.PathEscape(exchange.APIID) + "/tickers"
	query := url.Values{}
	query.Set("coin_ids", target.ID)
	query.Set("page", strconv.Itoa(1))

	tickers := make([]model.Ticker, 0)
	visited := make(map[string]bool)

	for page := 1; ; page++ {
		resp, link, err := c.GetExchangeTickers(ctx, path, query)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				c.logger.Warn("failed to fetch more tickers",
					"exchange", exchange.Name,
					"page", page,
					"error", err,
				)
				break
			}
			return nil, fmt.Errorf("exchange %s: %w", exchange.APIID, err)
		}

		for i := range resp.Tickers {
			if resp.Tickers[i].Target == target.Symbol {
				tickers = append(tickers, resp.Tickers[i].ToModel())
			}
		}

		next, ok := ParseLinkHeader(link)["next"]
		if !ok {
			break
		}
		if visited[next] {
			c.logger.Warn("pagination link repeats, stopping", "exchange", exchange.Name, "next", next)
			break
		}
		visited[next] = true

		path, query, err = SplitNextURL(next)
		if err != nil {
			c.logger.Warn("invalid pagination link, stopping", "exchange", exchange.Name, "next", next, "error", err)
			break
		}
	}

	c.logger.Info("collected tickers", "exchange", exchange.Name, "count", len(tickers))
	return tickers, nil
}
