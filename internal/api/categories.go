package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rickgao/narrative-watchlists/internal/model"
)

// GetCategories fetches all categories ordered by market cap, descending.
func (c *Client) GetCategories(ctx context.Context) ([]APICategory, error) {
	query := url.Values{}
	query.Set("order", "market_cap_desc")

	var resp []APICategory
	if _, err := c.get(ctx, "categories", "/coins/categories", query, &resp); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	return resp, nil
}

// FetchCategories returns the top limit categories by market cap.
// If the API is unreachable it logs and returns an empty slice.
func (c *Client) FetchCategories(ctx context.Context, limit int) ([]model.Category, error) {
	c.logger.Info("fetching categories")

	resp, err := c.GetCategories(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			c.logger.Warn("failed to fetch categories", "error", err)
			return []model.Category{}, nil
		}
		return nil, err
	}

	if limit >= 0 && len(resp) > limit {
		resp = resp[:limit]
	}

	categories := make([]model.Category, 0, len(resp))
	for i := range resp {
		categories = append(categories, resp[i].ToModel())
	}

	c.logger.Info("fetched categories", "count", len(categories))
	return categories, nil
}
