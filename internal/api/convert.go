package api

import "github.com/rickgao/narrative-watchlists/internal/model"

// ToModel converts an APICategory to a model.Category.
func (a *APICategory) ToModel() model.Category {
	return model.Category{
		ID:   a.ID,
		Name: a.Name,
	}
}

// ToModel converts an APITicker to a model.Ticker.
func (t *APITicker) ToModel() model.Ticker {
	return model.Ticker{
		CoinID: t.CoinID,
		Base:   t.Base,
		Target: t.Target,
	}
}

// CoinIDs extracts coin IDs in response order.
func CoinIDs(markets []APICoinMarket) []string {
	ids := make([]string, 0, len(markets))
	for _, m := range markets {
		ids = append(ids, m.ID)
	}
	return ids
}
