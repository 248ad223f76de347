package watchlist

import (
	"strconv"
	"strings"

	"github.com/rickgao/narrative-watchlists/internal/model"
)

// DefaultIndexSize is how many tickers an index expression combines.
const DefaultIndexSize = 10

// TickerDict maps a coin ID to its formatted ticker on one exchange.
type TickerDict map[string]string

// Grouped maps category name to ticker strings in category order.
type Grouped = model.OrderedMap[string, []string]

// Indexes maps category name to its index expression in category order.
type Indexes = model.OrderedMap[string, string]

// FormatTicker renders "{EXCHANGE}:{BASE}{TARGET}" with the exchange name
// uppercased.
func FormatTicker(exchange model.Exchange, t model.Ticker) string {
	return strings.ToUpper(exchange.Name) + ":" + t.Base + t.Target
}

// BuildTickerDict indexes tickers by coin ID. When a coin has several
// tickers the last one wins.
func BuildTickerDict(exchange model.Exchange, tickers []model.Ticker) TickerDict {
	dict := make(TickerDict, len(tickers))
	for _, t := range tickers {
		dict[t.CoinID] = FormatTicker(exchange, t)
	}
	return dict
}

// Categorize builds the ordered category name -> tickers grouping.
// coins maps category ID to member coin IDs. Coins without a ticker in dict
// are dropped; every category gets an entry even if it ends up empty.
// Categories sharing a name are merged in order.
func Categorize(categories []model.Category, coins *model.OrderedMap[string, []string], dict TickerDict) *Grouped {
	grouped := model.NewOrderedMap[string, []string]()
	for _, cat := range categories {
		if !grouped.Has(cat.Name) {
			grouped.Set(cat.Name, []string{})
		}
	}

	for _, cat := range categories {
		members, _ := coins.Get(cat.ID)
		list, _ := grouped.Get(cat.Name)
		for _, coinID := range members {
			if ticker, ok := dict[coinID]; ok {
				list = append(list, ticker)
			}
		}
		grouped.Set(cat.Name, list)
	}

	return grouped
}

// IndexExpression combines the first size tickers into a geometric mean
// expression, e.g. "(A*B*C)^(1/3)". It returns false for an empty list.
func IndexExpression(tickers []string, size int) (string, bool) {
	if size > 0 && len(tickers) > size {
		tickers = tickers[:size]
	}
	if len(tickers) == 0 {
		return "", false
	}
	return "(" + strings.Join(tickers, "*") + ")^(1/" + strconv.Itoa(len(tickers)) + ")", true
}

// IndexExpressions builds an index per category. Categories with no tickers
// are omitted.
func IndexExpressions(grouped *Grouped, size int) *Indexes {
	indexes := model.NewOrderedMap[string, string]()
	for name, tickers := range grouped.All() {
		if expr, ok := IndexExpression(tickers, size); ok {
			indexes.Set(name, expr)
		}
	}
	return indexes
}
