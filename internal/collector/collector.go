package collector

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/rickgao/narrative-watchlists/internal/model"
	"github.com/rickgao/narrative-watchlists/internal/watchlist"
	"github.com/rickgao/narrative-watchlists/internal/writer"
)

// Source fetches categories, category members and exchange listings.
type Source interface {
	FetchCategories(ctx context.Context, limit int) ([]model.Category, error)
	FetchCoinsByCategory(ctx context.Context, categoryID string, maxCoins int) ([]string, error)
	FetchTickers(ctx context.Context, exchange model.Exchange, target model.Target) ([]model.Ticker, error)
}

// Sink persists watchlists.
type Sink interface {
	SaveTickers(path string, grouped *watchlist.Grouped) error
	SaveIndex(path string, indexes *watchlist.Indexes) error
}

// Observer receives run statistics.
type Observer interface {
	ObserveCategories(n int)
	ObserveExchange(exchange string, listed, grouped int)
	ObserveFileWritten(kind string)
}

// File kinds reported to the Observer.
const (
	KindCategory = "category"
	KindCombined = "combined"
	KindIndex    = "index"
)

// Config holds collector configuration.
type Config struct {
	CategoryLimit int              // Top categories to process (default: 500)
	MaxCoins      int              // Coins fetched per category (default: 1000)
	Combined      bool             // One watchlist per exchange instead of per category
	IndexSize     int              // Tickers per index expression (default: 10)
	Exchanges     []model.Exchange // Exchanges to build watchlists for
	Target        model.Target     // Quote asset (default: USDT)
	OutputDir     string           // Watchlist directory (default: "Watchlists")
	IndexDir      string           // Index file directory (default: ".")
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CategoryLimit: 500,
		MaxCoins:      1000,
		IndexSize:     watchlist.DefaultIndexSize,
		Exchanges:     model.DefaultExchanges(),
		Target:        model.DefaultTarget(),
		OutputDir:     "Watchlists",
		IndexDir:      ".",
	}
}

// ExchangeSummary describes the output for one exchange.
type ExchangeSummary struct {
	Exchange    string
	Listed      int // tickers quoted in the target asset
	Watchlisted int // ticker lines across all categories
	Indexes     int // categories with an index expression
}

// Summary describes a completed run.
type Summary struct {
	Categories int
	Exchanges  []ExchangeSummary
	Files      []string
	Duration   time.Duration
}

// Option configures a Collector.
type Option func(*Collector)

// WithObserver reports run statistics to o.
func WithObserver(o Observer) Option {
	return func(c *Collector) {
		c.observer = o
	}
}

// Collector runs the fetch, group and write pipeline.
type Collector struct {
	cfg      Config
	source   Source
	sink     Sink
	observer Observer
	logger   *slog.Logger
}

// New creates a new Collector.
func New(cfg Config, source Source, sink Sink, logger *slog.Logger, opts ...Option) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Collector{
		cfg:    cfg,
		source: source,
		sink:   sink,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one full collection. Fetch errors other than an unreachable
// API abort the run.
func (c *Collector) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	categories, err := c.source.FetchCategories(ctx, c.cfg.CategoryLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	summary.Categories = len(categories)
	if c.observer != nil {
		c.observer.ObserveCategories(len(categories))
	}

	coins, err := c.fetchCoins(ctx, categories)
	if err != nil {
		return nil, err
	}

	for _, ex := range c.cfg.Exchanges {
		exSummary, files, err := c.processExchange(ctx, ex, categories, coins)
		if err != nil {
			return nil, err
		}
		summary.Exchanges = append(summary.Exchanges, exSummary)
		summary.Files = append(summary.Files, files...)
	}

	summary.Duration = time.Since(start)
	c.logger.Info("data collection complete",
		"categories", summary.Categories,
		"files", len(summary.Files),
		"duration", summary.Duration,
	)
	return summary, nil
}

// fetchCoins fetches members for each category, keyed by category ID in
// category order.
func (c *Collector) fetchCoins(ctx context.Context, categories []model.Category) (*model.OrderedMap[string, []string], error) {
	coins := model.NewOrderedMap[string, []string]()
	for i, cat := range categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.logger.Debug("fetching category members",
			"category", cat.Name,
			"progress", fmt.Sprintf("%d/%d", i+1, len(categories)),
		)

		ids, err := c.source.FetchCoinsByCategory(ctx, cat.ID, c.cfg.MaxCoins)
		if err != nil {
			return nil, fmt.Errorf("fetch coins for %s: %w", cat.Name, err)
		}
		coins.Set(cat.ID, ids)
	}
	return coins, nil
}

// processExchange builds and writes every watchlist for one exchange.
func (c *Collector) processExchange(
	ctx context.Context,
	ex model.Exchange,
	categories []model.Category,
	coins *model.OrderedMap[string, []string],
) (ExchangeSummary, []string, error) {
	tickers, err := c.source.FetchTickers(ctx, ex, c.cfg.Target)
	if err != nil {
		return ExchangeSummary{}, nil, fmt.Errorf("fetch tickers for %s: %w", ex.Name, err)
	}

	dict := watchlist.BuildTickerDict(ex, tickers)
	grouped := watchlist.Categorize(categories, coins, dict)
	indexes := watchlist.IndexExpressions(grouped, c.cfg.IndexSize)

	watchlisted := 0
	for name, list := range grouped.All() {
		watchlisted += len(list)
		if len(list) == 0 {
			c.logger.Debug("category has no tickers, skipping index", "exchange", ex.Name, "category", name)
		}
	}

	var files []string
	if c.cfg.Combined {
		path := filepath.Join(c.cfg.OutputDir, writer.FileName(ex.Name, writer.LabelCombined))
		if err := c.save(KindCombined, path, func() error { return c.sink.SaveTickers(path, grouped) }); err != nil {
			return ExchangeSummary{}, nil, err
		}
		files = append(files, path)
	} else {
		for name, list := range grouped.All() {
			single := model.NewOrderedMap[string, []string]()
			single.Set(name, list)

			path := filepath.Join(c.cfg.OutputDir, writer.SanitizeFileName(writer.FileName(ex.Name, name)))
			if err := c.save(KindCategory, path, func() error { return c.sink.SaveTickers(path, single) }); err != nil {
				return ExchangeSummary{}, nil, err
			}
			files = append(files, path)
		}
	}

	indexPath := filepath.Join(c.cfg.IndexDir, writer.FileName(ex.Name, writer.LabelIndex))
	if err := c.save(KindIndex, indexPath, func() error { return c.sink.SaveIndex(indexPath, indexes) }); err != nil {
		return ExchangeSummary{}, nil, err
	}
	files = append(files, indexPath)

	if c.observer != nil {
		c.observer.ObserveExchange(ex.Name, len(tickers), watchlisted)
	}

	c.logger.Info("exchange watchlists written",
		"exchange", ex.Name,
		"tickers", len(tickers),
		"watchlisted", watchlisted,
		"indexes", indexes.Len(),
		"files", len(files),
	)

	return ExchangeSummary{
		Exchange:    ex.Name,
		Listed:      len(tickers),
		Watchlisted: watchlisted,
		Indexes:     indexes.Len(),
	}, files, nil
}

func (c *Collector) save(kind, path string, write func() error) error {
	if err := write(); err != nil {
		return fmt.Errorf("save %s watchlist: %w", kind, err)
	}
	if c.observer != nil {
		c.observer.ObserveFileWritten(kind)
	}
	return nil
}
