package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rickgao/narrative-watchlists/internal/api"
	"github.com/rickgao/narrative-watchlists/internal/collector"
	"github.com/rickgao/narrative-watchlists/internal/config"
	"github.com/rickgao/narrative-watchlists/internal/metrics"
	"github.com/rickgao/narrative-watchlists/internal/ratelimit"
	"github.com/rickgao/narrative-watchlists/internal/version"
	"github.com/rickgao/narrative-watchlists/internal/writer"
)

// options holds command-line flags. Flags only override the config file
// when explicitly set.
type options struct {
	configPath    string
	categoryLimit int
	combined      bool
	maxCoins      int
	metricsFile   string
	logLevel      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "watchlists",
		Short:         "Generate TradingView narrative watchlists from CoinGecko categories",
		Version:       version.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &opts)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				return err
			}
			return run(cmd.Context(), cfg, newLogger(cmd.OutOrStdout(), cfg.Log))
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	bindFlags(cmd, &opts)
	return cmd
}

func bindFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.Flags()
	flags.IntVarP(&opts.categoryLimit, "category_limit", "l", config.DefaultCategoryLimit, "number of top categories to process")
	flags.BoolVarP(&opts.combined, "combined", "c", false, "write one combined watchlist per exchange")
	flags.IntVarP(&opts.maxCoins, "max_coins", "m", config.DefaultMaxCoins, "maximum coins fetched per category")
	flags.StringVar(&opts.configPath, "config", "", "path to optional YAML config file")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig reads .env and the config file, then applies explicitly set
// flags and validates the result.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadWithDefaults(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("category_limit") {
		cfg.Run.CategoryLimit = opts.categoryLimit
	}
	if flags.Changed("combined") {
		cfg.Run.Combined = opts.combined
	}
	if flags.Changed("max_coins") {
		cfg.Run.MaxCoins = opts.maxCoins
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = opts.metricsFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler).With("run_id", uuid.New().String())
}

func run(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	slog.SetDefault(logger)

	logger.Info("starting watchlists",
		"version", version.Version,
		"commit", version.Commit,
		"category_limit", cfg.Run.CategoryLimit,
		"max_coins", cfg.Run.MaxCoins,
		"combined", cfg.Run.Combined,
	)
	if cfg.API.APIKey == "" {
		logger.Warn("no API key configured", "env", config.EnvAPIKey)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	limiter, err := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Period)
	if err != nil {
		logger.Error("failed to create rate limiter", "error", err)
		return err
	}

	m := metrics.New()

	apiClient := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.Retries(), cfg.API.ThrottleBackoff),
		api.WithLimiter(limiter),
		api.WithObserver(m),
		api.WithPageSize(cfg.Run.PageSize),
	)

	collectorCfg := collector.Config{
		CategoryLimit: cfg.Run.CategoryLimit,
		MaxCoins:      cfg.Run.MaxCoins,
		Combined:      cfg.Run.Combined,
		IndexSize:     cfg.Run.IndexSize,
		Exchanges:     cfg.ExchangeModels(),
		Target:        cfg.TargetModel(),
		OutputDir:     cfg.Output.Dir,
		IndexDir:      cfg.Output.IndexDir,
	}
	c := collector.New(collectorCfg, apiClient, writer.New(writer.DefaultConfig(), logger), logger,
		collector.WithObserver(m),
	)

	summary, runErr := c.Run(ctx)
	if runErr != nil {
		logger.Error("watchlist run failed", "error", runErr)
	} else {
		m.MarkRunComplete(time.Now())
		for _, ex := range summary.Exchanges {
			logger.Info("exchange summary",
				"exchange", ex.Exchange,
				"listed", ex.Listed,
				"watchlisted", ex.Watchlisted,
				"indexes", ex.Indexes,
			)
		}
	}

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
			if runErr == nil {
				return err
			}
		}
	}

	return runErr
}
