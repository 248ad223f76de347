package writer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rickgao/narrative-watchlists/internal/watchlist"
)

// Config holds file output settings.
type Config struct {
	DirMode  os.FileMode // mode for created directories (default: 0o755)
	FileMode os.FileMode // mode for watchlist files (default: 0o644)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DirMode:  0o755,
		FileMode: 0o644,
	}
}

// FileWriter saves watchlists as TradingView import files.
type FileWriter struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a FileWriter.
func New(cfg Config, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = DefaultConfig().DirMode
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = DefaultConfig().FileMode
	}
	return &FileWriter{cfg: cfg, logger: logger}
}

// SaveTickers writes one section per category with a ticker per line,
// replacing any existing file at path.
func (w *FileWriter) SaveTickers(path string, grouped *watchlist.Grouped) error {
	return w.save(path, func(out io.Writer) error {
		return WriteTickers(out, grouped)
	})
}

// SaveIndex writes one section per category holding its index expression,
// replacing any existing file at path.
func (w *FileWriter) SaveIndex(path string, indexes *watchlist.Indexes) error {
	return w.save(path, func(out io.Writer) error {
		return WriteIndex(out, indexes)
	})
}

// save creates the parent directory if needed, then truncates and writes
// path. The write is not atomic.
func (w *FileWriter) save(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, w.cfg.DirMode); err != nil {
				return fmt.Errorf("create directory %s: %w", dir, err)
			}
			w.logger.Info("directory created", "dir", dir)
		}
	}

	w.logger.Info("saving watchlist", "path", path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, w.cfg.FileMode)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	w.logger.Info("watchlist saved", "path", path)
	return nil
}

// WriteTickers renders grouped tickers:
//
//	###Category
//	EXCHANGE:BASETARGET
//	...
func WriteTickers(out io.Writer, grouped *watchlist.Grouped) error {
	bw := bufio.NewWriter(out)
	for name, tickers := range grouped.All() {
		if _, err := fmt.Fprintf(bw, "###%s\n", name); err != nil {
			return err
		}
		for _, t := range tickers {
			if _, err := fmt.Fprintf(bw, "%s\n", t); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteIndex renders index expressions, each followed by a blank line:
//
//	###Category
//	(A*B*C)^(1/3)
func WriteIndex(out io.Writer, indexes *watchlist.Indexes) error {
	bw := bufio.NewWriter(out)
	for name, expr := range indexes.All() {
		if _, err := fmt.Fprintf(bw, "###%s\n%s\n\n", name, expr); err != nil {
			return err
		}
	}
	return bw.Flush()
}
