package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"homeyield/server/config"
	"homeyield/server/internal/metrics"
	"homeyield/server/internal/riskseries"
)

// Store serves market-index and risk-free-rate series from per-ticker CSV
// cache files, refreshing a ticker from the fetcher when its file is older
// than the freshness window. Fetch failures fall back to the stale cache
// silently; only a ticker with no cache at all is a hard failure.
type Store struct {
	logger   *logrus.Logger
	cacheDir string
	maxAge   time.Duration
	fetcher  Fetcher
	now      func() time.Time

	mu     sync.RWMutex
	series map[string]riskseries.Series
}

func NewStore(logger *logrus.Logger, cacheDir string, maxAge time.Duration, fetcher Fetcher) *Store {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	os.MkdirAll(cacheDir, 0755)

	return &Store{
		logger:   logger,
		cacheDir: cacheDir,
		maxAge:   maxAge,
		fetcher:  fetcher,
		now:      time.Now,
		series:   make(map[string]riskseries.Series),
	}
}

// SetClock overrides the store's clock. Intended for tests of the
// staleness logic.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Index returns the adjusted-close series for a ticker, refreshing it first
// if the cached copy is stale.
func (s *Store) Index(ctx context.Context, symbol string) (riskseries.Series, error) {
	return s.load(ctx, symbol)
}

// RiskFree returns the risk-free-rate series: the treasury-bill annualized
// percent yield converted to a daily rate.
func (s *Store) RiskFree(ctx context.Context) (riskseries.Series, error) {
	raw, err := s.load(ctx, config.RiskFreeTicker)
	if err != nil {
		return riskseries.Series{}, err
	}

	daily := riskseries.Series{
		Dates:  raw.Dates,
		Values: make([]float64, len(raw.Values)),
	}
	for i, v := range raw.Values {
		daily.Values[i] = Deannualize(v / 100)
	}
	return daily, nil
}

// Deannualize converts an annual rate to its daily-compounded equivalent.
func Deannualize(annualRate float64) float64 {
	return math.Pow(1+annualRate, 1.0/365) - 1
}

// RefreshAll re-checks freshness for every supported ticker plus the
// risk-free series. Used by the background scheduler; per-ticker failures
// are logged, not propagated.
func (s *Store) RefreshAll(ctx context.Context) {
	symbols := append(config.GetTickerSymbols(), config.RiskFreeTicker)
	for _, symbol := range symbols {
		if _, err := s.load(ctx, symbol); err != nil {
			metrics.MarketDataRefreshFailures.Inc()
			s.logger.WithError(err).WithField("symbol", symbol).Error("Failed to refresh ticker series")
		}
	}
}

func (s *Store) load(ctx context.Context, symbol string) (riskseries.Series, error) {
	path := s.cachePath(symbol)
	fresh := s.isFresh(path)

	s.mu.RLock()
	cached, inMemory := s.series[symbol]
	s.mu.RUnlock()
	if inMemory && fresh {
		return cached, nil
	}

	if !fresh {
		if series, err := s.fetcher.Fetch(ctx, symbol); err == nil {
			if err := s.writeCache(path, series); err != nil {
				s.logger.WithError(err).WithField("symbol", symbol).Error("Failed to write series cache")
			}
			s.store(symbol, series)
			return series, nil
		} else if !s.cacheExists(path) {
			return riskseries.Series{}, fmt.Errorf("failed to fetch %s and no cached copy exists: %w", symbol, err)
		} else {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("Fetch failed, serving stale cached series")
		}
	}

	if inMemory {
		return cached, nil
	}
	series, err := s.readCache(path)
	if err != nil {
		return riskseries.Series{}, fmt.Errorf("failed to load cached series for %s: %w", symbol, err)
	}
	s.store(symbol, series)
	return series, nil
}

func (s *Store) store(symbol string, series riskseries.Series) {
	s.mu.Lock()
	s.series[symbol] = series
	s.mu.Unlock()
}

func (s *Store) cachePath(symbol string) string {
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s_data.csv", symbol))
}

func (s *Store) cacheExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) isFresh(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.now().Sub(info.ModTime()) < s.maxAge
}

func (s *Store) readCache(path string) (riskseries.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return riskseries.Series{}, err
	}
	defer f.Close()
	return parseQuoteCSV(f)
}

func (s *Store) writeCache(path string, series riskseries.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", "Adj Close"}); err != nil {
		return err
	}
	for i := range series.Dates {
		record := []string{
			series.Dates[i].Format("2006-01-02"),
			strconv.FormatFloat(series.Values[i], 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
