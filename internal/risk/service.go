// Package risk serves time-series risk rows for catalog properties,
// caching whole computed tables per (index ticker, down payment, mode)
// since the underlying series only change on the scheduled refresh.
package risk

import (
	"context"
	"fmt"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"homeyield/server/config"
	"homeyield/server/internal/catalog"
	"homeyield/server/internal/marketdata"
	"homeyield/server/internal/metrics"
	"homeyield/server/internal/models"
	"homeyield/server/internal/riskseries"
)

type tableKey struct {
	ticker         string
	downPaymentPct float64
	simplified     bool
}

// Service computes and caches risk tables. A table covers every property
// with valuation history in the snapshot it was built from; the cache is
// purged whenever the catalog reloads.
type Service struct {
	logger        *logrus.Logger
	calc          *riskseries.Calculator
	store         *marketdata.Store
	budget        time.Duration
	varConfidence float64
	cache         *lru.Cache[tableKey, map[int64]models.RiskRow]
}

func NewService(calc *riskseries.Calculator, store *marketdata.Store, budget time.Duration, varConfidence float64, cacheSize int, logger *logrus.Logger) (*Service, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New[tableKey, map[int64]models.RiskRow](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create risk table cache: %w", err)
	}
	return &Service{logger: logger, calc: calc, store: store, budget: budget, varConfidence: varConfidence, cache: cache}, nil
}

// Purge drops all cached tables. Wired to the catalog provider's reload
// hook.
func (s *Service) Purge() {
	s.cache.Purge()
}

// Rows returns one risk row per requested property id. Unknown tickers fall
// back to the default index rather than failing the request.
func (s *Service) Rows(ctx context.Context, snapshot *catalog.Snapshot, zpids []int64, params models.SearchParams) (map[int64]models.RiskRow, error) {
	symbol := params.IndexTicker
	if config.GetTickerBySymbol(symbol) == nil {
		symbol = config.DefaultIndexTicker
	}

	key := tableKey{
		ticker:         symbol,
		downPaymentPct: params.DownPaymentPct,
		simplified:     !params.IsAdvanced,
	}

	table, ok := s.cache.Get(key)
	if !ok {
		var err error
		table, err = s.buildTable(ctx, snapshot, key)
		if err != nil {
			return nil, err
		}
		s.cache.Add(key, table)
	}

	rows := make(map[int64]models.RiskRow, len(zpids))
	for _, zpid := range zpids {
		row, ok := table[zpid]
		if !ok {
			row = models.UnavailableRiskRow(zpid, models.ReasonMissingHistory)
		}
		rows[zpid] = row
	}
	return rows, nil
}

func (s *Service) buildTable(ctx context.Context, snapshot *catalog.Snapshot, key tableKey) (map[int64]models.RiskRow, error) {
	index, err := s.store.Index(ctx, key.ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load index series %s: %w", key.ticker, err)
	}
	riskFree, err := s.store.RiskFree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load risk-free series: %w", err)
	}

	histories := snapshot.Histories()
	allZPIDs := make([]int64, 0, len(histories))
	for zpid := range histories {
		allZPIDs = append(allZPIDs, zpid)
	}

	computeCtx := ctx
	if s.budget > 0 {
		var cancel context.CancelFunc
		computeCtx, cancel = context.WithTimeout(ctx, s.budget)
		defer cancel()
	}

	metrics.RiskTableBuilds.Inc()
	started := time.Now()
	table, err := s.calc.Compute(computeCtx, histories, index, riskFree, allZPIDs, riskseries.Options{
		DownPaymentPct: key.downPaymentPct,
		Simplified:     key.simplified,
		VaRConfidence:  s.varConfidence,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ticker":     key.ticker,
		"properties": len(table),
		"elapsed":    time.Since(started).String(),
	}).Info("Risk table computed")
	return table, nil
}
