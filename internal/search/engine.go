// Package search runs the listing pipeline: static filter predicates,
// address substring matching, derived-metric computation on the survivors,
// stable sorting and pagination. A run is deterministic for a fixed
// (catalog snapshot, parameter set) pair and never mutates the snapshot.
package search

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"homeyield/server/config"
	"homeyield/server/internal/catalog"
	"homeyield/server/internal/finance"
	"homeyield/server/internal/models"
)

// Row is one matched property with its derived metrics.
type Row struct {
	Property models.Property
	Metrics  models.MetricsRow
}

// Result is one page of a filtered, sorted listing.
type Result struct {
	Rows       []Row
	Total      int
	TotalPages int
	Page       int
	PageSize   int
}

type Engine struct {
	logger  *logrus.Logger
	calc    *finance.Calculator
	regions *config.RegionMap
}

func NewEngine(calc *finance.Calculator, regions *config.RegionMap, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Engine{logger: logger, calc: calc, regions: regions}
}

// Run executes the full pipeline for one request. Params must already be
// normalized.
func (e *Engine) Run(snapshot *catalog.Snapshot, params models.SearchParams) Result {
	matched := e.filterStatic(snapshot.Properties(), params)

	// The substring scan is the most expensive predicate, so it runs on
	// the already-reduced set.
	if params.PropertyAddress != "" {
		needle := strings.ToLower(params.PropertyAddress)
		kept := matched[:0:0]
		for _, p := range matched {
			if strings.Contains(strings.ToLower(p.StreetAddress), needle) {
				kept = append(kept, p)
			}
		}
		matched = kept
	}

	// Metrics are computed only for survivors, never for the full catalog.
	rows := make([]Row, len(matched))
	for i, p := range matched {
		rows[i] = Row{Property: p, Metrics: e.calc.ComputeRow(p, params)}
	}

	// Cash-neutral properties (adjusted CoC of exactly zero) count as
	// cash flowing.
	if params.IsCashflowing {
		kept := rows[:0:0]
		for _, r := range rows {
			if r.Metrics.AdjCoC >= 0 {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	sortRows(rows, params.SortBy, params.SortOrder)

	total := len(rows)
	totalPages := (total + params.PageSize - 1) / params.PageSize
	start := (params.Page - 1) * params.PageSize
	end := start + params.PageSize
	switch {
	case start >= total:
		rows = nil
	case end > total:
		rows = rows[start:total]
	default:
		rows = rows[start:end]
	}

	return Result{
		Rows:       rows,
		Total:      total,
		TotalPages: totalPages,
		Page:       params.Page,
		PageSize:   params.PageSize,
	}
}

func (e *Engine) filterStatic(properties []models.Property, params models.SearchParams) []models.Property {
	var idSet map[int64]struct{}
	if params.ZPIDs != nil {
		idSet = make(map[int64]struct{}, len(params.ZPIDs))
		for _, id := range params.ZPIDs {
			idSet[id] = struct{}{}
		}
	}

	matched := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if idSet != nil {
			if _, ok := idSet[p.ZPID]; !ok {
				continue
			}
		}
		if params.Region != models.AnyRegion && !e.regions.Contains(params.Region, p.ZipCode) {
			continue
		}
		if params.HomeType != models.AnyHomeType && !strings.EqualFold(params.HomeType, p.HomeType) {
			continue
		}
		if params.City != "" && !strings.EqualFold(params.City, p.City) {
			continue
		}
		if params.MinPrice > 0 && p.PurchasePrice < params.MinPrice {
			continue
		}
		if params.MaxPrice > 0 && p.PurchasePrice > params.MaxPrice {
			continue
		}
		if params.MinYearBuilt > 0 && p.YearBuilt < params.MinYearBuilt {
			continue
		}
		if params.MaxYearBuilt > 0 && p.YearBuilt > params.MaxYearBuilt {
			continue
		}
		if params.MinBedrooms > 0 && p.Bedrooms < params.MinBedrooms {
			continue
		}
		if params.MaxBedrooms > 0 && p.Bedrooms > params.MaxBedrooms {
			continue
		}
		if params.MinBathrooms > 0 && p.Bathrooms < params.MinBathrooms {
			continue
		}
		if params.MaxBathrooms > 0 && p.Bathrooms > params.MaxBathrooms {
			continue
		}
		if params.IsWaterfront != nil && p.IsWaterfront != *params.IsWaterfront {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}
