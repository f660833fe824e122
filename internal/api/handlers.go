package api

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homeyield/server/config"
	"homeyield/server/internal/catalog"
	"homeyield/server/internal/models"
	"homeyield/server/internal/search"
)

// SnapshotProvider hands out the current read-only catalog.
type SnapshotProvider interface {
	Snapshot() *catalog.Snapshot
}

// RiskProvider computes risk rows for a set of properties.
type RiskProvider interface {
	Rows(ctx context.Context, snapshot *catalog.Snapshot, zpids []int64, params models.SearchParams) (map[int64]models.RiskRow, error)
}

type Handler struct {
	logger       *logrus.Logger
	provider     SnapshotProvider
	engine       *search.Engine
	riskService  RiskProvider
	savedStore   SavedStore
	regions      *config.RegionMap
	ingest       IngestPusher
	maxBatchSize int
}

// searchRequest is the wire form of a listing request. Every field is
// optional; malformed values fall back to the documented defaults rather
// than failing the request.
type searchRequest struct {
	Region                     string   `json:"region"`
	HomeType                   string   `json:"home_type"`
	City                       string   `json:"city"`
	MinPrice                   float64  `json:"min_price"`
	MaxPrice                   float64  `json:"max_price"`
	MinYearBuilt               int      `json:"min_year_built"`
	MaxYearBuilt               int      `json:"max_year_built"`
	MinBedrooms                float64  `json:"min_bedrooms"`
	MaxBedrooms                float64  `json:"max_bedrooms"`
	MinBathrooms               float64  `json:"min_bathrooms"`
	MaxBathrooms               float64  `json:"max_bathrooms"`
	IsWaterfront               *bool    `json:"is_waterfront"`
	IsCashflowing              bool     `json:"is_cashflowing"`
	DownPaymentPercentage      *float64 `json:"down_payment_percentage"`
	OverrideAnnualMortgageRate *float64 `json:"override_annual_mortgage_rate"`
	SortBy                     string   `json:"sortBy"`
	SortOrder                  string   `json:"sortOrder"`
	CurrentPage                int      `json:"current_page"`
	NumPropertiesPerPage       int      `json:"num_properties_per_page"`
	PropertyAddress            string   `json:"property_address"`
	IndexTicker                string   `json:"index_ticker"`
	IsAdvancedSearch           bool     `json:"is_advanced_search"`
	WithRiskMetrics            bool     `json:"with_risk_metrics"`
}

// toParams converts the wire form to the typed parameter set. The down
// payment arrives in percent units.
func (r searchRequest) toParams() models.SearchParams {
	params := models.SearchParams{
		Region:                     r.Region,
		HomeType:                   r.HomeType,
		City:                       r.City,
		MinPrice:                   r.MinPrice,
		MaxPrice:                   r.MaxPrice,
		MinYearBuilt:               r.MinYearBuilt,
		MaxYearBuilt:               r.MaxYearBuilt,
		MinBedrooms:                r.MinBedrooms,
		MaxBedrooms:                r.MaxBedrooms,
		MinBathrooms:               r.MinBathrooms,
		MaxBathrooms:               r.MaxBathrooms,
		IsWaterfront:               r.IsWaterfront,
		IsCashflowing:              r.IsCashflowing,
		OverrideAnnualMortgageRate: r.OverrideAnnualMortgageRate,
		PropertyAddress:            r.PropertyAddress,
		SortBy:                     r.SortBy,
		SortOrder:                  r.SortOrder,
		Page:                       r.CurrentPage,
		PageSize:                   r.NumPropertiesPerPage,
		WithRiskMetrics:            r.WithRiskMetrics,
		IndexTicker:                r.IndexTicker,
		IsAdvanced:                 r.IsAdvancedSearch,
	}
	if r.DownPaymentPercentage != nil {
		params.DownPaymentPct = *r.DownPaymentPercentage / 100
	}
	params.Normalize()
	return params
}

type compareRequest struct {
	Groups                     []models.CompareGroup `json:"groups"`
	DownPaymentPercentage      *float64              `json:"down_payment_percentage"`
	OverrideAnnualMortgageRate *float64              `json:"override_annual_mortgage_rate"`
}

type toggleSaveRequest struct {
	ZPID int64 `json:"zpid" binding:"required"`
}

func NewHandler(provider SnapshotProvider, engine *search.Engine, riskService RiskProvider, savedStore SavedStore, regions *config.RegionMap, ingest IngestPusher, maxBatchSize int, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if savedStore == nil {
		savedStore = NewMemorySavedStore()
	}

	return &Handler{
		logger:       logger,
		provider:     provider,
		engine:       engine,
		riskService:  riskService,
		savedStore:   savedStore,
		regions:      regions,
		ingest:       ingest,
		maxBatchSize: maxBatchSize,
	}
}

// Explore serves the main listing page: filters, derived metrics and,
// when requested, time-series risk metrics.
func (h *Handler) Explore(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to parse search request, using defaults")
	}
	h.serveListing(c, req.toParams())
}

// Search serves the free-text address lookup. It runs the same pipeline as
// Explore; the address substring is simply the dominant predicate.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to parse search request, using defaults")
	}
	h.serveListing(c, req.toParams())
}

// Saved serves the listing restricted to the caller's saved properties.
func (h *Handler) Saved(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to parse search request, using defaults")
	}
	params := req.toParams()
	params.ZPIDs = h.savedStore.All()
	h.serveListing(c, params)
}

func (h *Handler) serveListing(c *gin.Context, params models.SearchParams) {
	snapshot := h.provider.Snapshot()
	result := h.engine.Run(snapshot, params)

	var riskRows map[int64]models.RiskRow
	if params.WithRiskMetrics || params.IsAdvanced {
		zpids := make([]int64, len(result.Rows))
		for i, row := range result.Rows {
			zpids[i] = row.Property.ZPID
		}

		var err error
		riskRows, err = h.riskService.Rows(c.Request.Context(), snapshot, zpids, params)
		if err != nil {
			h.logger.WithError(err).Error("Failed to compute risk metrics")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute risk metrics"})
			return
		}
	}

	saved := h.savedStore.Saved(zpidsOf(result.Rows))
	c.JSON(http.StatusOK, assembleListing(result, riskRows, saved, params))
}

func zpidsOf(rows []search.Row) []int64 {
	zpids := make([]int64, len(rows))
	for i, row := range rows {
		zpids[i] = row.Property.ZPID
	}
	return zpids
}

// ToggleSave flips a property's saved state.
func (h *Handler) ToggleSave(c *gin.Context) {
	var req toggleSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse toggle-save request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "zpid is required"})
		return
	}

	saved := h.savedStore.Toggle(req.ZPID)
	c.JSON(http.StatusOK, gin.H{"zpid": req.ZPID, "saved": saved})
}

// Compare returns aggregate sums per caller-supplied property group.
func (h *Handler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse compare request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid compare request"})
		return
	}

	params := models.SearchParams{OverrideAnnualMortgageRate: req.OverrideAnnualMortgageRate}
	if req.DownPaymentPercentage != nil {
		params.DownPaymentPct = *req.DownPaymentPercentage / 100
	}
	params.Normalize()

	aggregates := h.engine.Compare(h.provider.Snapshot(), req.Groups, params)
	c.JSON(http.StatusOK, gin.H{"groups": aggregates})
}

// Regions lists the configured region names with their zip-code counts.
func (h *Handler) Regions(c *gin.Context) {
	type regionInfo struct {
		Name     string `json:"name"`
		ZipCodes int    `json:"zip_codes"`
	}

	names := h.regions.Regions()
	regions := make([]regionInfo, 0, len(names))
	for _, name := range names {
		regions = append(regions, regionInfo{Name: name, ZipCodes: h.regions.ZipCount(name)})
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// Tickers lists the supported market-index tickers.
func (h *Handler) Tickers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tickers": config.SupportedTickers,
		"default": config.DefaultIndexTicker,
	})
}

// Health reports liveness and the size of the loaded catalog.
func (h *Handler) Health(c *gin.Context) {
	snapshot := h.provider.Snapshot()
	size := 0
	if snapshot != nil {
		size = snapshot.Len()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "properties": size})
}
