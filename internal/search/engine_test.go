package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeyield/server/config"
	"homeyield/server/internal/catalog"
	"homeyield/server/internal/finance"
	"homeyield/server/internal/models"
)

func testEngine() *Engine {
	calc := finance.NewCalculatorAt(func() time.Time {
		return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	})
	regions := config.NewRegionMap(map[string][]string{
		"GULF_COAST": {"33701", "33702"},
	})
	return NewEngine(calc, regions, nil)
}

func testSnapshot() *catalog.Snapshot {
	properties := []models.Property{
		{
			ZPID: 1, StreetAddress: "12 Palm Ave", City: "St. Petersburg", ZipCode: "33701",
			HomeType: "SINGLE_FAMILY", PurchasePrice: 200000, MonthlyRestimate: 2500,
			YearBuilt: 1985, Bedrooms: 3, Bathrooms: 2,
			AnnualPropertyTaxRate: 1.2, AnnualMortgageRate: 6.5,
			MonthlyHomeownersInsurance: 120, MonthlyHOA: 50,
		},
		{
			ZPID: 2, StreetAddress: "34 Oak St", City: "Tampa", ZipCode: "33602",
			HomeType: "TOWNHOUSE", PurchasePrice: 300000, MonthlyRestimate: 2500,
			YearBuilt: 2001, Bedrooms: 2, Bathrooms: 2.5,
			AnnualPropertyTaxRate: 1.2, AnnualMortgageRate: 6.5,
			MonthlyHomeownersInsurance: 120, MonthlyHOA: 50, IsWaterfront: true,
		},
		{
			ZPID: 3, StreetAddress: "56 Palmetto Blvd", City: "St. Petersburg", ZipCode: "33702",
			HomeType: "SINGLE_FAMILY", PurchasePrice: 400000, MonthlyRestimate: 2500,
			YearBuilt: 2015, Bedrooms: 4, Bathrooms: 3,
			AnnualPropertyTaxRate: 1.2, AnnualMortgageRate: 6.5,
			MonthlyHomeownersInsurance: 120, MonthlyHOA: 50,
		},
	}
	return catalog.NewSnapshot(properties, nil)
}

func defaultParams() models.SearchParams {
	params := models.SearchParams{PageSize: 10}
	params.Normalize()
	return params
}

func zpids(rows []Row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.Property.ZPID
	}
	return out
}

func TestRun_NoFiltersReturnsEverything(t *testing.T) {
	result := testEngine().Run(testSnapshot(), defaultParams())
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.TotalPages)
	assert.Len(t, result.Rows, 3)
}

func TestRun_MinPriceFilter(t *testing.T) {
	params := defaultParams()
	params.HomeType = models.AnyHomeType
	params.MinPrice = 250000

	result := testEngine().Run(testSnapshot(), params)
	assert.Equal(t, 2, result.Total)
	assert.ElementsMatch(t, []int64{2, 3}, zpids(result.Rows))
}

func TestRun_StaticFilters(t *testing.T) {
	engine := testEngine()
	snapshot := testSnapshot()

	tests := []struct {
		name     string
		mutate   func(*models.SearchParams)
		expected []int64
	}{
		{"home type", func(p *models.SearchParams) { p.HomeType = "TOWNHOUSE" }, []int64{2}},
		{"region", func(p *models.SearchParams) { p.Region = "GULF_COAST" }, []int64{1, 3}},
		{"unknown region", func(p *models.SearchParams) { p.Region = "NOWHERE" }, nil},
		{"city", func(p *models.SearchParams) { p.City = "tampa" }, []int64{2}},
		{"max price", func(p *models.SearchParams) { p.MaxPrice = 250000 }, []int64{1}},
		{"year range", func(p *models.SearchParams) { p.MinYearBuilt = 2000; p.MaxYearBuilt = 2010 }, []int64{2}},
		{"bedrooms", func(p *models.SearchParams) { p.MinBedrooms = 3 }, []int64{1, 3}},
		{"bathrooms", func(p *models.SearchParams) { p.MaxBathrooms = 2 }, []int64{1}},
		{"waterfront", func(p *models.SearchParams) { b := true; p.IsWaterfront = &b }, []int64{2}},
		{"id set", func(p *models.SearchParams) { p.ZPIDs = []int64{1, 3} }, []int64{1, 3}},
		{"empty id set", func(p *models.SearchParams) { p.ZPIDs = []int64{} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := defaultParams()
			tt.mutate(&params)
			result := engine.Run(snapshot, params)
			assert.ElementsMatch(t, tt.expected, zpids(result.Rows))
		})
	}
}

func TestRun_AddressSubstringCaseInsensitive(t *testing.T) {
	params := defaultParams()
	params.PropertyAddress = "palm"

	result := testEngine().Run(testSnapshot(), params)
	assert.ElementsMatch(t, []int64{1, 3}, zpids(result.Rows))
}

func TestRun_SortByPrice(t *testing.T) {
	params := defaultParams()
	params.SortBy = "purchase_price"
	params.SortOrder = models.SortAscending

	result := testEngine().Run(testSnapshot(), params)
	assert.Equal(t, []int64{1, 2, 3}, zpids(result.Rows))

	params.SortOrder = models.SortDescending
	result = testEngine().Run(testSnapshot(), params)
	assert.Equal(t, []int64{3, 2, 1}, zpids(result.Rows))
}

func TestRun_SortByStringColumn(t *testing.T) {
	params := defaultParams()
	params.SortBy = "city"
	params.SortOrder = models.SortAscending

	result := testEngine().Run(testSnapshot(), params)
	// Both St. Petersburg rows tie; natural order breaks the tie.
	assert.Equal(t, []int64{1, 3, 2}, zpids(result.Rows))
}

func TestRun_SortStabilityOnConstantColumn(t *testing.T) {
	params := defaultParams()
	// Every row has the same restimate, so the natural order must survive.
	params.SortBy = "monthly_restimate"
	params.SortOrder = models.SortDescending

	result := testEngine().Run(testSnapshot(), params)
	assert.Equal(t, []int64{1, 2, 3}, zpids(result.Rows))
}

func TestRun_UnknownSortColumnFallsBack(t *testing.T) {
	params := defaultParams()
	params.SortBy = "no_such_column"

	result := testEngine().Run(testSnapshot(), params)
	assert.Len(t, result.Rows, 3)
}

func TestRun_Pagination(t *testing.T) {
	params := defaultParams()
	params.SortBy = "purchase_price"
	params.SortOrder = models.SortAscending
	params.PageSize = 1
	params.Page = 2

	result := testEngine().Run(testSnapshot(), params)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(2), result.Rows[0].Property.ZPID)
}

func TestRun_PaginationLaw(t *testing.T) {
	engine := testEngine()
	snapshot := testSnapshot()

	params := defaultParams()
	params.SortBy = "purchase_price"
	params.SortOrder = models.SortAscending
	params.PageSize = 2

	var all []int64
	first := engine.Run(snapshot, params)
	for page := 1; page <= first.TotalPages; page++ {
		params.Page = page
		all = append(all, zpids(engine.Run(snapshot, params).Rows)...)
	}

	// Concatenating every page reconstructs the full set exactly once.
	assert.Equal(t, []int64{1, 2, 3}, all)
}

func TestRun_OutOfRangePageIsEmpty(t *testing.T) {
	params := defaultParams()
	params.Page = 99

	result := testEngine().Run(testSnapshot(), params)
	assert.Equal(t, 3, result.Total)
	assert.Empty(t, result.Rows)
}

func TestRun_EmptyResultIsWellFormed(t *testing.T) {
	params := defaultParams()
	params.MinPrice = 10_000_000

	result := testEngine().Run(testSnapshot(), params)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.TotalPages)
	assert.Empty(t, result.Rows)
}

func TestRun_CashflowFilter(t *testing.T) {
	params := defaultParams()
	params.IsCashflowing = true

	result := testEngine().Run(testSnapshot(), params)
	for _, row := range result.Rows {
		assert.GreaterOrEqual(t, row.Metrics.AdjCoC, 0.0)
	}
}

func TestRun_CashflowFilterKeepsCashNeutral(t *testing.T) {
	engine := testEngine()
	params := defaultParams()

	// Bisect the rent estimate to the break-even point, where the adjusted
	// CoC rounds to exactly zero. A cash-neutral property still counts as
	// cash flowing.
	property := testSnapshot().Properties()[0]
	lo, hi := 0.0, 20000.0
	for i := 0; i < 60; i++ {
		property.MonthlyRestimate = (lo + hi) / 2
		if engine.calc.ComputeRow(property, params).AdjCoC < 0 {
			lo = property.MonthlyRestimate
		} else {
			hi = property.MonthlyRestimate
		}
	}
	property.MonthlyRestimate = hi
	require.InDelta(t, 0.0, engine.calc.ComputeRow(property, params).AdjCoC, 1e-9)

	snapshot := catalog.NewSnapshot([]models.Property{property}, nil)
	params.IsCashflowing = true

	result := engine.Run(snapshot, params)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, property.ZPID, result.Rows[0].Property.ZPID)
}

func TestCompare(t *testing.T) {
	engine := testEngine()
	snapshot := testSnapshot()
	params := defaultParams()

	groups := []models.CompareGroup{
		{GroupID: "a", ZPIDs: []int64{1, 2}},
		{GroupID: "b", ZPIDs: []int64{3, 999}},
	}

	aggregates := engine.Compare(snapshot, groups, params)
	require.Len(t, aggregates, 2)

	assert.Equal(t, "a", aggregates[0].GroupID)
	assert.Equal(t, 2, aggregates[0].PropertyCount)
	assert.Equal(t, 500000.0, aggregates[0].TotalPurchasePrice)

	// The unknown id is skipped, not an error.
	assert.Equal(t, 1, aggregates[1].PropertyCount)
	assert.Equal(t, 400000.0, aggregates[1].TotalPurchasePrice)
}
