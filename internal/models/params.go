package models

// Sentinel values accepted by filters to mean "no restriction".
const (
	AnyRegion   = "ANY_AREA"
	AnyHomeType = "ANY"
)

const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// DefaultSortColumn is the adjusted cash-on-cash return; listings are most
// useful ranked by expected yield.
const DefaultSortColumn = "adj_CoC"

// SearchParams is the fully-typed, defaulted form of a listing request.
// Malformed or missing request fields never fail a search; they fall back to
// the permissive defaults applied by Normalize.
type SearchParams struct {
	// Financing inputs.
	DownPaymentPct             float64  // fraction in (0,1], default 0.20
	OverrideAnnualMortgageRate *float64 // percent, nil means use listing rate

	// Static filter predicates.
	Region        string
	HomeType      string
	City          string
	MinPrice      float64
	MaxPrice      float64
	MinYearBuilt  int
	MaxYearBuilt  int
	MinBedrooms   float64
	MaxBedrooms   float64
	MinBathrooms  float64
	MaxBathrooms  float64
	IsWaterfront  *bool
	ZPIDs         []int64 // non-nil restricts to this id set
	IsCashflowing bool    // post-metrics predicate on adjusted CoC sign

	// Free-text address substring, case-insensitive.
	PropertyAddress string

	// Ordering and pagination.
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int

	// Time-series risk metrics.
	WithRiskMetrics bool
	IndexTicker     string
	IsAdvanced      bool
}

// Normalize applies the documented defaults in place and clamps nonsensical
// values rather than rejecting them.
func (p *SearchParams) Normalize() {
	if p.DownPaymentPct <= 0 || p.DownPaymentPct > 1 {
		p.DownPaymentPct = 0.20
	}
	if p.Region == "" {
		p.Region = AnyRegion
	}
	if p.HomeType == "" {
		p.HomeType = AnyHomeType
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortColumn
	}
	if p.SortOrder != SortAscending {
		p.SortOrder = SortDescending
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
}
