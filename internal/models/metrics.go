package models

// MetricsRow holds the derived investment metrics for one property under a
// given set of financing parameters. Rows are computed fresh per request;
// they are never reused across requests with different parameters.
type MetricsRow struct {
	ZPID                      int64   `json:"zpid"`
	MonthlyCosts              float64 `json:"monthly_costs"`
	CashInvested              float64 `json:"cash_invested"`
	PrepaidCosts              float64 `json:"prepaid_costs"`
	MonthlyRentalIncome       float64 `json:"rental_income"`
	BreakevenPrice            float64 `json:"breakeven_price"`
	IsBreakevenPriceOffending bool    `json:"is_breakeven_price_offending"`
	CoC                       float64 `json:"CoC"`
	AdjCoC                    float64 `json:"adj_CoC"`
	CoCNoPrepaids             float64 `json:"CoC_no_prepaids"`
	AdjCoCNoPrepaids          float64 `json:"adj_CoC_no_prepaids"`
	CapRate                   float64 `json:"cap_rate"`
	AdjCapRate                float64 `json:"adj_cap_rate"`
}

// CompareGroup is a caller-supplied grouping of property IDs for the compare
// feature.
type CompareGroup struct {
	GroupID string  `json:"group_id"`
	ZPIDs   []int64 `json:"zpids"`
}

// CompareAggregate is the per-group aggregate row returned by the compare
// feature.
type CompareAggregate struct {
	GroupID            string  `json:"group_id"`
	PropertyCount      int     `json:"property_count"`
	TotalPurchasePrice float64 `json:"total_purchase_price"`
	TotalMonthlyCosts  float64 `json:"total_monthly_costs"`
	TotalCashInvested  float64 `json:"total_cash_invested"`
	TotalRentalIncome  float64 `json:"total_rental_income"`
}
