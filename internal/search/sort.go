package search

import (
	"sort"
	"strings"

	"homeyield/server/internal/models"
)

// numericColumns maps sortable backend keys to their row values. Keys match
// the JSON field names used across the API.
var numericColumns = map[string]func(Row) float64{
	"zpid":                 func(r Row) float64 { return float64(r.Property.ZPID) },
	"purchase_price":       func(r Row) float64 { return r.Property.PurchasePrice },
	"monthly_restimate":    func(r Row) float64 { return r.Property.MonthlyRestimate },
	"year_built":           func(r Row) float64 { return float64(r.Property.YearBuilt) },
	"bedrooms":             func(r Row) float64 { return r.Property.Bedrooms },
	"bathrooms":            func(r Row) float64 { return r.Property.Bathrooms },
	"living_area":          func(r Row) float64 { return deref(r.Property.LivingArea) },
	"lot_size":             func(r Row) float64 { return deref(r.Property.LotSize) },
	"home_features_score":  func(r Row) float64 { return deref(r.Property.HomeFeaturesScore) },
	"gross_rent_multiplier": func(r Row) float64 { return deref(r.Property.GrossRentMultiplier) },
	"monthly_costs":        func(r Row) float64 { return r.Metrics.MonthlyCosts },
	"cash_invested":        func(r Row) float64 { return r.Metrics.CashInvested },
	"prepaid_costs":        func(r Row) float64 { return r.Metrics.PrepaidCosts },
	"rental_income":        func(r Row) float64 { return r.Metrics.MonthlyRentalIncome },
	"breakeven_price":      func(r Row) float64 { return r.Metrics.BreakevenPrice },
	"CoC":                  func(r Row) float64 { return r.Metrics.CoC },
	"adj_CoC":              func(r Row) float64 { return r.Metrics.AdjCoC },
	"CoC_no_prepaids":      func(r Row) float64 { return r.Metrics.CoCNoPrepaids },
	"adj_CoC_no_prepaids":  func(r Row) float64 { return r.Metrics.AdjCoCNoPrepaids },
	"cap_rate":             func(r Row) float64 { return r.Metrics.CapRate },
	"adj_cap_rate":         func(r Row) float64 { return r.Metrics.AdjCapRate },
}

var stringColumns = map[string]func(Row) string{
	"street_address": func(r Row) string { return r.Property.StreetAddress },
	"city":           func(r Row) string { return r.Property.City },
	"zip_code":       func(r Row) string { return r.Property.ZipCode },
	"home_type":      func(r Row) string { return r.Property.HomeType },
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// sortRows orders rows in place by the given column. Ties keep the catalog's
// natural order. An unknown column falls back to the default sort key rather
// than failing the request.
func sortRows(rows []Row, column, order string) {
	descending := order == models.SortDescending

	if key, ok := stringColumns[column]; ok {
		sort.SliceStable(rows, func(i, j int) bool {
			less := strings.ToLower(key(rows[i])) < strings.ToLower(key(rows[j]))
			if descending {
				return strings.ToLower(key(rows[j])) < strings.ToLower(key(rows[i]))
			}
			return less
		})
		return
	}

	key, ok := numericColumns[column]
	if !ok {
		key = numericColumns[models.DefaultSortColumn]
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return key(rows[i]) > key(rows[j])
		}
		return key(rows[i]) < key(rows[j])
	})
}

// SortableColumns returns every accepted sort key. Used by the API layer to
// document the surface.
func SortableColumns() []string {
	columns := make([]string, 0, len(numericColumns)+len(stringColumns))
	for name := range numericColumns {
		columns = append(columns, name)
	}
	for name := range stringColumns {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}
