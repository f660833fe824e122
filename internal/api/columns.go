package api

import (
	"fmt"
	"strconv"

	"homeyield/server/internal/models"
	"homeyield/server/internal/search"
)

// column describes one output field: the display name shown to clients and
// an optional human-readable description. Dynamic columns depend on the
// request's financing parameters and carry a down-payment suffix.
type column struct {
	name        string
	description string
	dynamic     bool
	value       func(search.Row) any
}

// staticColumns come straight from the catalog row.
var staticColumns = []column{
	{name: "Image", value: func(r search.Row) any { return r.Property.ImageURL }},
	{name: "City", value: func(r search.Row) any { return r.Property.City }},
	{name: "Property Address", value: func(r search.Row) any { return r.Property.StreetAddress }},
	{name: "Price", value: func(r search.Row) any { return r.Property.PurchasePrice }},
	{name: "Rent Estimate",
		description: "Estimated monthly rent.",
		value:       func(r search.Row) any { return r.Property.MonthlyRestimate }},
	{name: "Year Built", value: func(r search.Row) any { return r.Property.YearBuilt }},
	{name: "Home Type",
		description: "Type of housing (e.g., Single Family, Townhouse).",
		value:       func(r search.Row) any { return r.Property.HomeType }},
	{name: "Bedrooms", value: func(r search.Row) any { return r.Property.Bedrooms }},
	{name: "Bathrooms", value: func(r search.Row) any { return r.Property.Bathrooms }},
	{name: "Zip Code", value: func(r search.Row) any { return r.Property.ZipCode }},
	{name: "Gross Rent Multiplier",
		description: "The ratio of purchase price to annual rental income. A lower ratio indicates a potentially more profitable investment.",
		value:       func(r search.Row) any { return r.Property.GrossRentMultiplier }},
	{name: "Tax Rate (%)",
		description: "Annual property tax rate.",
		value:       func(r search.Row) any { return r.Property.AnnualPropertyTaxRate }},
	{name: "Living Area (sq ft)",
		description: "Interior space of the property.",
		value:       func(r search.Row) any { return r.Property.LivingArea }},
	{name: "Lot Size (sq ft)",
		description: "Total area of the property's lot.",
		value:       func(r search.Row) any { return r.Property.LotSize }},
	{name: "Mortgage Rate",
		description: "Interest rate on the mortgage.",
		value:       func(r search.Row) any { return r.Property.AnnualMortgageRate }},
	{name: "Home Insurance",
		description: "Monthly cost of homeowners insurance.",
		value:       func(r search.Row) any { return r.Property.MonthlyHomeownersInsurance }},
	{name: "HOA Fee",
		description: "Monthly fee charged by the Homeowners Association.",
		value:       func(r search.Row) any { return r.Property.MonthlyHOA }},
	{name: "Home Features Score",
		description: "Score representing the quality and number of features.",
		value:       func(r search.Row) any { return r.Property.HomeFeaturesScore }},
	{name: "Waterfront",
		description: "Indicates if the property is located next to a body of water.",
		value:       func(r search.Row) any { return r.Property.IsWaterfront }},
}

const cocDescription = "The (annualized) rate of return on a real estate investment property based on the income that the property is expected to generate"

// dynamicColumns are derived from the financing parameters; their display
// names carry the down-payment suffix.
var dynamicColumns = []column{
	{name: "Rental Income", dynamic: true,
		description: "The monthly income expected from renting the property, after deducting expenses like mortgage, HOA fees, and insurance.",
		value:       func(r search.Row) any { return r.Metrics.MonthlyRentalIncome }},
	{name: "Monthly Costs", dynamic: true,
		description: "Total monthly cost of ownership: mortgage payment, PMI, property tax, insurance and HOA.",
		value:       func(r search.Row) any { return r.Metrics.MonthlyCosts }},
	{name: "Cash Invested", dynamic: true,
		description: "Total cash needed to close: down payment, closing fees and prepaid escrow.",
		value:       func(r search.Row) any { return r.Metrics.CashInvested }},
	{name: "Prepaid Costs", dynamic: true,
		description: "Escrow prepaid at closing for property tax and insurance.",
		value:       func(r search.Row) any { return r.Metrics.PrepaidCosts }},
	{name: "Breakeven Price", dynamic: true,
		description: "This is the price at which owning the property becomes financially neutral each month, meaning the rental income exactly covers all expenses. It includes factors such as maintenance, HOA fees, mortgage costs, property taxes, and insurance, adjusted for typical vacancy rates. A breakeven price above the asking price suggests the property could generate positive cash flow at the listed price.",
		value:       func(r search.Row) any { return r.Metrics.BreakevenPrice }},
	{name: "Is Breakeven Price Offending", dynamic: true,
		description: "Indicates whether the breakeven price is significantly lower than the listing price, specifically if it is less than 80% of the listed amount. This metric can be used to assess whether the price at which the property breaks even financially might be considered too low or 'offensive' in a standard real estate negotiation, suggesting a lower than expected value or profitability from the property.",
		value:       func(r search.Row) any { return r.Metrics.IsBreakevenPriceOffending }},
	{name: "CoC", dynamic: true,
		description: cocDescription + ".",
		value:       func(r search.Row) any { return r.Metrics.CoC }},
	{name: "Adjusted CoC", dynamic: true,
		description: cocDescription + ", adjusted for maintenance and vacancy rates.",
		value:       func(r search.Row) any { return r.Metrics.AdjCoC }},
	{name: "CoC w/o Prepaids", dynamic: true,
		description: cocDescription + ", without prepaids.",
		value:       func(r search.Row) any { return r.Metrics.CoCNoPrepaids }},
	{name: "Adjusted CoC w/o Prepaids", dynamic: true,
		description: cocDescription + ", adjusted for maintenance and vacancy rates, and without prepaids.",
		value:       func(r search.Row) any { return r.Metrics.AdjCoCNoPrepaids }},
	{name: "Cap Rate", dynamic: true,
		description: "This is a key real estate valuation measure used to compare different real estate investments. It is calculated as the ratio of the annual rental income generated by the property to the purchase price or current market value, expressed as a percentage. It provides an indication of the potential return on investment.",
		value:       func(r search.Row) any { return r.Metrics.CapRate }},
	{name: "Adjusted Cap Rate", dynamic: true,
		description: "Similar to the Cap Rate, but adjusted for factors like vacancy rates and ongoing maintenance costs, providing a more realistic measure of the property's potential return on investment after accounting for common expenses that reduce net income.",
		value:       func(r search.Row) any { return r.Metrics.AdjCapRate }},
}

// riskColumns pull value-or-reason cells out of the risk row.
var riskColumns = []struct {
	name        string
	description string
	value       func(models.RiskRow) models.Cell
}{
	{"Alpha", "The regression intercept of the property's excess returns against the selected market index. A positive Alpha indicates the property has appreciated more than the index would predict.",
		func(r models.RiskRow) models.Cell { return r.Alpha }},
	{"Beta", "The regression slope of the property's excess returns against the selected market index. A Beta above one means the property's value moves more than the index.",
		func(r models.RiskRow) models.Cell { return r.Beta }},
	{"Sharpe Ratio", "Average excess return per unit of return volatility.",
		func(r models.RiskRow) models.Cell { return r.SharpeRatio }},
	{"Sortino Ratio", "Average excess return per unit of downside volatility.",
		func(r models.RiskRow) models.Cell { return r.SortinoRatio }},
	{"Max Drawdown (%)", "Largest peak-to-trough decline of the property's cumulative value.",
		func(r models.RiskRow) models.Cell { return r.MaxDrawdownPct }},
	{"Recovery Time (Days)", "Days from the drawdown trough until the prior peak was regained.",
		func(r models.RiskRow) models.Cell { return r.RecoveryTimeDays }},
	{"Kendall Tau", "Rank correlation between the property's excess returns and the index's.",
		func(r models.RiskRow) models.Cell { return r.KendallTau }},
	{"Spearman Rho", "Rank correlation between the property's excess returns and the index's.",
		func(r models.RiskRow) models.Cell { return r.SpearmanRho }},
	{"Historical VaR", "The loss threshold not expected to be exceeded at the configured confidence level, from the historical excess-return distribution.",
		func(r models.RiskRow) models.Cell { return r.HistoricalVaR }},
}

// downSuffix renders the display suffix for dynamic columns, e.g.
// " (20% Down)".
func downSuffix(downPaymentPct float64) string {
	return fmt.Sprintf(" (%s%% Down)", strconv.FormatFloat(downPaymentPct*100, 'f', -1, 64))
}

// assembleListing turns one result page into the wire shape: display-named
// records in a deterministic column order, the description dictionary and
// the page counts.
func assembleListing(result search.Result, riskRows map[int64]models.RiskRow, saved map[int64]bool, params models.SearchParams) map[string]any {
	suffix := downSuffix(params.DownPaymentPct)

	// Priority columns first, remaining ones in declaration order.
	order := []string{
		"Image", "Save", "City",
		"Rental Income" + suffix,
		"Rent Estimate", "Price",
		"Breakeven Price" + suffix,
		"Is Breakeven Price Offending" + suffix,
		"Adjusted CoC" + suffix,
		"Year Built", "Home Type", "Bedrooms", "Bathrooms",
	}
	seen := make(map[string]struct{}, len(order))
	for _, name := range order {
		seen[name] = struct{}{}
	}
	appendColumn := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}
	appendColumn("zpid")
	for _, col := range staticColumns {
		appendColumn(col.name)
	}
	for _, col := range dynamicColumns {
		appendColumn(col.name + suffix)
	}
	if riskRows != nil {
		for _, col := range riskColumns {
			appendColumn(col.name)
		}
	}

	records := make([]map[string]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		record := make(map[string]any, len(order))
		record["zpid"] = row.Property.ZPID
		record["Save"] = saved[row.Property.ZPID]
		for _, col := range staticColumns {
			record[col.name] = col.value(row)
		}
		for _, col := range dynamicColumns {
			record[col.name+suffix] = col.value(row)
		}
		if riskRows != nil {
			riskRow := riskRows[row.Property.ZPID]
			for _, col := range riskColumns {
				record[col.name] = col.value(riskRow)
			}
		}
		records = append(records, record)
	}

	return map[string]any{
		"properties":       records,
		"columns":          order,
		"descriptions":     describeColumns(params.DownPaymentPct, suffix, riskRows != nil),
		"total_properties": result.Total,
		"total_pages":      result.TotalPages,
	}
}

// describeColumns builds the display-name to human-text dictionary for the
// active down payment.
func describeColumns(downPaymentPct float64, suffix string, withRisk bool) map[string]string {
	pctText := strconv.FormatFloat(downPaymentPct*100, 'f', -1, 64)
	descriptions := make(map[string]string)
	for _, col := range staticColumns {
		if col.description != "" {
			descriptions[col.name] = col.description
		}
	}
	for _, col := range dynamicColumns {
		if col.description != "" {
			descriptions[col.name] = col.description
			descriptions[col.name+suffix] = fmt.Sprintf("Given a %s%% down payment... %s", pctText, col.description)
		}
	}
	if withRisk {
		for _, col := range riskColumns {
			descriptions[col.name] = col.description
		}
	}
	return descriptions
}
