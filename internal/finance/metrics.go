package finance

import (
	"math"
	"time"

	"homeyield/server/internal/models"
)

const (
	// VacancyRate discounts rental income for expected vacancy.
	VacancyRate = 0.1

	// MonthlyMaintenanceRate models upkeep as a fraction of purchase price
	// per month.
	MonthlyMaintenanceRate = 0.00017
)

// Calculator derives per-property investment metrics from the catalog and
// per-request financing parameters. The clock decides the calendar month
// used to prorate prepaid escrow and is injectable for tests.
type Calculator struct {
	now func() time.Time
}

func NewCalculator() *Calculator {
	return &Calculator{now: time.Now}
}

// NewCalculatorAt fixes the calculator's clock. Intended for tests.
func NewCalculatorAt(now func() time.Time) *Calculator {
	return &Calculator{now: now}
}

// effectiveAnnualRate picks the listing-implied mortgage rate unless the
// request overrides it. Both are percent values.
func effectiveAnnualRate(p models.Property, override *float64) float64 {
	if override != nil {
		return *override
	}
	return p.AnnualMortgageRate
}

// MonthlyCosts returns (monthly costs, cash invested, prepaid escrow) for a
// property at the given down payment fraction. Monthly costs sum the
// mortgage payment, PMI, property tax twelfth, insurance and HOA; cash
// invested sums the down payment, fixed closing fees, prepaid escrow and
// purchase fees.
func (c *Calculator) MonthlyCosts(p models.Property, downPaymentPct float64, overrideRate *float64) (monthlyCosts, cashInvested, prepaidCosts float64) {
	downPayment := p.PurchasePrice * downPaymentPct
	loanAmount := p.PurchasePrice - downPayment

	annualRate := effectiveAnnualRate(p, overrideRate) / 100
	monthlyMortgagePayment := loanAmount * MonthlyMortgageRate(annualRate, LoanTermYears)
	monthlyPropertyTax := p.PurchasePrice * (p.AnnualPropertyTaxRate / 100) / MonthsInYear
	monthlyPMI := p.PurchasePrice * PMIRate(downPaymentPct) / MonthsInYear

	monthlyCosts = monthlyMortgagePayment + monthlyPMI + monthlyPropertyTax +
		p.MonthlyHomeownersInsurance + p.MonthlyHOA

	// Escrow is prorated by how far into the calendar year the closing
	// falls.
	currentMonth := float64(c.now().Month())
	prepaidCosts = (monthlyPropertyTax + p.MonthlyHomeownersInsurance) * currentMonth

	cashInvested = downPayment + FixedFeeTotal + prepaidCosts + PurchaseFees(p.PurchasePrice, downPaymentPct)
	return monthlyCosts, cashInvested, prepaidCosts
}

// BreakevenPrice solves, in closed form, for the purchase price at which net
// monthly cash flow hits the target annual rate (zero by default). The cost
// side is modeled as a price-proportional rate: maintenance, PMI on the
// financed fraction, mortgage, tax twelfth, and insurance relative to the
// listed price.
func BreakevenPrice(p models.Property, downPaymentPct float64, overrideRate *float64, annualCashFlowRate float64) float64 {
	insuranceRate := 0.0
	if p.PurchasePrice > 0 {
		insuranceRate = p.MonthlyHomeownersInsurance / p.PurchasePrice
	}
	annualRate := effectiveAnnualRate(p, overrideRate) / 100
	monthlyCostRate := MonthlyMaintenanceRate +
		(PMIRate(downPaymentPct)/MonthsInYear)*(1-downPaymentPct) +
		MonthlyMortgageRate(annualRate, LoanTermYears) +
		(p.AnnualPropertyTaxRate/100)/MonthsInYear +
		insuranceRate

	denominator := monthlyCostRate + annualCashFlowRate/MonthsInYear
	if denominator == 0 {
		return 0
	}
	return (p.MonthlyRestimate*(1-VacancyRate) - p.MonthlyHOA) / denominator
}

// ComputeRow derives the full metrics row for one property. Outputs are
// rounded to 2 decimal places; intermediates keep full precision.
func (c *Calculator) ComputeRow(p models.Property, params models.SearchParams) models.MetricsRow {
	monthlyCosts, cashInvested, prepaidCosts := c.MonthlyCosts(p, params.DownPaymentPct, params.OverrideAnnualMortgageRate)

	monthlyRentalIncome := p.MonthlyRestimate*(1-VacancyRate) - monthlyCosts - MonthlyMaintenanceRate*p.PurchasePrice
	breakevenPrice := BreakevenPrice(p, params.DownPaymentPct, params.OverrideAnnualMortgageRate, 0)
	isOffending := math.Abs(p.PurchasePrice-breakevenPrice) > 0.2*p.PurchasePrice

	annualRentalIncome := MonthsInYear * monthlyRentalIncome
	coc := safeDivide(annualRentalIncome, cashInvested-prepaidCosts)
	cocNoPrepaids := safeDivide(annualRentalIncome, cashInvested)
	capRate := safeDivide(annualRentalIncome, p.PurchasePrice)

	return models.MetricsRow{
		ZPID:                      p.ZPID,
		MonthlyCosts:              Round2(monthlyCosts),
		CashInvested:              Round2(cashInvested),
		PrepaidCosts:              Round2(prepaidCosts),
		MonthlyRentalIncome:       Round2(monthlyRentalIncome),
		BreakevenPrice:            Round2(breakevenPrice),
		IsBreakevenPriceOffending: isOffending,
		CoC:                       Round2(coc),
		// The adjusted variants equal their unadjusted counterparts.
		AdjCoC:           Round2(coc),
		CoCNoPrepaids:    Round2(cocNoPrepaids),
		AdjCoCNoPrepaids: Round2(cocNoPrepaids),
		CapRate:          Round2(capRate),
		AdjCapRate:       Round2(capRate),
	}
}

// ComputeRows derives a metrics row for every property, in input order. The
// result is deterministic for a fixed (catalog snapshot, parameters) pair.
func (c *Calculator) ComputeRows(properties []models.Property, params models.SearchParams) []models.MetricsRow {
	rows := make([]models.MetricsRow, len(properties))
	for i, p := range properties {
		rows[i] = c.ComputeRow(p, params)
	}
	return rows
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Round2 rounds to 2 decimal places for monetary and ratio outputs.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round8 rounds to 8 decimal places for statistical outputs.
func Round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
