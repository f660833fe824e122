package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeyield/server/internal/models"
)

// fixedClock pins prepaid-escrow proration to June.
func fixedClock() time.Time {
	return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
}

func testProperty(price float64) models.Property {
	return models.Property{
		ZPID:                       1,
		PurchasePrice:              price,
		MonthlyRestimate:           2500,
		AnnualPropertyTaxRate:      1.2,
		AnnualMortgageRate:         6.5,
		MonthlyHomeownersInsurance: 120,
		MonthlyHOA:                 50,
	}
}

func TestMonthlyMortgageRate(t *testing.T) {
	assert.Equal(t, 0.0, MonthlyMortgageRate(0, LoanTermYears))

	// The payment factor at 6.5% over 30 years should sit near the textbook
	// value, less the principal-and-interest deduction.
	rate := MonthlyMortgageRate(0.065, LoanTermYears)
	assert.InDelta(t, 0.0060682, rate, 1e-4)
	assert.Greater(t, rate, 0.0)
}

func TestMonthlyCosts_NonNegative(t *testing.T) {
	calc := NewCalculatorAt(fixedClock)

	for _, price := range []float64{0, 100000, 250000, 750000} {
		for _, pct := range []float64{0.05, 0.10, 0.20, 0.50} {
			monthly, cash, prepaid := calc.MonthlyCosts(testProperty(price), pct, nil)
			assert.GreaterOrEqual(t, monthly, 0.0)
			assert.GreaterOrEqual(t, cash, 0.0)
			assert.GreaterOrEqual(t, prepaid, 0.0)
		}
	}
}

func TestMonthlyCosts_PrepaidTracksCalendarMonth(t *testing.T) {
	p := testProperty(300000)
	monthlyTax := 300000 * (1.2 / 100) / 12

	june := NewCalculatorAt(fixedClock)
	_, _, prepaidJune := june.MonthlyCosts(p, 0.20, nil)
	assert.InDelta(t, (monthlyTax+120)*6, prepaidJune, 1e-9)

	january := NewCalculatorAt(func() time.Time {
		return time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	})
	_, _, prepaidJanuary := january.MonthlyCosts(p, 0.20, nil)
	assert.InDelta(t, monthlyTax+120, prepaidJanuary, 1e-9)
}

func TestMonthlyCosts_OverrideRate(t *testing.T) {
	calc := NewCalculatorAt(fixedClock)
	p := testProperty(300000)

	base, _, _ := calc.MonthlyCosts(p, 0.20, nil)
	lower := 3.0
	discounted, _, _ := calc.MonthlyCosts(p, 0.20, &lower)
	assert.Less(t, discounted, base)
}

func TestBreakevenPrice_NetFlowNearZero(t *testing.T) {
	p := testProperty(300000)
	breakeven := BreakevenPrice(p, 0.20, nil, 0)
	require.Greater(t, breakeven, 0.0)

	// At the breakeven price, income net of the modeled monthly cost rate
	// should vanish.
	annualRate := p.AnnualMortgageRate / 100
	insuranceRate := p.MonthlyHomeownersInsurance / p.PurchasePrice
	monthlyCostRate := MonthlyMaintenanceRate +
		(PMIRate(0.20)/MonthsInYear)*(1-0.20) +
		MonthlyMortgageRate(annualRate, LoanTermYears) +
		(p.AnnualPropertyTaxRate/100)/MonthsInYear +
		insuranceRate

	netFlow := p.MonthlyRestimate*(1-VacancyRate) - p.MonthlyHOA - breakeven*monthlyCostRate
	assert.InDelta(t, 0, netFlow, 1e-6)
}

func TestComputeRow_Idempotent(t *testing.T) {
	calc := NewCalculatorAt(fixedClock)
	params := models.SearchParams{}
	params.Normalize()

	first := calc.ComputeRow(testProperty(300000), params)
	second := calc.ComputeRow(testProperty(300000), params)
	assert.Equal(t, first, second)
}

func TestComputeRow_AdjustedVariantsMatchUnadjusted(t *testing.T) {
	calc := NewCalculatorAt(fixedClock)
	params := models.SearchParams{}
	params.Normalize()

	row := calc.ComputeRow(testProperty(300000), params)
	assert.Equal(t, row.CoC, row.AdjCoC)
	assert.Equal(t, row.CoCNoPrepaids, row.AdjCoCNoPrepaids)
	assert.Equal(t, row.CapRate, row.AdjCapRate)
}

func TestComputeRows_CapRateOrdering(t *testing.T) {
	calc := NewCalculatorAt(fixedClock)
	params := models.SearchParams{}
	params.Normalize()

	properties := []models.Property{
		testProperty(200000),
		testProperty(300000),
		testProperty(400000),
	}
	for i := range properties {
		properties[i].ZPID = int64(i + 1)
	}

	rows := calc.ComputeRows(properties, params)
	require.Len(t, rows, 3)

	// Identical rent against rising prices means rent-to-price, and with it
	// cap rate, strictly falls.
	assert.Greater(t, rows[0].CapRate, rows[1].CapRate)
	assert.Greater(t, rows[1].CapRate, rows[2].CapRate)
}

func TestComputeRow_ZeroPriceProperty(t *testing.T) {
	calc := NewCalculatorAt(fixedClock)
	params := models.SearchParams{}
	params.Normalize()

	// A zero-priced row must not divide by zero anywhere.
	row := calc.ComputeRow(testProperty(0), params)
	assert.Equal(t, 0.0, row.CapRate)
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, -1.23, Round2(-1.2345))
	assert.Equal(t, 0.12345678, Round8(0.123456784))
}
