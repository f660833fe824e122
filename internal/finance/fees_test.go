package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedFeeTotal(t *testing.T) {
	assert.Equal(t, 1790, FixedFeeTotal)
}

func TestPMIRate_ZeroAtTwentyPercent(t *testing.T) {
	assert.Equal(t, 0.0, PMIRate(0.20))
	assert.Equal(t, 0.0, PMIRate(0.25))
	assert.Equal(t, 0.0, PMIRate(1.0))
}

func TestPMIRate_TabulatedBreakpoints(t *testing.T) {
	tests := []struct {
		downPayment float64
		expected    float64
	}{
		{0.03, 0.006},
		{0.05, 0.0045},
		{0.10, 0.003},
		{0.15, 0.0015},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, PMIRate(tt.downPayment), 1e-12,
			"down payment %.2f", tt.downPayment)
	}
}

func TestPMIRate_Interpolation(t *testing.T) {
	// Midway between the 5% and 10% breakpoints.
	assert.InDelta(t, 0.00375, PMIRate(0.075), 1e-12)

	// Below the lowest breakpoint the highest rate applies.
	assert.Equal(t, 0.006, PMIRate(0.01))
}

func TestPMIRate_MonotonicNonIncreasing(t *testing.T) {
	previous := PMIRate(0.0)
	for pct := 0.005; pct <= 0.25; pct += 0.005 {
		current := PMIRate(pct)
		assert.LessOrEqual(t, current, previous, "PMI rate increased at %.3f", pct)
		previous = current
	}
}

func TestPurchaseFees_BelowTitleThreshold(t *testing.T) {
	// Under 100k the title fees stay at their base amounts.
	fees := PurchaseFees(80000, 0.20)
	financed := 80000 * 0.80
	expected := 0.0075*80000 + 575 + 40 + (0.0035+0.007)*financed + 0.002*financed
	assert.InDelta(t, expected, fees, 1e-9)
}

func TestPurchaseFees_AboveTitleThreshold(t *testing.T) {
	fees := PurchaseFees(300000, 0.20)
	financed := 300000 * 0.80
	excessThousands := 200.0
	expected := 0.0075*300000 +
		(575 + 5*excessThousands) +
		(40 + 2.4411138235*excessThousands) +
		(0.0035+0.007)*financed + 0.002*financed
	assert.InDelta(t, expected, fees, 1e-9)
}

func TestPurchaseFees_GrowsWithPrice(t *testing.T) {
	assert.Less(t, PurchaseFees(200000, 0.20), PurchaseFees(400000, 0.20))
}
