package finance

import "sort"

// Fixed closing fees charged regardless of purchase price.
const (
	creditReportFee               = 35
	appraisalFee                  = 375 // between 325 and 425
	floodLifeOfLoanFee            = 20  // certified flood inspector, decides if flood insurance is required
	taxServiceFee                 = 85  // required by lender to insure buyer pays property taxes
	closingEscrowAndSettlementFee = 750 // paid to title or escrow company at closing
	recordingFee                  = 225 // government recording of deed, mortgage and registered documents
	surveyFee                     = 300
)

// FixedFeeTotal is the sum of the flat closing fees above.
const FixedFeeTotal = creditReportFee + appraisalFee + floodLifeOfLoanFee +
	taxServiceFee + closingEscrowAndSettlementFee + recordingFee + surveyFee

// Florida jurisdictional fee schedule.
const (
	floridaOriginationFeeRate            = 0.0075
	floridaLendersTitleInsuranceBaseFee  = 575
	floridaLendersTitleInsuranceRate     = 5 // per $1000 above the threshold
	floridaOwnersTitleInsuranceBaseFee   = 40
	floridaOwnersTitleInsuranceRate      = 2.4411138235 // per $1000 above the threshold
	floridaTitleInsurancePriceThreshold  = 100000
	floridaMortgagesTaxRate              = 0.0035
	floridaDeedsTaxRate                  = 0.007
	floridaIntangibleTaxRate             = 0.002
)

// downPaymentToAnnualPMIRate is the PMI breakpoint table, from
// https://www.newcastle.loans/mortgage-guide/mortgage-insurance-pmi
var downPaymentToAnnualPMIRate = map[float64]float64{
	0.03: 0.006,
	0.05: 0.0045,
	0.10: 0.003,
	0.15: 0.0015,
	0.20: 0,
}

// PMIRate returns the annual private-mortgage-insurance rate for a down
// payment fraction. Zero at or above 20% down; below the lowest tabulated
// breakpoint the highest tabulated rate applies; in between, rates are
// linearly interpolated.
func PMIRate(downPaymentPct float64) float64 {
	if downPaymentPct >= 0.20 {
		return 0
	}

	breakpoints := make([]float64, 0, len(downPaymentToAnnualPMIRate))
	for dp := range downPaymentToAnnualPMIRate {
		breakpoints = append(breakpoints, dp)
	}
	sort.Float64s(breakpoints)

	if downPaymentPct < breakpoints[0] {
		return downPaymentToAnnualPMIRate[breakpoints[0]]
	}

	for i := 1; i < len(breakpoints); i++ {
		lo, hi := breakpoints[i-1], breakpoints[i]
		if downPaymentPct <= hi {
			loRate, hiRate := downPaymentToAnnualPMIRate[lo], downPaymentToAnnualPMIRate[hi]
			return loRate + (hiRate-loRate)*(downPaymentPct-lo)/(hi-lo)
		}
	}
	return 0
}

// PurchaseFees returns the jurisdiction-specific purchase fees for a price
// and down payment fraction: origination, tiered title insurance, and stamp
// and intangible taxes on the financed amount.
func PurchaseFees(purchasePrice, downPaymentPct float64) float64 {
	originationFee := floridaOriginationFeeRate * purchasePrice

	lendersTitleInsuranceFee := float64(floridaLendersTitleInsuranceBaseFee)
	ownersTitleInsuranceFee := float64(floridaOwnersTitleInsuranceBaseFee)
	if purchasePrice >= floridaTitleInsurancePriceThreshold {
		excessThousands := (purchasePrice - floridaTitleInsurancePriceThreshold) / 1000
		lendersTitleInsuranceFee += floridaLendersTitleInsuranceRate * excessThousands
		ownersTitleInsuranceFee += floridaOwnersTitleInsuranceRate * excessThousands
	}

	financedAmount := purchasePrice * (1 - downPaymentPct)
	stampTaxes := (floridaMortgagesTaxRate + floridaDeedsTaxRate) * financedAmount
	intangibleTax := floridaIntangibleTaxRate * financedAmount

	return originationFee + lendersTitleInsuranceFee + ownersTitleInsuranceFee + stampTaxes + intangibleTax
}
