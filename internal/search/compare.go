package search

import (
	"homeyield/server/internal/catalog"
	"homeyield/server/internal/finance"
	"homeyield/server/internal/models"
)

// Compare sums purchase price, monthly costs, cash invested and rental
// income per caller-supplied group of property IDs. Unknown IDs are skipped;
// a group with no known IDs still yields a zero-valued aggregate row so the
// output shape matches the input groups.
func (e *Engine) Compare(snapshot *catalog.Snapshot, groups []models.CompareGroup, params models.SearchParams) []models.CompareAggregate {
	aggregates := make([]models.CompareAggregate, 0, len(groups))
	for _, group := range groups {
		agg := models.CompareAggregate{GroupID: group.GroupID}
		for _, zpid := range group.ZPIDs {
			p, ok := snapshot.Get(zpid)
			if !ok {
				e.logger.WithField("zpid", zpid).Warn("Compare group references unknown property")
				continue
			}
			row := e.calc.ComputeRow(p, params)
			agg.PropertyCount++
			agg.TotalPurchasePrice += p.PurchasePrice
			agg.TotalMonthlyCosts += row.MonthlyCosts
			agg.TotalCashInvested += row.CashInvested
			agg.TotalRentalIncome += row.MonthlyRentalIncome
		}
		agg.TotalPurchasePrice = finance.Round2(agg.TotalPurchasePrice)
		agg.TotalMonthlyCosts = finance.Round2(agg.TotalMonthlyCosts)
		agg.TotalCashInvested = finance.Round2(agg.TotalCashInvested)
		agg.TotalRentalIncome = finance.Round2(agg.TotalRentalIncome)
		aggregates = append(aggregates, agg)
	}
	return aggregates
}
