package models

import (
	"encoding/json"
	"fmt"
)

// ReasonCode explains why a risk metric could not be computed for a cell.
type ReasonCode string

const (
	ReasonMissingHistory       ReasonCode = "Missing zestimate history"
	ReasonInsufficientAfterNaN ReasonCode = "Insufficient data after dropping NaNs"
	ReasonInsufficientPoints   ReasonCode = "Insufficient data points"
	ReasonInsufficientVariance ReasonCode = "Insufficient variance in returns"
	ReasonExtremeValues        ReasonCode = "Extreme values detected"
	ReasonNonLinearPattern     ReasonCode = "Non-linear pattern detected"
	ReasonZeroStdDev           ReasonCode = "Zero standard deviation in returns"
	ReasonZeroDownsideDev      ReasonCode = "Zero downside deviation in returns"
	ReasonNoDrawdown           ReasonCode = "No drawdown detected"
	ReasonRecoveryNotAchieved  ReasonCode = "Recovery not achieved"
)

// Cell is a value-or-reason result for a single risk metric. Every cell in a
// RiskRow is independently computable and independently failable, so callers
// always receive a complete row shape.
type Cell struct {
	Value  float64
	Reason ReasonCode
	Valid  bool
}

// Ok returns a cell holding a computed metric value.
func Ok(v float64) Cell {
	return Cell{Value: v, Valid: true}
}

// Unavailable returns a cell carrying the reason the metric could not be
// computed.
func Unavailable(reason ReasonCode) Cell {
	return Cell{Reason: reason}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Valid {
		return json.Marshal(c.Value)
	}
	return json.Marshal(string(c.Reason))
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*c = Ok(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode metric cell: %w", err)
	}
	*c = Unavailable(ReasonCode(s))
	return nil
}

// RiskRow holds the time-series risk metrics for one property.
type RiskRow struct {
	ZPID             int64 `json:"zpid"`
	Alpha            Cell  `json:"Alpha"`
	Beta             Cell  `json:"Beta"`
	SharpeRatio      Cell  `json:"Sharpe Ratio"`
	SortinoRatio     Cell  `json:"Sortino Ratio"`
	MaxDrawdownPct   Cell  `json:"Max Drawdown (%)"`
	RecoveryTimeDays Cell  `json:"Recovery Time (Days)"`
	KendallTau       Cell  `json:"Kendall Tau"`
	SpearmanRho      Cell  `json:"Spearman Rho"`
	HistoricalVaR    Cell  `json:"Historical VaR"`
}

// UnavailableRiskRow returns a row with every metric carrying the same
// reason, e.g. for properties with no valuation history at all.
func UnavailableRiskRow(zpid int64, reason ReasonCode) RiskRow {
	c := Unavailable(reason)
	return RiskRow{
		ZPID:             zpid,
		Alpha:            c,
		Beta:             c,
		SharpeRatio:      c,
		SortinoRatio:     c,
		MaxDrawdownPct:   c,
		RecoveryTimeDays: c,
		KendallTau:       c,
		SpearmanRho:      c,
		HistoricalVaR:    c,
	}
}
