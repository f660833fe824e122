package riskseries

import (
	"sort"
	"time"
)

// Series is a date-indexed sequence of float observations, sorted ascending
// by date. Dates and Values are parallel slices.
type Series struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Dates)
}

// Sort orders the series ascending by date, keeping the slices parallel.
func (s *Series) Sort() {
	idx := make([]int, len(s.Dates))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Dates[idx[a]].Before(s.Dates[idx[b]])
	})

	dates := make([]time.Time, len(s.Dates))
	values := make([]float64, len(s.Values))
	for i, j := range idx {
		dates[i] = s.Dates[j]
		values[i] = s.Values[j]
	}
	s.Dates, s.Values = dates, values
}

// From returns the sub-series at or after the given date. The returned
// series shares backing arrays with the receiver.
func (s Series) From(start time.Time) Series {
	i := sort.Search(len(s.Dates), func(i int) bool {
		return !s.Dates[i].Before(start)
	})
	return Series{Dates: s.Dates[i:], Values: s.Values[i:]}
}

// Nearest returns the value whose date is closest to the target, preferring
// the earlier one on an exact tie. The second return is false for an empty
// series.
func (s Series) Nearest(target time.Time) (float64, bool) {
	n := len(s.Dates)
	if n == 0 {
		return 0, false
	}
	i := sort.Search(n, func(i int) bool {
		return !s.Dates[i].Before(target)
	})
	if i == 0 {
		return s.Values[0], true
	}
	if i == n {
		return s.Values[n-1], true
	}
	after := s.Dates[i].Sub(target)
	before := target.Sub(s.Dates[i-1])
	if before <= after {
		return s.Values[i-1], true
	}
	return s.Values[i], true
}

// alignedObservation is one row of a property series joined as-of against
// the market index and risk-free series.
type alignedObservation struct {
	Date     time.Time
	Price    float64
	Index    float64
	RiskFree float64
}

// alignSeries joins a property valuation series against the index and
// risk-free series by nearest date, anchored at the property's earliest
// observation.
func alignSeries(history, index, riskFree Series) []alignedObservation {
	if history.Len() == 0 || index.Len() == 0 || riskFree.Len() == 0 {
		return nil
	}

	start := history.Dates[0]
	index = index.From(start)
	riskFree = riskFree.From(start)
	if index.Len() == 0 || riskFree.Len() == 0 {
		return nil
	}

	aligned := make([]alignedObservation, 0, history.Len())
	for i, date := range history.Dates {
		indexVal, ok := index.Nearest(date)
		if !ok {
			continue
		}
		rfVal, ok := riskFree.Nearest(date)
		if !ok {
			continue
		}
		aligned = append(aligned, alignedObservation{
			Date:     date,
			Price:    history.Values[i],
			Index:    indexVal,
			RiskFree: rfVal,
		})
	}
	return aligned
}

// pctChange returns period-over-period percent changes; the first element
// has no predecessor and is dropped, so the result is one shorter than the
// input. A zero predecessor yields a NaN-free skip by reporting ok=false in
// the parallel validity slice.
func pctChange(values []float64) ([]float64, []bool) {
	if len(values) < 2 {
		return nil, nil
	}
	changes := make([]float64, len(values)-1)
	valid := make([]bool, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			changes[i-1] = (values[i] - values[i-1]) / values[i-1]
			valid[i-1] = true
		}
	}
	return changes, valid
}
