package riskseries

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"homeyield/server/internal/finance"
	"homeyield/server/internal/models"
)

// Thresholds guarding the regression against degenerate inputs.
const (
	// Ratio of max to min excess return above which alpha/beta are
	// suppressed.
	extremeValueRatio = 10

	// Residual-to-signal standard deviation ratio above which the linear
	// fit is rejected.
	nonLinearResidualRatio = 0.5
)

// DefaultVaRConfidence is the confidence level for historical VaR when the
// caller does not set one.
const DefaultVaRConfidence = 0.95

// Options parameterize one risk computation run.
type Options struct {
	// Down payment fraction used to amortize the reference loan for
	// leveraged-equity returns.
	DownPaymentPct float64

	// Simplified switches to raw price percent-change returns instead of
	// leveraged equity returns.
	Simplified bool

	// VaRConfidence defaults to DefaultVaRConfidence when zero.
	VaRConfidence float64
}

// Calculator computes per-property time-series risk metrics. Per-property
// work is CPU bound and fans out over a bounded worker pool; the context
// carries the per-request compute budget.
type Calculator struct {
	logger      *logrus.Logger
	workerCount int
}

func NewCalculator(logger *logrus.Logger, workerCount int) *Calculator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if workerCount < 1 {
		workerCount = 1
	}
	return &Calculator{logger: logger, workerCount: workerCount}
}

// Compute returns one risk row per requested property id. Properties with
// no valuation history get every metric marked with ReasonMissingHistory;
// all other failure modes are per-cell sentinels. The only error returned
// is the context's, when the compute budget runs out.
func (c *Calculator) Compute(ctx context.Context, histories map[int64]Series, index, riskFree Series, zpids []int64, opts Options) (map[int64]models.RiskRow, error) {
	if opts.VaRConfidence == 0 {
		opts.VaRConfidence = DefaultVaRConfidence
	}

	rows := make(map[int64]models.RiskRow, len(zpids))
	pending := make([]int64, 0, len(zpids))
	for _, zpid := range zpids {
		if history, ok := histories[zpid]; !ok || history.Len() == 0 {
			rows[zpid] = models.UnavailableRiskRow(zpid, models.ReasonMissingHistory)
			continue
		}
		pending = append(pending, zpid)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workerCount)

	for _, zpid := range pending {
		history := histories[zpid]

		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, fmt.Errorf("risk computation budget exceeded: %w", ctx.Err())
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(zpid int64, history Series) {
			defer wg.Done()
			defer func() { <-sem }()

			row := c.computeRow(zpid, history, index, riskFree, opts)
			mu.Lock()
			rows[zpid] = row
			mu.Unlock()
		}(zpid, history)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("risk computation budget exceeded: %w", err)
	}
	return rows, nil
}

// propertyReturns is the per-property return triple the metrics are built
// from: plain period returns for drawdown, and excess return pairs for the
// regression and distributional metrics.
type propertyReturns struct {
	dates       []time.Time
	plain       []float64
	excessPrice []float64
	excessIndex []float64
}

func buildReturns(history, index, riskFree Series, opts Options) propertyReturns {
	aligned := alignSeries(history, index, riskFree)
	if len(aligned) == 0 {
		return propertyReturns{}
	}

	prices := make([]float64, len(aligned))
	indexVals := make([]float64, len(aligned))
	for i, obs := range aligned {
		prices[i] = obs.Price
		indexVals[i] = obs.Index
	}

	base := prices
	if !opts.Simplified {
		base = equitySeries(prices, opts.DownPaymentPct)
	}

	priceRet, priceOK := pctChange(base)
	indexRet, indexOK := pctChange(indexVals)

	var out propertyReturns
	for i := range priceRet {
		if !priceOK[i] || !indexOK[i] {
			continue
		}
		rf := aligned[i+1].RiskFree
		out.dates = append(out.dates, aligned[i+1].Date)
		out.plain = append(out.plain, priceRet[i])
		out.excessPrice = append(out.excessPrice, priceRet[i]-rf)
		out.excessIndex = append(out.excessIndex, indexRet[i]-rf)
	}
	return out
}

// equitySeries converts a valuation series into owner equity under a loan
// taken at the first observation: price minus outstanding balance, with the
// balance amortized by subtracting a fixed monthly payment at the reference
// APR. This measures leveraged return rather than raw appreciation.
func equitySeries(prices []float64, downPaymentPct float64) []float64 {
	initial := prices[0]
	downPayment := initial * downPaymentPct
	loanAmount := initial - downPayment
	monthlyPayment := loanAmount * (finance.ReferenceAPR / 100) / finance.MonthsInYear

	equity := make([]float64, len(prices))
	for i, price := range prices {
		cumulativePayments := monthlyPayment * float64(i+1)
		equity[i] = price - loanAmount + downPayment - cumulativePayments
	}
	return equity
}

func (c *Calculator) computeRow(zpid int64, history, index, riskFree Series, opts Options) models.RiskRow {
	returns := buildReturns(history, index, riskFree, opts)
	if len(returns.plain) == 0 {
		return models.UnavailableRiskRow(zpid, models.ReasonInsufficientAfterNaN)
	}
	if len(returns.plain) < 2 {
		return models.UnavailableRiskRow(zpid, models.ReasonInsufficientPoints)
	}

	if stat.PopStdDev(returns.excessIndex, nil) == 0 || stat.PopStdDev(returns.excessPrice, nil) == 0 {
		return models.UnavailableRiskRow(zpid, models.ReasonInsufficientVariance)
	}

	row := models.RiskRow{ZPID: zpid}
	row.Alpha, row.Beta = regressionCells(returns.excessIndex, returns.excessPrice)
	row.SharpeRatio = sharpeCell(returns.excessPrice)
	row.SortinoRatio = sortinoCell(returns.excessPrice)
	row.MaxDrawdownPct, row.RecoveryTimeDays = drawdownCells(returns.dates, returns.plain)
	row.KendallTau = models.Ok(finance.Round8(stat.Kendall(returns.excessPrice, returns.excessIndex, nil)))
	row.SpearmanRho = models.Ok(finance.Round8(spearman(returns.excessPrice, returns.excessIndex)))
	row.HistoricalVaR = models.Ok(finance.Round8(-percentile(returns.excessPrice, (1-opts.VaRConfidence)*100)))
	return row
}

// regressionCells runs ordinary least squares of property excess return on
// index excess return, guarding extreme magnitudes and non-linear fits.
func regressionCells(x, y []float64) (alphaCell, betaCell models.Cell) {
	if hasExtremeRatio(x) || hasExtremeRatio(y) {
		c := models.Unavailable(models.ReasonExtremeValues)
		return c, c
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)

	residuals := make([]float64, len(y))
	for i := range y {
		residuals[i] = y[i] - (alpha + beta*x[i])
	}
	if stat.PopStdDev(residuals, nil)/stat.PopStdDev(y, nil) > nonLinearResidualRatio {
		c := models.Unavailable(models.ReasonNonLinearPattern)
		return c, c
	}
	return models.Ok(finance.Round8(alpha)), models.Ok(finance.Round8(beta))
}

func hasExtremeRatio(values []float64) bool {
	min, max := floats.Min(values), floats.Max(values)
	return min != 0 && max/min > extremeValueRatio
}

func sharpeCell(excess []float64) models.Cell {
	std := stat.PopStdDev(excess, nil)
	if std == 0 {
		return models.Unavailable(models.ReasonZeroStdDev)
	}
	return models.Ok(finance.Round8(stat.Mean(excess, nil) / std))
}

func sortinoCell(excess []float64) models.Cell {
	var downside []float64
	for _, r := range excess {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return models.Unavailable(models.ReasonZeroDownsideDev)
	}
	std := stat.PopStdDev(downside, nil)
	if std == 0 {
		return models.Unavailable(models.ReasonZeroDownsideDev)
	}
	return models.Ok(finance.Round8(stat.Mean(excess, nil) / std))
}

// drawdownCells measures the worst peak-to-trough loss of the cumulative
// return path and how long the path took to regain the pre-trough peak.
func drawdownCells(dates []time.Time, plainReturns []float64) (drawdownCell, recoveryCell models.Cell) {
	cumulative := make([]float64, len(plainReturns))
	acc := 1.0
	for i, r := range plainReturns {
		acc *= 1 + r
		cumulative[i] = acc
	}

	peaks := make([]float64, len(cumulative))
	peak := math.Inf(-1)
	for i, v := range cumulative {
		if v > peak {
			peak = v
		}
		peaks[i] = peak
	}

	maxDrawdown := 0.0
	troughIdx := 0
	for i := range cumulative {
		dd := (cumulative[i] - peaks[i]) / peaks[i]
		if dd < maxDrawdown {
			maxDrawdown = dd
			troughIdx = i
		}
	}

	if maxDrawdown == 0 {
		c := models.Unavailable(models.ReasonNoDrawdown)
		return c, c
	}

	drawdownCell = models.Ok(finance.Round2(math.Abs(maxDrawdown) * 100))

	priorPeak := peaks[troughIdx]
	for i := troughIdx; i < len(cumulative); i++ {
		if cumulative[i] >= priorPeak {
			days := dates[i].Sub(dates[troughIdx]).Hours() / 24
			return drawdownCell, models.Ok(math.Floor(days))
		}
	}
	return drawdownCell, models.Unavailable(models.ReasonRecoveryNotAchieved)
}

// spearman is the rank correlation: Pearson correlation over average ranks.
func spearman(x, y []float64) float64 {
	return stat.Correlation(ranks(x), ranks(y), nil)
}

func ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// Ties share the average of their rank range.
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// percentile computes the p-th percentile (0..100) with linear
// interpolation between order statistics, matching numpy's default method.
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	h := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
