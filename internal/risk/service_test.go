package risk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeyield/server/internal/catalog"
	"homeyield/server/internal/marketdata"
	"homeyield/server/internal/models"
	"homeyield/server/internal/riskseries"
)

type fixedFetcher struct {
	series riskseries.Series
	calls  int
}

func (f *fixedFetcher) Fetch(ctx context.Context, symbol string) (riskseries.Series, error) {
	f.calls++
	return f.series, nil
}

func fixtureSeries(values []float64) riskseries.Series {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	s := riskseries.Series{Values: values}
	for i := range values {
		s.Dates = append(s.Dates, base.AddDate(0, 0, i*10))
	}
	return s
}

func testService(t *testing.T) (*Service, *catalog.Snapshot, *fixedFetcher) {
	t.Helper()

	fetcher := &fixedFetcher{series: fixtureSeries([]float64{100, 110, 99, 118.8, 112.86})}
	store := marketdata.NewStore(nil, t.TempDir(), 24*time.Hour, fetcher)
	calc := riskseries.NewCalculator(nil, 2)

	service, err := NewService(calc, store, 10*time.Second, 0.95, 4, nil)
	require.NoError(t, err)

	histories := map[int64]riskseries.Series{
		1: fixtureSeries([]float64{100000, 110000, 99000, 118800, 112860}),
	}
	snapshot := catalog.NewSnapshot([]models.Property{{ZPID: 1}, {ZPID: 2}}, histories)
	return service, snapshot, fetcher
}

func TestRows_ComputesAndFillsMissing(t *testing.T) {
	service, snapshot, _ := testService(t)

	rows, err := service.Rows(context.Background(), snapshot, []int64{1, 2}, models.SearchParams{DownPaymentPct: 0.20})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[1].SharpeRatio.Valid)
	assert.Equal(t, models.ReasonMissingHistory, rows[2].SharpeRatio.Reason)
}

func TestRows_CachesTablePerKey(t *testing.T) {
	service, snapshot, fetcher := testService(t)
	params := models.SearchParams{DownPaymentPct: 0.20}

	_, err := service.Rows(context.Background(), snapshot, []int64{1}, params)
	require.NoError(t, err)
	callsAfterFirst := fetcher.calls

	// A second request with the same key hits the table cache, not the
	// store.
	_, err = service.Rows(context.Background(), snapshot, []int64{1, 2}, params)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, fetcher.calls)

	// A different down payment is a different table.
	_, err = service.Rows(context.Background(), snapshot, []int64{1}, models.SearchParams{DownPaymentPct: 0.10})
	require.NoError(t, err)
}

func TestRows_UnknownTickerFallsBackToDefault(t *testing.T) {
	service, snapshot, _ := testService(t)

	rows, err := service.Rows(context.Background(), snapshot, []int64{1}, models.SearchParams{
		DownPaymentPct: 0.20,
		IndexTicker:    "NOT_A_TICKER",
	})
	require.NoError(t, err)
	assert.Contains(t, rows, int64(1))
}

func TestPurgeDropsCachedTables(t *testing.T) {
	service, snapshot, _ := testService(t)
	params := models.SearchParams{DownPaymentPct: 0.20}

	_, err := service.Rows(context.Background(), snapshot, []int64{1}, params)
	require.NoError(t, err)

	service.Purge()
	assert.Equal(t, 0, service.cache.Len())
}
