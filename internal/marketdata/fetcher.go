package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"homeyield/server/internal/riskseries"
)

// Fetcher downloads the full adjusted-close history for a ticker. The
// production implementation hits the quote provider; tests inject fakes so
// staleness logic runs without the network.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (riskseries.Series, error)
}

// HTTPFetcher pulls daily historical quotes as CSV from the Yahoo Finance
// download endpoint.
type HTTPFetcher struct {
	logger  *logrus.Logger
	client  *http.Client
	baseURL string
}

func NewHTTPFetcher(logger *logrus.Logger, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://query1.finance.yahoo.com/v7/finance/download",
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, symbol string) (riskseries.Series, error) {
	endpoint := fmt.Sprintf("%s/%s", f.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return riskseries.Series{}, fmt.Errorf("failed to create request: %v", err)
	}

	params := url.Values{
		"period1":  []string{"0"},
		"period2":  []string{strconv.FormatInt(time.Now().Unix(), 10)},
		"interval": []string{"1d"},
		"events":   []string{"history"},
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", "HomeYield Metrics Server/1.0")

	f.logger.WithField("symbol", symbol).Info("Downloading ticker history")

	resp, err := f.client.Do(req)
	if err != nil {
		return riskseries.Series{}, fmt.Errorf("quote request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return riskseries.Series{}, fmt.Errorf("quote request for %s returned status %d", symbol, resp.StatusCode)
	}

	series, err := parseQuoteCSV(resp.Body)
	if err != nil {
		return riskseries.Series{}, fmt.Errorf("failed to parse quotes for %s: %v", symbol, err)
	}
	return series, nil
}

// parseQuoteCSV reads a Yahoo-style daily history CSV, keeping the Date and
// Adj Close columns. Rows with a missing adjusted close are dropped.
func parseQuoteCSV(r io.Reader) (riskseries.Series, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return riskseries.Series{}, fmt.Errorf("failed to read header: %v", err)
	}

	dateCol, closeCol := -1, -1
	for i, name := range header {
		switch name {
		case "Date":
			dateCol = i
		case "Adj Close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return riskseries.Series{}, fmt.Errorf("missing Date or Adj Close column")
	}

	var series riskseries.Series
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return riskseries.Series{}, fmt.Errorf("failed to read row: %v", err)
		}

		date, err := time.Parse("2006-01-02", record[dateCol])
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(record[closeCol], 64)
		if err != nil {
			continue
		}
		series.Dates = append(series.Dates, date)
		series.Values = append(series.Values, value)
	}

	series.Sort()
	return series, nil
}
