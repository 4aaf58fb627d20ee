package facades

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
)

// DefaultECBURL is the ECB daily reference-rate feed: one observation per
// currency against EUR, CSV format.
const DefaultECBURL = "https://data-api.ecb.europa.eu/service/data/EXR/D..EUR.SP00.A?format=csvdata&lastNObservations=1"

// Columns of interest in the ECB csvdata layout.
const (
	columnCurrency   = "CURRENCY"
	columnTimePeriod = "TIME_PERIOD"
	columnObsValue   = "OBS_VALUE"
)

// ECBClient fetches the daily rate feed over HTTP and parses it into raw rows.
type ECBClient struct {
	client *http.Client
	url    string
}

// NewECBClient creates a feed client. An empty url selects DefaultECBURL.
// The timeout bounds the whole fetch including body read.
func NewECBClient(url string, timeout time.Duration) *ECBClient {
	if url == "" {
		url = DefaultECBURL
	}
	return &ECBClient{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

// FetchDaily downloads the feed and returns its rows unvalidated. Rows with
// missing cells come back with empty fields; filtering them out is the
// caller's job. Any transport, HTTP or CSV structure error fails the fetch.
func (c *ECBClient) FetchDaily(ctx context.Context) ([]models.RateRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Log.Errorw("failed to fetch rate feed", "url", c.url, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Errorw("rate feed returned non-OK status", "url", c.url, "status", resp.StatusCode)
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	rows, err := parseCSV(resp.Body)

	logger.Log.Infow("fetched rate feed",
		"url", c.url,
		"rows", len(rows),
		"error", err,
	)

	return rows, err
}

// parseCSV reads the csvdata payload and extracts the three columns the
// service cares about, located by header name.
func parseCSV(r io.Reader) ([]models.RateRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed header: %w", err)
	}

	idx := map[string]int{
		columnCurrency:   -1,
		columnTimePeriod: -1,
		columnObsValue:   -1,
	}
	for i, name := range header {
		if _, ok := idx[name]; ok {
			idx[name] = i
		}
	}
	for name, i := range idx {
		if i < 0 {
			return nil, fmt.Errorf("feed header is missing column %s", name)
		}
	}

	cell := func(record []string, i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}

	var rows []models.RateRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read feed row: %w", err)
		}
		rows = append(rows, models.RateRow{
			Currency:   cell(record, idx[columnCurrency]),
			TimePeriod: cell(record, idx[columnTimePeriod]),
			Value:      cell(record, idx[columnObsValue]),
		})
	}

	return rows, nil
}
