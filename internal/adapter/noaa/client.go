// Package noaa fetches monthly climate summaries from the NOAA Climate
// Data Online v2 API.
package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/couchcryptid/crop-climate-analysis/internal/adapter/httpretry"
	"github.com/couchcryptid/crop-climate-analysis/internal/config"
	"github.com/couchcryptid/crop-climate-analysis/internal/domain"
	"github.com/couchcryptid/crop-climate-analysis/internal/observability"
)

const (
	source   = "noaa"
	pageSize = 1000
)

// Client fetches climate observations station by station, year by year.
// A failed chunk is logged, counted, and skipped; the fetch as a whole
// carries on with whatever the API did return.
type Client struct {
	token     string
	baseURL   string
	dataset   string
	datatypes []string

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	clock      clockwork.Clock
	backoff    httpretry.Backoff

	metrics  *observability.Metrics
	logger   *slog.Logger
	progress ProgressTracker
}

// ProgressTracker is notified as each station-year chunk completes,
// whether it succeeded or was skipped.
type ProgressTracker interface {
	ChunkDone()
}

// NewClient creates a NOAA CDO client from configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      cfg.NOAA.Token,
		baseURL:    cfg.NOAA.BaseURL,
		dataset:    cfg.NOAA.Dataset,
		datatypes:  cfg.NOAA.Datatypes,
		httpClient: &http.Client{Timeout: cfg.NOAA.Timeout},
		breaker:    httpretry.NewBreaker("noaa"),
		clock:      clockwork.NewRealClock(),
		backoff: httpretry.Backoff{
			MaxRetries: cfg.Fetch.MaxRetries,
			BaseDelay:  cfg.Fetch.RetryBaseDelay,
			MaxDelay:   cfg.Fetch.RetryMaxDelay,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchStations retrieves observations for every configured station across
// the year range. Station entries may carry a state code suffix,
// "GHCND:USW00094846=MI", which is attached to each record so state-keyed
// aggregation can use it. Per-station failures never abort the whole fetch;
// the error is non-nil only when the context ends.
func (c *Client) FetchStations(ctx context.Context, stations []string, yearStart, yearEnd int) ([]domain.RawClimateRecord, error) {
	var records []domain.RawClimateRecord

	for _, entry := range stations {
		stationID, state := splitStationEntry(entry)
		for year := yearStart; year <= yearEnd; year++ {
			if err := ctx.Err(); err != nil {
				return records, err
			}

			chunk, err := c.fetchYear(ctx, stationID, year)
			if c.progress != nil {
				c.progress.ChunkDone()
			}
			if err != nil {
				c.logger.Warn("climate chunk skipped",
					"station", stationID, "year", year, "error", err)
				c.metrics.FetchErrors.WithLabelValues(source).Inc()
				c.metrics.ChunksSkipped.WithLabelValues(source).Inc()
				continue
			}

			for i := range chunk {
				chunk[i].State = state
			}
			records = append(records, chunk...)
			c.metrics.RecordsFetched.WithLabelValues(source).Add(float64(len(chunk)))
		}
		c.logger.Info("station fetched", "station", stationID, "records", len(records))
	}

	return records, nil
}

// fetchYear retrieves one station-year, following pagination until the
// reported result count is exhausted.
func (c *Client) fetchYear(ctx context.Context, stationID string, year int) ([]domain.RawClimateRecord, error) {
	var records []domain.RawClimateRecord

	offset := 1
	for {
		page, total, err := c.fetchPage(ctx, stationID, year, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)

		offset += pageSize
		if len(page) == 0 || offset > total {
			return records, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, stationID string, year, offset int) ([]domain.RawClimateRecord, int, error) {
	start := c.clock.Now()
	resp, err := httpretry.Do(ctx, c.httpClient, c.breaker, c.clock, c.backoff, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, c.dataURL(stationID, year, offset), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("token", c.token)
		return req, nil
	})
	c.metrics.APIRequestDuration.WithLabelValues(source).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("noaa API error: status %d: %s", resp.StatusCode, body)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	records := make([]domain.RawClimateRecord, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		records = append(records, domain.RawClimateRecord{
			Date:     r.Date,
			Datatype: r.Datatype,
			Value:    strconv.FormatFloat(r.Value, 'f', -1, 64),
		})
	}
	return records, parsed.Metadata.Resultset.Count, nil
}

func (c *Client) dataURL(stationID string, year, offset int) string {
	params := url.Values{
		"datasetid": {c.dataset},
		"stationid": {stationID},
		"startdate": {fmt.Sprintf("%d-01-01", year)},
		"enddate":   {fmt.Sprintf("%d-12-31", year)},
		"limit":     {strconv.Itoa(pageSize)},
		"offset":    {strconv.Itoa(offset)},
		"units":     {"metric"},
	}
	for _, dt := range c.datatypes {
		params.Add("datatypeid", dt)
	}
	return c.baseURL + "/data?" + params.Encode()
}

// splitStationEntry parses an optional "=STATE" suffix on a configured
// station ID.
func splitStationEntry(entry string) (stationID, state string) {
	if i := strings.LastIndex(entry, "="); i >= 0 {
		return entry[:i], strings.ToUpper(strings.TrimSpace(entry[i+1:]))
	}
	return entry, ""
}

// NOAA CDO API response types.

type response struct {
	Metadata metadata `json:"metadata"`
	Results  []result `json:"results"`
}

type metadata struct {
	Resultset resultset `json:"resultset"`
}

type resultset struct {
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
}

type result struct {
	Date     string  `json:"date"`
	Datatype string  `json:"datatype"`
	Station  string  `json:"station"`
	Value    float64 `json:"value"`
}

// SetClock overrides the client's time source; tests use a fake clock so
// retry backoff does not sleep for real.
func (c *Client) SetClock(clock clockwork.Clock) { c.clock = clock }

// SetProgress attaches a chunk completion tracker.
func (c *Client) SetProgress(p ProgressTracker) { c.progress = p }
