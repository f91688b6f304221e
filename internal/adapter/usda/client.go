// Package usda fetches state-level crop yields from the USDA NASS Quick
// Stats API.
package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/couchcryptid/crop-climate-analysis/internal/adapter/httpretry"
	"github.com/couchcryptid/crop-climate-analysis/internal/config"
	"github.com/couchcryptid/crop-climate-analysis/internal/domain"
	"github.com/couchcryptid/crop-climate-analysis/internal/observability"
)

const source = "usda"

// Client fetches survey yield records one crop at a time.
type Client struct {
	apiKey  string
	baseURL string

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	clock      clockwork.Clock
	backoff    httpretry.Backoff

	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a Quick Stats client from configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     cfg.USDA.APIKey,
		baseURL:    cfg.USDA.BaseURL,
		httpClient: &http.Client{Timeout: cfg.USDA.Timeout},
		breaker:    httpretry.NewBreaker("usda"),
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

// FetchYield retrieves state-level survey yields for one crop across the
// year range.
func (c *Client) FetchYield(ctx context.Context, crop string, yearStart, yearEnd int) ([]domain.RawYieldRecord, error) {
	start := c.clock.Now()
	resp, err := httpretry.Do(ctx, c.httpClient, c.breaker, c.clock, c.backoff, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, c.yieldURL(crop, yearStart, yearEnd), nil)
	})
	c.metrics.APIRequestDuration.WithLabelValues(source).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("fetch %s yields: %w", crop, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.FetchErrors.WithLabelValues(source).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("usda API error: status %d: %s", resp.StatusCode, body)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.metrics.FetchErrors.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]domain.RawYieldRecord, 0, len(parsed.Data))
	for _, row := range parsed.Data {
		records = append(records, domain.RawYieldRecord{
			Year:      row.Year.String(),
			StateName: row.StateName,
			Value:     row.Value,
		})
	}

	c.metrics.RecordsFetched.WithLabelValues(source).Add(float64(len(records)))
	c.logger.Info("yield data fetched", "crop", crop, "records", len(records))
	return records, nil
}

// yieldURL builds the Quick Stats query for state-level survey yields.
func (c *Client) yieldURL(crop string, yearStart, yearEnd int) string {
	params := url.Values{
		"key":               {c.apiKey},
		"source_desc":       {"SURVEY"},
		"sector_desc":       {"CROPS"},
		"group_desc":        {"FIELD CROPS"},
		"commodity_desc":    {crop},
		"statisticcat_desc": {"YIELD"},
		"agg_level_desc":    {"STATE"},
		"year__GE":          {strconv.Itoa(yearStart)},
		"year__LE":          {strconv.Itoa(yearEnd)},
		"format":            {"JSON"},
	}
	return c.baseURL + "?" + params.Encode()
}

// Quick Stats API response types. Year arrives as a bare number, Value as
// a string that may carry thousands separators or suppression markers.

type response struct {
	Data []row `json:"data"`
}

type row struct {
	Year      json.Number `json:"year"`
	StateName string      `json:"state_name"`
	Value     string      `json:"Value"`
}

// SetClock overrides the client's time source for tests.
func (c *Client) SetClock(clock clockwork.Clock) { c.clock = clock }
