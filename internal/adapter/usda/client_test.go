package usda

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crop-climate-analysis/internal/adapter/httpretry"
	"github.com/couchcryptid/crop-climate-analysis/internal/observability"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return &Client{
		apiKey:     "test-key",
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		breaker:    httpretry.NewBreaker(t.Name()),
		clock:      clockwork.NewRealClock(),
		backoff:    httpretry.Backoff{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestFetchYield_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "CORN", q.Get("commodity_desc"))
		assert.Equal(t, "YIELD", q.Get("statisticcat_desc"))
		assert.Equal(t, "STATE", q.Get("agg_level_desc"))
		assert.Equal(t, "2015", q.Get("year__GE"))
		assert.Equal(t, "2024", q.Get("year__LE"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"data":[
			{"year":2020,"state_name":"IOWA","Value":"178.5"},
			{"year":2020,"state_name":"OTHER STATES","Value":"1,402"}
		]}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	records, err := c.FetchYield(context.Background(), "CORN", 2015, 2024)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "2020", records[0].Year)
	assert.Equal(t, "IOWA", records[0].StateName)
	assert.Equal(t, "178.5", records[0].Value)
	assert.Equal(t, "1,402", records[1].Value)
}

func TestFetchYield_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchYield(context.Background(), "CORN", 2015, 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestFetchYield_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchYield(context.Background(), "CORN", 2015, 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
