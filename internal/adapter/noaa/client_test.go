package noaa

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crop-climate-analysis/internal/adapter/httpretry"
	"github.com/couchcryptid/crop-climate-analysis/internal/observability"
)

const testToken = "test-token"

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return &Client{
		token:      testToken,
		baseURL:    baseURL,
		dataset:    "GSOM",
		datatypes:  []string{"TAVG", "PRCP"},
		httpClient: &http.Client{Timeout: 5 * time.Second},
		breaker:    httpretry.NewBreaker(t.Name()),
		clock:      clockwork.NewRealClock(),
		backoff:    httpretry.Backoff{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func writeResults(t *testing.T, w http.ResponseWriter, count int, results []result) {
	t.Helper()
	resp := response{
		Metadata: metadata{Resultset: resultset{Count: count, Limit: pageSize}},
		Results:  results,
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestFetchStations_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testToken, r.Header.Get("token"))
		assert.Equal(t, "GSOM", r.URL.Query().Get("datasetid"))
		assert.Equal(t, "GHCND:USW00023174", r.URL.Query().Get("stationid"))
		assert.Equal(t, []string{"TAVG", "PRCP"}, r.URL.Query()["datatypeid"])
		assert.Equal(t, "2020-01-01", r.URL.Query().Get("startdate"))

		writeResults(t, w, 2, []result{
			{Date: "2020-01-01T00:00:00", Datatype: "TAVG", Value: 13.4},
			{Date: "2020-01-01T00:00:00", Datatype: "PRCP", Value: 88.2},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	records, err := c.FetchStations(context.Background(), []string{"GHCND:USW00023174=CA"}, 2020, 2020)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "2020-01-01T00:00:00", records[0].Date)
	assert.Equal(t, "TAVG", records[0].Datatype)
	assert.Equal(t, "13.4", records[0].Value)
	assert.Equal(t, "CA", records[0].State)
	assert.Equal(t, "88.2", records[1].Value)
}

func TestFetchStations_Pagination(t *testing.T) {
	total := pageSize + 2
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		require.NoError(t, err)

		n := pageSize
		if offset > 1 {
			n = total - pageSize
		}
		results := make([]result, n)
		for i := range results {
			results[i] = result{Date: "2020-06-01T00:00:00", Datatype: "TAVG", Value: float64(i)}
		}
		writeResults(t, w, total, results)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	records, err := c.FetchStations(context.Background(), []string{"GHCND:TEST"}, 2020, 2020)
	require.NoError(t, err)

	assert.Len(t, records, total)
}

func TestFetchStations_FailedYearIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("startdate") == "2019-01-01" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeResults(t, w, 1, []result{{Date: "2020-02-01T00:00:00", Datatype: "TAVG", Value: 10}})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	records, err := c.FetchStations(context.Background(), []string{"GHCND:TEST"}, 2019, 2020)
	require.NoError(t, err, "a bad year degrades the dataset, it does not abort")

	require.Len(t, records, 1)
	assert.Equal(t, "2020-02-01T00:00:00", records[0].Date)
}

func TestFetchStations_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeResults(t, w, 0, nil)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(t, srv.URL)
	_, err := c.FetchStations(ctx, []string{"GHCND:TEST"}, 2020, 2020)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSplitStationEntry(t *testing.T) {
	tests := []struct {
		entry   string
		station string
		state   string
	}{
		{"GHCND:USW00023174", "GHCND:USW00023174", ""},
		{"GHCND:USW00023174=CA", "GHCND:USW00023174", "CA"},
		{"GHCND:USW00094846=mi", "GHCND:USW00094846", "MI"},
	}
	for _, tt := range tests {
		station, state := splitStationEntry(tt.entry)
		assert.Equal(t, tt.station, station)
		assert.Equal(t, tt.state, state)
	}
}
