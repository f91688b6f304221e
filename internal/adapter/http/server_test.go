package http_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/crop-climate-analysis/internal/adapter/http"
)

func newTestServer(progress *httpadapter.Progress) *httpadapter.Server {
	return httpadapter.NewServer(":0", progress, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&httpadapter.Progress{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns503BeforeFirstChunk(t *testing.T) {
	srv := newTestServer(&httpadapter.Progress{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no chunks fetched yet", body["error"])
}

func TestReadyzReturns200OnceFetching(t *testing.T) {
	progress := &httpadapter.Progress{}
	progress.ChunkDone()

	srv := newTestServer(progress)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestProgressEndpoint(t *testing.T) {
	progress := &httpadapter.Progress{}
	progress.SetTotal(30)
	progress.ChunkDone()
	progress.ChunkDone()

	srv := newTestServer(progress)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/progress", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body["chunks_done"])
	assert.Equal(t, int64(30), body["chunks_total"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&httpadapter.Progress{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
