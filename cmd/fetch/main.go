// Command fetch pulls monthly climate summaries from NOAA CDO and crop
// yields from USDA NASS Quick Stats, and writes the raw tables to CSV for
// a later analyze run. It exposes health, progress, and metrics endpoints
// while running.
//
// Usage:
//
//	CROPSHOCK_NOAA_TOKEN=... CROPSHOCK_USDA_API_KEY=... \
//	  go run ./cmd/fetch -config config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/couchcryptid/crop-climate-analysis/internal/adapter/csvio"
	httpadapter "github.com/couchcryptid/crop-climate-analysis/internal/adapter/http"
	"github.com/couchcryptid/crop-climate-analysis/internal/adapter/noaa"
	"github.com/couchcryptid/crop-climate-analysis/internal/adapter/usda"
	"github.com/couchcryptid/crop-climate-analysis/internal/config"
	"github.com/couchcryptid/crop-climate-analysis/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateFetch(); err != nil {
		slog.Error("invalid fetch config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format).
		With("run_id", uuid.NewString())
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	progress := &httpadapter.Progress{}
	srv := httpadapter.NewServer(cfg.HTTP.Addr, progress, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	err = run(ctx, cfg, metrics, logger, progress)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("http server shutdown error", "error", shutdownErr)
	}

	if err != nil {
		logger.Error("fetch failed", "error", err)
		os.Exit(1)
	}
	logger.Info("fetch complete")
}

func run(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger, progress *httpadapter.Progress) error {
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	years := cfg.Fetch.YearEnd - cfg.Fetch.YearStart + 1
	progress.SetTotal(len(cfg.NOAA.Stations)*years + len(cfg.USDA.Crops))

	metrics.FetchRunning.Set(1)
	defer metrics.FetchRunning.Set(0)

	noaaClient := noaa.NewClient(cfg, metrics, logger)
	noaaClient.SetProgress(progress)

	climate, err := noaaClient.FetchStations(ctx, cfg.NOAA.Stations, cfg.Fetch.YearStart, cfg.Fetch.YearEnd)
	if err != nil {
		return fmt.Errorf("fetch climate: %w", err)
	}
	logger.Info("climate fetched", "records", len(climate))

	climatePath := filepath.Join(cfg.Paths.DataDir, "climate.csv")
	if err := csvio.WriteClimate(climatePath, climate); err != nil {
		return err
	}
	logger.Info("climate written", "path", climatePath)

	usdaClient := usda.NewClient(cfg, metrics, logger)
	for _, crop := range cfg.USDA.Crops {
		if err := ctx.Err(); err != nil {
			return err
		}

		yields, err := usdaClient.FetchYield(ctx, crop, cfg.Fetch.YearStart, cfg.Fetch.YearEnd)
		progress.ChunkDone()
		if err != nil {
			// One crop failing should not discard the others' data.
			logger.Warn("crop fetch skipped", "crop", crop, "error", err)
			continue
		}
		logger.Info("yield fetched", "crop", crop, "records", len(yields))

		path := filepath.Join(cfg.Paths.DataDir, strings.ToLower(crop)+"_yield.csv")
		if err := csvio.WriteYield(path, crop, yields); err != nil {
			return err
		}
		logger.Info("yield written", "crop", crop, "path", path)
	}

	return nil
}
