// Command analyze runs the climate-versus-yield analysis over previously
// fetched CSV tables and writes aggregates, joined tables, correlations,
// and regression fits to the results directory, plus a plain-text report.
//
// Usage:
//
//	go run ./cmd/analyze -config config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/couchcryptid/crop-climate-analysis/internal/adapter/csvio"
	"github.com/couchcryptid/crop-climate-analysis/internal/config"
	"github.com/couchcryptid/crop-climate-analysis/internal/domain"
	"github.com/couchcryptid/crop-climate-analysis/internal/observability"
	"github.com/couchcryptid/crop-climate-analysis/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format).
		With("run_id", uuid.NewString())
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, metrics, logger); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
	logger.Info("analysis complete", "results_dir", cfg.Paths.ResultsDir)
}

func run(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) error {
	in, err := loadInput(cfg.Paths.DataDir, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Paths.ResultsDir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}

	p := pipeline.New(logger, metrics)

	var results []*pipeline.Result
	for _, variant := range pipeline.DefaultVariants() {
		result, err := p.Run(ctx, in, variant)
		if err != nil {
			return fmt.Errorf("variant %s: %w", variant.Name, err)
		}
		if err := writeResult(cfg.Paths.ResultsDir, result); err != nil {
			return err
		}
		results = append(results, result)
	}

	reportPath := filepath.Join(cfg.Paths.ResultsDir, "report.txt")
	if err := csvio.WriteReport(reportPath, results); err != nil {
		return err
	}
	logger.Info("report written", "path", reportPath)
	return nil
}

// loadInput reads the climate table and every *_yield.csv the fetch left in
// the data directory.
func loadInput(dataDir string, logger *slog.Logger) (pipeline.Input, error) {
	in := pipeline.Input{
		Yields: make(map[domain.VariableKind][]domain.RawYieldRecord),
	}

	climate, err := csvio.ReadClimate(filepath.Join(dataDir, "climate.csv"))
	if err != nil {
		return in, err
	}
	in.Climate = climate
	logger.Info("climate loaded", "records", len(climate))

	paths, err := filepath.Glob(filepath.Join(dataDir, "*_yield.csv"))
	if err != nil {
		return in, err
	}
	if len(paths) == 0 {
		return in, fmt.Errorf("no *_yield.csv files in %s", dataDir)
	}

	for _, path := range paths {
		records, crop, err := csvio.ReadYield(path)
		if err != nil {
			return in, err
		}
		in.Yields[domain.YieldKind(crop)] = records
		logger.Info("yield loaded", "crop", crop, "records", len(records))
	}
	return in, nil
}

// writeResult exports one variant's tables under a per-variant prefix.
func writeResult(dir string, r *pipeline.Result) error {
	prefix := filepath.Join(dir, r.Variant.Name)

	if err := csvio.WriteSeriesSet(prefix+"_climate.csv", r.Climate); err != nil {
		return err
	}
	if err := csvio.WriteSeriesSet(prefix+"_yields.csv", r.Yields); err != nil {
		return err
	}

	for kind, joined := range r.Joined {
		if err := csvio.WriteJoined(fmt.Sprintf("%s_%s_joined.csv", prefix, kind), joined, r.Variant.Shape); err != nil {
			return err
		}
		if err := csvio.WriteCorr(fmt.Sprintf("%s_%s_corr.csv", prefix, kind), r.Corr[kind]); err != nil {
			return err
		}
	}

	return csvio.WriteFits(prefix+"_fits.csv", r.Fits)
}
