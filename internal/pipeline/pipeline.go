package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/crop-climate-analysis/internal/domain"
	"github.com/couchcryptid/crop-climate-analysis/internal/observability"
)

// VariantSpec parameterizes one analysis variant. The report's variants
// (national temperature-only, national multi-variable, per-state) differ
// only in key shape and climate variable set, so they are data, not code.
type VariantSpec struct {
	Name             string
	Shape            domain.KeyShape
	ClimateVariables []domain.VariableKind
	// Reductions overrides the per-variable reduction rule; variables not
	// listed use domain.ReductionFor.
	Reductions map[domain.VariableKind]domain.Reduction
}

// Input carries the raw tables one analysis run consumes. The pipeline does
// not know where they came from; loading is the adapters' concern.
type Input struct {
	Climate []domain.RawClimateRecord
	Yields  map[domain.VariableKind][]domain.RawYieldRecord
}

// Result is everything one variant produces: the annual aggregates, the
// per-crop joined tables with their statistics, and the normalization
// diagnostics.
type Result struct {
	Variant     VariantSpec
	Climate     domain.SeriesSet
	Yields      domain.SeriesSet
	Joined      map[domain.VariableKind]domain.JoinedTable
	Corr        map[domain.VariableKind]domain.CorrMatrix
	Fits        []domain.RegressionResult
	Drops       domain.DropCounts
	GeneratedAt time.Time
}

// Pipeline runs the normalize-aggregate-join-stats sequence for one variant.
type Pipeline struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline with the given observability.
func New(logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{logger: logger, metrics: metrics}
}

// Run executes one analysis variant over the input tables. Malformed input
// records degrade the result set and are reported through Result.Drops and
// metrics; the only error paths are context cancellation and an empty
// variable set.
func (p *Pipeline) Run(ctx context.Context, in Input, spec VariantSpec) (*Result, error) {
	if len(spec.ClimateVariables) == 0 {
		return nil, fmt.Errorf("variant %q has no climate variables", spec.Name)
	}

	result := &Result{
		Variant: spec,
		Joined:  make(map[domain.VariableKind]domain.JoinedTable),
		Corr:    make(map[domain.VariableKind]domain.CorrMatrix),
	}

	climateObs, drops := domain.NormalizeClimate(in.Climate, spec.ClimateVariables[0])
	climateObs = filterKinds(climateObs, spec.ClimateVariables)
	result.Drops.Add(drops)

	result.Climate = domain.Aggregate(climateObs, spec.Shape, spec.Reductions)

	yieldObs := make([]domain.Observation, 0)
	for kind, records := range in.Yields {
		obs, yieldDrops := domain.NormalizeYield(records, kind)
		result.Drops.Add(yieldDrops)
		yieldObs = append(yieldObs, obs...)
	}
	result.Yields = domain.Aggregate(yieldObs, spec.Shape, spec.Reductions)

	p.recordDrops(spec.Name, result.Drops)

	for _, yieldKind := range result.Yields.Variables() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series := make([]domain.AnnualSeries, 0, len(spec.ClimateVariables)+1)
		for _, v := range spec.ClimateVariables {
			s, ok := result.Climate.Series[v]
			if !ok {
				// No valid observations for this variable; an inner join
				// with an absent series would be empty by definition.
				s = domain.AnnualSeries{Variable: v, Values: map[domain.Key]float64{}}
			}
			series = append(series, s)
		}
		series = append(series, result.Yields.Series[yieldKind])

		joined := domain.Join(series...)
		result.Joined[yieldKind] = joined
		result.Corr[yieldKind] = domain.CorrelationMatrix(joined)

		for _, predictor := range spec.ClimateVariables {
			fit := domain.Regress(joined, predictor, yieldKind)
			result.Fits = append(result.Fits, fit)
			if !fit.Defined() {
				p.logger.Warn("regression undefined",
					"variant", spec.Name,
					"predictor", predictor,
					"response", yieldKind,
					"rows", joined.Len(),
				)
			}
		}

		p.logger.Info("variant joined",
			"variant", spec.Name,
			"yield", yieldKind,
			"rows", joined.Len(),
		)
	}

	result.GeneratedAt = domain.Now()
	return result, nil
}

// recordDrops surfaces normalization losses through metrics and the log so
// partial data loss never passes silently. Counts carry the variant label:
// variants re-normalize the same input, so an unlabeled counter would
// multiply each loss by the number of variants run.
func (p *Pipeline) recordDrops(variant string, drops domain.DropCounts) {
	if p.metrics != nil {
		p.metrics.RecordsDropped.WithLabelValues(variant, "bad_date").Add(float64(drops.BadDate))
		p.metrics.RecordsDropped.WithLabelValues(variant, "bad_value").Add(float64(drops.BadValue))
		p.metrics.RecordsDropped.WithLabelValues(variant, "bad_kind").Add(float64(drops.BadKind))
		p.metrics.RecordsDropped.WithLabelValues(variant, "unknown_state").Add(float64(drops.UnknownState))
	}
	if drops.Total() > 0 || drops.UnknownState > 0 {
		p.logger.Warn("records excluded during normalization",
			"variant", variant,
			"bad_date", drops.BadDate,
			"bad_value", drops.BadValue,
			"bad_kind", drops.BadKind,
			"unknown_state", drops.UnknownState,
		)
	}
}

func filterKinds(obs []domain.Observation, kinds []domain.VariableKind) []domain.Observation {
	keep := make(map[domain.VariableKind]struct{}, len(kinds))
	for _, k := range kinds {
		keep[k] = struct{}{}
	}
	out := obs[:0]
	for _, o := range obs {
		if _, ok := keep[o.Kind]; ok {
			out = append(out, o)
		}
	}
	return out
}
