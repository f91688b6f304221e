package pipeline

import "github.com/couchcryptid/crop-climate-analysis/internal/domain"

// DefaultVariants returns the analysis variants the report runs: a national
// temperature-only pass matching the original single-station series, a
// national pass adding precipitation, and a per-state pass for climate
// exports that carry station state codes.
func DefaultVariants() []VariantSpec {
	return []VariantSpec{
		{
			Name:             "national-temperature",
			Shape:            domain.KeyYear,
			ClimateVariables: []domain.VariableKind{domain.Temperature},
		},
		{
			Name:  "national-climate",
			Shape: domain.KeyYear,
			ClimateVariables: []domain.VariableKind{
				domain.Temperature,
				domain.Precipitation,
			},
		},
		{
			Name:  "state-level",
			Shape: domain.KeyStateYear,
			ClimateVariables: []domain.VariableKind{
				domain.Temperature,
				domain.Precipitation,
			},
		},
	}
}
