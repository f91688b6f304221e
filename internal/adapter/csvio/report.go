package csvio

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/crop-climate-analysis/internal/domain"
	"github.com/couchcryptid/crop-climate-analysis/internal/pipeline"
)

// WriteReport renders a plain-text summary of one or more analysis variants.
// The report is for a human skimming results, not for parsing; the CSV
// exports carry the machine-readable data.
func WriteReport(path string, results []*pipeline.Result) error {
	var b strings.Builder

	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		writeVariant(&b, r)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeVariant(b *strings.Builder, r *pipeline.Result) {
	fmt.Fprintf(b, "=== %s ===\n", r.Variant.Name)
	fmt.Fprintf(b, "generated: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))

	if r.Drops.Total() > 0 || r.Drops.UnknownState > 0 {
		fmt.Fprintf(b, "excluded records: bad_date=%d bad_value=%d bad_kind=%d unknown_state=%d\n",
			r.Drops.BadDate, r.Drops.BadValue, r.Drops.BadKind, r.Drops.UnknownState)
	}

	yields := make([]domain.VariableKind, 0, len(r.Joined))
	for kind := range r.Joined {
		yields = append(yields, kind)
	}
	sort.Slice(yields, func(i, j int) bool { return yields[i] < yields[j] })

	for _, kind := range yields {
		fmt.Fprintf(b, "\n%s: %d joined rows\n", kind, r.Joined[kind].Len())
		writeCorr(b, r.Corr[kind])
	}

	if len(r.Fits) > 0 {
		b.WriteString("\nregressions:\n")
		for _, fit := range r.Fits {
			if !fit.Defined() {
				fmt.Fprintf(b, "  %s -> %s: undefined (n=%d)\n", fit.Predictor, fit.Response, fit.N)
				continue
			}
			fmt.Fprintf(b, "  %s -> %s: slope=%.4f intercept=%.4f r_squared=%s n=%d\n",
				fit.Predictor, fit.Response, fit.Slope, fit.Intercept, formatValue(fit.RSquared), fit.N)
		}
	}
}

func writeCorr(b *strings.Builder, m domain.CorrMatrix) {
	for i, v := range m.Variables {
		for j := range m.Variables {
			if j <= i {
				continue
			}
			fmt.Fprintf(b, "  corr(%s, %s) = %s\n", v, m.Variables[j], formatValue(m.Values[i][j]))
		}
	}
}
