package csvio

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/crop-climate-analysis/internal/domain"
)

// WriteClimate stores raw climate records fetched from the API.
func WriteClimate(path string, records []domain.RawClimateRecord) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"date", "datatype", "state", "value"})
	for _, r := range records {
		rows = append(rows, []string{r.Date, r.Datatype, r.State, r.Value})
	}
	return writeAll(path, rows)
}

// WriteYield stores raw yield records fetched from the API. The crop name
// becomes the "<crop>_yield" column so ReadYield can recover it.
func WriteYield(path, crop string, records []domain.RawYieldRecord) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"year", "state_name", strings.ToUpper(crop) + "_yield"})
	for _, r := range records {
		rows = append(rows, []string{r.Year, r.StateName, r.Value})
	}
	return writeAll(path, rows)
}

// WriteSeriesSet exports annual aggregates, one row per key in the set's
// key union. Cells for variables without a value at a key stay empty:
// absent means "no data", never zero.
func WriteSeriesSet(path string, set domain.SeriesSet) error {
	vars := set.Variables()

	header := keyHeader(set.Shape)
	for _, v := range vars {
		header = append(header, string(v))
	}

	rows := [][]string{header}
	for _, key := range set.Keys() {
		row := keyCells(set.Shape, key)
		for _, v := range vars {
			if value, ok := set.Series[v].Values[key]; ok {
				row = append(row, formatValue(value))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return writeAll(path, rows)
}

// WriteJoined exports a joined table; every cell is populated by
// construction.
func WriteJoined(path string, t domain.JoinedTable, shape domain.KeyShape) error {
	header := keyHeader(shape)
	for _, v := range t.Variables {
		header = append(header, string(v))
	}

	rows := [][]string{header}
	for i, key := range t.Keys() {
		row := keyCells(shape, key)
		for _, v := range t.Variables {
			row = append(row, formatValue(t.Value(i, v)))
		}
		rows = append(rows, row)
	}
	return writeAll(path, rows)
}

// WriteCorr exports a correlation matrix with variable names on both axes.
// Undefined correlations are written as NaN.
func WriteCorr(path string, m domain.CorrMatrix) error {
	header := []string{""}
	for _, v := range m.Variables {
		header = append(header, string(v))
	}

	rows := [][]string{header}
	for i, v := range m.Variables {
		row := []string{string(v)}
		for j := range m.Variables {
			row = append(row, formatValue(m.Values[i][j]))
		}
		rows = append(rows, row)
	}
	return writeAll(path, rows)
}

// WriteFits exports regression results, one row per (predictor, response)
// pair. Undefined quantities are written as NaN so downstream plotting can
// branch on them.
func WriteFits(path string, fits []domain.RegressionResult) error {
	rows := [][]string{{"predictor", "response", "slope", "intercept", "r_squared", "n"}}
	for _, fit := range fits {
		rows = append(rows, []string{
			string(fit.Predictor),
			string(fit.Response),
			formatValue(fit.Slope),
			formatValue(fit.Intercept),
			formatValue(fit.RSquared),
			strconv.Itoa(fit.N),
		})
	}
	return writeAll(path, rows)
}

func keyHeader(shape domain.KeyShape) []string {
	if shape == domain.KeyStateYear {
		return []string{"year", "state"}
	}
	return []string{"year"}
}

func keyCells(shape domain.KeyShape, key domain.Key) []string {
	if shape == domain.KeyStateYear {
		return []string{strconv.Itoa(key.Year), key.State}
	}
	return []string{strconv.Itoa(key.Year)}
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeAll(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
