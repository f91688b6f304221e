// Package csvio reads raw observation tables from CSV and writes the
// pipeline's aggregates, joins, and statistics back out. It is the
// pipeline's only file interface; the core packages never touch disk.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/crop-climate-analysis/internal/domain"
)

// ReadClimate loads a climate observation CSV. The header must contain
// "date" and "value"; "datatype" and "state" are optional (single-variable
// exports omit them). Column order does not matter.
func ReadClimate(path string) ([]domain.RawClimateRecord, error) {
	rows, idx, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(path, idx, "date", "value"); err != nil {
		return nil, err
	}

	records := make([]domain.RawClimateRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.RawClimateRecord{
			Date:     field(row, idx, "date"),
			Datatype: field(row, idx, "datatype"),
			State:    field(row, idx, "state"),
			Value:    field(row, idx, "value"),
		})
	}
	return records, nil
}

// ReadYield loads a yield CSV and reports which crop it carries, derived
// from the "<CROP>_yield" column name.
func ReadYield(path string) ([]domain.RawYieldRecord, string, error) {
	rows, idx, err := readTable(path)
	if err != nil {
		return nil, "", err
	}
	if err := requireColumns(path, idx, "year", "state_name"); err != nil {
		return nil, "", err
	}

	crop, yieldCol, err := findYieldColumn(path, idx)
	if err != nil {
		return nil, "", err
	}

	records := make([]domain.RawYieldRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.RawYieldRecord{
			Year:      field(row, idx, "year"),
			StateName: field(row, idx, "state_name"),
			Value:     field(row, idx, yieldCol),
		})
	}
	return records, crop, nil
}

// readTable reads a CSV into data rows plus a lower-cased header index.
func readTable(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return rows[1:], idx, nil
}

func requireColumns(path string, idx map[string]int, names ...string) error {
	for _, name := range names {
		if _, ok := idx[name]; !ok {
			return fmt.Errorf("%s: missing column %q", path, name)
		}
	}
	return nil
}

func findYieldColumn(path string, idx map[string]int) (crop, column string, err error) {
	for name := range idx {
		if strings.HasSuffix(name, "_yield") {
			return strings.ToUpper(strings.TrimSuffix(name, "_yield")), name, nil
		}
	}
	return "", "", fmt.Errorf("%s: no *_yield column", path)
}

// field returns one cell by column name, or "" when the column is absent
// or the row is short.
func field(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
