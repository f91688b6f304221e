package domain

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing a climate record's date field.
// NOAA CDO returns "2015-07-01T00:00:00"; CSV exports may carry a bare date
// or a full RFC 3339 timestamp.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// NormalizeClimate coerces raw climate rows into typed observations.
// defaultKind applies to rows without a datatype column (single-variable
// exports). Rows that cannot be coerced are dropped and counted.
func NormalizeClimate(records []RawClimateRecord, defaultKind VariableKind) ([]Observation, DropCounts) {
	obs := make([]Observation, 0, len(records))
	var drops DropCounts

	for _, rec := range records {
		year, ok := parseObservationYear(rec.Date)
		if !ok {
			drops.BadDate++
			continue
		}

		kind, ok := climateKind(rec.Datatype, defaultKind)
		if !ok {
			drops.BadKind++
			continue
		}

		value, ok := parseValue(rec.Value)
		if !ok {
			drops.BadValue++
			continue
		}

		obs = append(obs, Observation{
			Year:  year,
			State: strings.ToUpper(strings.TrimSpace(rec.State)),
			Kind:  kind,
			Value: value,
		})
	}

	return obs, drops
}

// NormalizeYield coerces raw yield rows into typed observations of the given
// yield kind. State names outside the USPS enumeration keep the record with
// an empty state code and are counted, so the loss is visible to callers.
func NormalizeYield(records []RawYieldRecord, kind VariableKind) ([]Observation, DropCounts) {
	obs := make([]Observation, 0, len(records))
	var drops DropCounts

	for _, rec := range records {
		year, err := strconv.Atoi(strings.TrimSpace(rec.Year))
		if err != nil || year <= 0 {
			drops.BadDate++
			continue
		}

		value, ok := parseValue(rec.Value)
		if !ok {
			drops.BadValue++
			continue
		}

		state, mapped := LookupState(rec.StateName)
		if !mapped {
			drops.UnknownState++
		}

		obs = append(obs, Observation{
			Year:  year,
			State: state,
			Kind:  kind,
			Value: value,
		})
	}

	return obs, drops
}

// parseObservationYear extracts the calendar year from a date string,
// trying each supported layout.
func parseObservationYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}

// parseValue coerces a value field to float64. Empty strings and NASS
// suppression markers like "(D)" fail the parse and drop the record;
// they are missing data, not zeros.
func parseValue(s string) (float64, bool) {
	// NASS formats large values with thousands separators, e.g. "1,234.5".
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// climateKind resolves a datatype column value to a variable kind.
func climateKind(datatype string, defaultKind VariableKind) (VariableKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(datatype)) {
	case "":
		return defaultKind, defaultKind != ""
	case "TAVG":
		return Temperature, true
	case "PRCP":
		return Precipitation, true
	default:
		return "", false
	}
}
