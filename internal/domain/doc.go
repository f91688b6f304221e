// Package domain models climate and crop yield observations and the pure
// transformations over them: normalization, annual aggregation, inner joins,
// and descriptive statistics.
//
// # Data Sources
//
// Climate observations come from the NOAA Climate Data Online API (GSOM
// dataset, https://www.ncei.noaa.gov/cdo-web/), one row per station per month.
// Yield records come from the USDA NASS Quick Stats API
// (https://quickstats.nass.usda.gov/), one row per state per year per crop.
// The fetch command stores both as CSV; the analyze command reads them back.
//
// # Source Data Conventions
//
// Climate rows:
//
//	date      ISO-8601 date or datetime, e.g. "2015-07-01T00:00:00"
//	datatype  "TAVG" (monthly mean temperature, °C) or
//	          "PRCP" (monthly total precipitation, mm);
//	          single-variable exports omit the column entirely
//	value     decimal string; may be empty or a sentinel ("M", "NA")
//	          when the station did not report
//	state     optional USPS code of the station's state
//
// Yield rows:
//
//	year        four-digit calendar year
//	state_name  free-text full state name as published by NASS,
//	            e.g. "IOWA" or "OTHER STATES"
//	value       yield in bushels per acre; NASS occasionally publishes
//	            suppressed values as "(D)" or similar non-numeric markers
//
// # Normalization Policy
//
// Normalization is best-effort: a record that cannot be coerced is dropped
// and counted, never zero-filled and never fatal. An unparseable date or
// value drops the record. A yield state name missing from the USPS lookup
// table keeps the record with an empty state code, which excludes it from
// state-keyed aggregation while leaving it available for national series.
// Drop counts are returned to the caller so data loss stays visible.
//
// # Aggregation
//
// Observations reduce to one scalar per (key, variable), where the key is
// either the calendar year or a (state, year) pair. Temperature and yields
// use the arithmetic mean; precipitation uses the sum, since monthly totals
// accumulate into an annual total. A key with no valid observations is
// absent from the series — absence means "no data", distinct from a
// measured zero.
//
// Variables aggregate independently and combine by key union: a year with
// temperature but no precipitation keeps its row with the precipitation
// cell missing. Cross-source joins are the opposite: strictly inner, so a
// joined row always has simultaneous climate and yield values. Partially
// observed keys would bias the downstream correlation and regression.
//
// # Statistics
//
// Correlation and regression are defined only for tables with at least two
// rows and non-constant columns. Degenerate inputs produce NaN fields and
// [RegressionResult.Defined] returns false; callers branch on that instead
// of catching errors.
package domain
