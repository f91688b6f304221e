package domain

import (
	"sort"
	"strings"
)

// VariableKind identifies one measured variable across the pipeline.
type VariableKind string

const (
	Temperature   VariableKind = "temperature"
	Precipitation VariableKind = "precipitation"
	CornYield     VariableKind = "corn_yield"
	WheatYield    VariableKind = "wheat_yield"
)

// YieldKind maps a NASS commodity name (e.g. "CORN") to its variable kind.
func YieldKind(crop string) VariableKind {
	return VariableKind(strings.ToLower(strings.TrimSpace(crop)) + "_yield")
}

// Reduction selects how a group of observations collapses to one scalar.
type Reduction int

const (
	ReduceMean Reduction = iota
	ReduceSum
)

// ReductionFor returns the conventional reduction for a variable:
// sum for precipitation (monthly totals accumulate), mean for everything else.
func ReductionFor(v VariableKind) Reduction {
	if v == Precipitation {
		return ReduceSum
	}
	return ReduceMean
}

// KeyShape selects the grouping key for aggregation and joins.
type KeyShape int

const (
	// KeyYear groups nationally, one row per calendar year.
	KeyYear KeyShape = iota
	// KeyStateYear groups per state and year. Observations without a
	// mapped state code are excluded from this shape.
	KeyStateYear
)

// Key identifies one aggregated row. State is empty under KeyYear.
type Key struct {
	Year  int
	State string
}

// Less orders keys by year, then state, for deterministic output.
func (k Key) Less(other Key) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.State < other.State
}

// RawClimateRecord is one uncoerced climate row as read from CSV or the
// NOAA API. Datatype and State may be empty in single-variable exports.
type RawClimateRecord struct {
	Date     string
	Datatype string
	State    string
	Value    string
}

// RawYieldRecord is one uncoerced yield row from a NASS table.
type RawYieldRecord struct {
	Year      string
	StateName string
	Value     string
}

// Observation is one normalized measurement. State is the USPS code, or
// empty when the source row carried no mappable state.
type Observation struct {
	Year  int
	State string
	Kind  VariableKind
	Value float64
}

// DropCounts tallies records excluded during normalization, by reason.
type DropCounts struct {
	BadDate      int
	BadValue     int
	BadKind      int
	UnknownState int
}

// Add accumulates another set of counts into c.
func (c *DropCounts) Add(other DropCounts) {
	c.BadDate += other.BadDate
	c.BadValue += other.BadValue
	c.BadKind += other.BadKind
	c.UnknownState += other.UnknownState
}

// Total returns the number of dropped records across all reasons.
// UnknownState is excluded: those records are kept, only unusable for
// state-keyed aggregation.
func (c DropCounts) Total() int {
	return c.BadDate + c.BadValue + c.BadKind
}

// AnnualSeries maps aggregation keys to one scalar for a single variable.
// Produced by Aggregate and never mutated afterwards.
type AnnualSeries struct {
	Variable VariableKind
	Values   map[Key]float64
}

// Keys returns the series' keys in deterministic order.
func (s AnnualSeries) Keys() []Key {
	keys := make([]Key, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// SeriesSet groups per-variable annual series aggregated under one key shape.
// Each variable keeps its own key set; the set's key universe is their union.
type SeriesSet struct {
	Shape  KeyShape
	Series map[VariableKind]AnnualSeries
}

// Variables returns the set's variable kinds in deterministic order.
func (s SeriesSet) Variables() []VariableKind {
	vars := make([]VariableKind, 0, len(s.Series))
	for v := range s.Series {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	return vars
}

// Keys returns the union of all member series' keys in deterministic order.
// A key present for one variable but not another still appears once.
func (s SeriesSet) Keys() []Key {
	seen := make(map[Key]struct{})
	for _, series := range s.Series {
		for k := range series.Values {
			seen[k] = struct{}{}
		}
	}
	keys := make([]Key, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
