package domain

import "sort"

// JoinedTable is the inner join of several annual series on their full key.
// Every row is fully populated: a key missing from any input series is
// absent from the table, never null-filled. Constructed by Join and never
// mutated afterwards.
type JoinedTable struct {
	Variables []VariableKind
	keys      []Key
	cols      map[VariableKind][]float64
}

// Join combines series by key intersection. Because every series holds at
// most one value per key and the join is a pure set intersection, the
// result's key set is independent of argument order and of how a multi-way
// join is associated into pairwise joins.
//
// Join of zero series, or of series with disjoint keys, yields an empty
// table; downstream statistics report undefined results for it.
func Join(series ...AnnualSeries) JoinedTable {
	t := JoinedTable{cols: make(map[VariableKind][]float64, len(series))}
	if len(series) == 0 {
		return t
	}

	var keys []Key
	for k := range series[0].Values {
		present := true
		for _, s := range series[1:] {
			if _, ok := s.Values[k]; !ok {
				present = false
				break
			}
		}
		if present {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	t.keys = keys

	for _, s := range series {
		col := make([]float64, len(keys))
		for i, k := range keys {
			col[i] = s.Values[k]
		}
		t.Variables = append(t.Variables, s.Variable)
		t.cols[s.Variable] = col
	}
	return t
}

// Len returns the number of joined rows.
func (t JoinedTable) Len() int { return len(t.keys) }

// Keys returns the table's keys in deterministic order.
func (t JoinedTable) Keys() []Key {
	keys := make([]Key, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Column returns the values of one variable, aligned with Keys.
// The second result is false for variables not in the table.
func (t JoinedTable) Column(v VariableKind) ([]float64, bool) {
	col, ok := t.cols[v]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// Value returns one cell by row index and variable.
func (t JoinedTable) Value(row int, v VariableKind) float64 {
	return t.cols[v][row]
}
