package domain

// Aggregate reduces observations to one scalar per (key, variable).
//
// Under KeyStateYear, observations with an empty state code are skipped:
// they cannot be attributed to a state. Under KeyYear the state is folded
// away and every observation contributes to its year.
//
// Each variable aggregates independently; the returned set combines them by
// key union, so a key measured for one variable but not another survives
// with the other cell absent. Keys with no valid observations never appear.
// The result does not depend on input order.
func Aggregate(obs []Observation, shape KeyShape, reductions map[VariableKind]Reduction) SeriesSet {
	type group struct {
		sum   float64
		count int
	}
	groups := make(map[VariableKind]map[Key]*group)

	for _, o := range obs {
		key, ok := shapeKey(o, shape)
		if !ok {
			continue
		}
		byKey := groups[o.Kind]
		if byKey == nil {
			byKey = make(map[Key]*group)
			groups[o.Kind] = byKey
		}
		g := byKey[key]
		if g == nil {
			g = &group{}
			byKey[key] = g
		}
		g.sum += o.Value
		g.count++
	}

	set := SeriesSet{Shape: shape, Series: make(map[VariableKind]AnnualSeries, len(groups))}
	for kind, byKey := range groups {
		series := AnnualSeries{Variable: kind, Values: make(map[Key]float64, len(byKey))}
		reduction := reductionFor(kind, reductions)
		for key, g := range byKey {
			switch reduction {
			case ReduceSum:
				series.Values[key] = g.sum
			default:
				series.Values[key] = g.sum / float64(g.count)
			}
		}
		set.Series[kind] = series
	}
	return set
}

// shapeKey builds the grouping key for an observation, reporting false when
// the observation cannot participate in the requested shape.
func shapeKey(o Observation, shape KeyShape) (Key, bool) {
	switch shape {
	case KeyStateYear:
		if o.State == "" {
			return Key{}, false
		}
		return Key{Year: o.Year, State: o.State}, true
	default:
		return Key{Year: o.Year}, true
	}
}

func reductionFor(kind VariableKind, reductions map[VariableKind]Reduction) Reduction {
	if r, ok := reductions[kind]; ok {
		return r
	}
	return ReductionFor(kind)
}
