package domain

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RegressionResult is an ordinary least squares fit of Response on
// Predictor over a joined table. Undefined quantities are NaN: the whole
// fit when N < 2 or the predictor is constant, RSquared alone when the
// response is constant.
type RegressionResult struct {
	Predictor VariableKind
	Response  VariableKind
	Slope     float64
	Intercept float64
	RSquared  float64
	N         int
}

// Defined reports whether the fit itself (slope and intercept) exists.
// RSquared may still be NaN for a defined fit with a constant response.
func (r RegressionResult) Defined() bool {
	return !math.IsNaN(r.Slope) && !math.IsNaN(r.Intercept)
}

// CorrMatrix is a square Pearson correlation matrix over a table's
// variables. Values[i][j] correlates Variables[i] with Variables[j];
// undefined entries are NaN.
type CorrMatrix struct {
	Variables []VariableKind
	Values    [][]float64
}

// Correlation computes the Pearson correlation of two paired columns.
// Returns NaN for fewer than two pairs or when either column is constant.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// CorrelationMatrix computes pairwise Pearson correlations across all
// variables of a joined table. Diagonal entries are 1 whenever defined.
func CorrelationMatrix(t JoinedTable) CorrMatrix {
	vars := t.Variables
	m := CorrMatrix{
		Variables: vars,
		Values:    make([][]float64, len(vars)),
	}
	cols := make([][]float64, len(vars))
	for i, v := range vars {
		cols[i], _ = t.Column(v)
	}
	for i := range vars {
		m.Values[i] = make([]float64, len(vars))
		for j := range vars {
			m.Values[i][j] = Correlation(cols[i], cols[j])
		}
	}
	return m
}

// Regress fits response = slope*predictor + intercept by least squares over
// a joined table. A constant predictor or fewer than two rows yields an
// undefined fit rather than infinities from the normal equations.
func Regress(t JoinedTable, predictor, response VariableKind) RegressionResult {
	r := RegressionResult{Predictor: predictor, Response: response, N: t.Len()}

	x, okX := t.Column(predictor)
	y, okY := t.Column(response)
	if !okX || !okY || t.Len() < 2 || stat.Variance(x, nil) == 0 {
		r.Slope = math.NaN()
		r.Intercept = math.NaN()
		r.RSquared = math.NaN()
		return r
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r.Intercept = alpha
	r.Slope = beta

	if stat.Variance(y, nil) == 0 {
		// Total sum of squares is zero; R² would be 0/0.
		r.RSquared = math.NaN()
		return r
	}
	r.RSquared = stat.RSquared(x, y, nil, alpha, beta)
	return r
}
