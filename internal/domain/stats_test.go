package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinedXY(v VariableKind, x []float64, w VariableKind, y []float64) JoinedTable {
	xs := AnnualSeries{Variable: v, Values: make(map[Key]float64, len(x))}
	ys := AnnualSeries{Variable: w, Values: make(map[Key]float64, len(y))}
	for i := range x {
		k := Key{Year: 2000 + i}
		xs.Values[k] = x[i]
		ys.Values[k] = y[i]
	}
	return Join(xs, ys)
}

func TestRegress(t *testing.T) {
	t.Run("perfectly linear data", func(t *testing.T) {
		table := joinedXY(Temperature, []float64{1, 2, 3}, CornYield, []float64{2, 4, 6})

		r := Regress(table, Temperature, CornYield)

		require.True(t, r.Defined())
		assert.InDelta(t, 2.0, r.Slope, 1e-12)
		assert.InDelta(t, 0.0, r.Intercept, 1e-12)
		assert.InDelta(t, 1.0, r.RSquared, 1e-12)
		assert.Equal(t, 3, r.N)
	})

	t.Run("constant predictor yields an undefined fit", func(t *testing.T) {
		table := joinedXY(Temperature, []float64{5, 5}, CornYield, []float64{1, 3})

		r := Regress(table, Temperature, CornYield)

		assert.False(t, r.Defined())
		assert.True(t, math.IsNaN(r.Slope))
		assert.True(t, math.IsNaN(r.Intercept))
		assert.True(t, math.IsNaN(r.RSquared))
	})

	t.Run("constant response defines the fit but not R²", func(t *testing.T) {
		table := joinedXY(Temperature, []float64{1, 2, 3}, CornYield, []float64{7, 7, 7})

		r := Regress(table, Temperature, CornYield)

		require.True(t, r.Defined())
		assert.InDelta(t, 0.0, r.Slope, 1e-12)
		assert.InDelta(t, 7.0, r.Intercept, 1e-12)
		assert.True(t, math.IsNaN(r.RSquared))
	})

	t.Run("fewer than two rows", func(t *testing.T) {
		table := joinedXY(Temperature, []float64{1}, CornYield, []float64{2})

		r := Regress(table, Temperature, CornYield)

		assert.False(t, r.Defined())
		assert.Equal(t, 1, r.N)
	})

	t.Run("empty table", func(t *testing.T) {
		r := Regress(JoinedTable{}, Temperature, CornYield)
		assert.False(t, r.Defined())
		assert.Zero(t, r.N)
	})

	t.Run("noisy data has R² below one", func(t *testing.T) {
		table := joinedXY(Temperature, []float64{1, 2, 3, 4}, CornYield, []float64{2.1, 3.9, 6.2, 7.8})

		r := Regress(table, Temperature, CornYield)

		require.True(t, r.Defined())
		assert.Greater(t, r.RSquared, 0.9)
		assert.Less(t, r.RSquared, 1.0)
	})
}

func TestCorrelation(t *testing.T) {
	t.Run("perfect positive", func(t *testing.T) {
		assert.InDelta(t, 1.0, Correlation([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	})

	t.Run("perfect negative", func(t *testing.T) {
		assert.InDelta(t, -1.0, Correlation([]float64{1, 2, 3}, []float64{6, 4, 2}), 1e-12)
	})

	t.Run("undefined cases", func(t *testing.T) {
		assert.True(t, math.IsNaN(Correlation([]float64{1}, []float64{2})))
		assert.True(t, math.IsNaN(Correlation(nil, nil)))
		assert.True(t, math.IsNaN(Correlation([]float64{3, 3}, []float64{1, 2})))
		assert.True(t, math.IsNaN(Correlation([]float64{1, 2}, []float64{5, 5})))
		assert.True(t, math.IsNaN(Correlation([]float64{1, 2}, []float64{5})))
	})
}

func TestCorrelationMatrix(t *testing.T) {
	table := joinedXY(Temperature, []float64{1, 2, 3}, CornYield, []float64{2, 4, 6})

	m := CorrelationMatrix(table)

	require.Equal(t, []VariableKind{Temperature, CornYield}, m.Variables)
	require.Len(t, m.Values, 2)

	assert.InDelta(t, 1.0, m.Values[0][0], 1e-12)
	assert.InDelta(t, 1.0, m.Values[1][1], 1e-12)
	assert.InDelta(t, m.Values[0][1], m.Values[1][0], 1e-12, "matrix is symmetric")
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-12)
}

func TestCorrelationMatrixEmptyTable(t *testing.T) {
	m := CorrelationMatrix(Join())
	assert.Empty(t, m.Variables)
	assert.Empty(t, m.Values)
}
