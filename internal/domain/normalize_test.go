package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClimate(t *testing.T) {
	t.Run("multi-variable rows", func(t *testing.T) {
		records := []RawClimateRecord{
			{Date: "2015-07-01T00:00:00", Datatype: "TAVG", Value: "22.4"},
			{Date: "2015-07-01T00:00:00", Datatype: "PRCP", Value: "8.1", State: "ca"},
		}

		obs, drops := NormalizeClimate(records, "")

		require.Len(t, obs, 2)
		assert.Equal(t, Observation{Year: 2015, Kind: Temperature, Value: 22.4}, obs[0])
		assert.Equal(t, Observation{Year: 2015, State: "CA", Kind: Precipitation, Value: 8.1}, obs[1])
		assert.Zero(t, drops.Total())
	})

	t.Run("missing datatype falls back to default kind", func(t *testing.T) {
		records := []RawClimateRecord{
			{Date: "2018-01-01", Value: "13.9"},
		}

		obs, drops := NormalizeClimate(records, Temperature)

		require.Len(t, obs, 1)
		assert.Equal(t, Temperature, obs[0].Kind)
		assert.Zero(t, drops.Total())
	})

	t.Run("missing datatype without default drops the record", func(t *testing.T) {
		records := []RawClimateRecord{
			{Date: "2018-01-01", Value: "13.9"},
		}

		obs, drops := NormalizeClimate(records, "")

		assert.Empty(t, obs)
		assert.Equal(t, 1, drops.BadKind)
	})

	t.Run("date formats", func(t *testing.T) {
		tests := []struct {
			name string
			date string
			year int
		}{
			{"bare date", "2012-03-15", 2012},
			{"NOAA datetime", "2012-03-15T00:00:00", 2012},
			{"RFC 3339", "2012-03-15T00:00:00Z", 2012},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				obs, drops := NormalizeClimate([]RawClimateRecord{
					{Date: tt.date, Datatype: "TAVG", Value: "1"},
				}, "")
				require.Len(t, obs, 1)
				assert.Equal(t, tt.year, obs[0].Year)
				assert.Zero(t, drops.Total())
			})
		}
	})

	t.Run("bad records are dropped and counted", func(t *testing.T) {
		records := []RawClimateRecord{
			{Date: "07/01/2015", Datatype: "TAVG", Value: "22.4"}, // unsupported layout
			{Date: "", Datatype: "TAVG", Value: "22.4"},
			{Date: "2015-07-01", Datatype: "TAVG", Value: ""},
			{Date: "2015-07-01", Datatype: "TAVG", Value: "M"},
			{Date: "2015-07-01", Datatype: "SNOW", Value: "3.0"},
			{Date: "2015-07-01", Datatype: "TAVG", Value: "21.0"},
		}

		obs, drops := NormalizeClimate(records, "")

		require.Len(t, obs, 1)
		assert.Equal(t, 21.0, obs[0].Value)
		assert.Equal(t, 2, drops.BadDate)
		assert.Equal(t, 2, drops.BadValue)
		assert.Equal(t, 1, drops.BadKind)
	})
}

func TestNormalizeYield(t *testing.T) {
	t.Run("mapped state", func(t *testing.T) {
		records := []RawYieldRecord{
			{Year: "2020", StateName: "IOWA", Value: "178.5"},
			{Year: "2020", StateName: "iowa ", Value: "178.5"},
		}

		obs, drops := NormalizeYield(records, CornYield)

		require.Len(t, obs, 2)
		assert.Equal(t, "IA", obs[0].State)
		assert.Equal(t, "IA", obs[1].State)
		assert.Equal(t, CornYield, obs[0].Kind)
		assert.Zero(t, drops.Total())
	})

	t.Run("unmapped state keeps record with empty code", func(t *testing.T) {
		records := []RawYieldRecord{
			{Year: "2020", StateName: "OTHER STATES", Value: "140.0"},
		}

		obs, drops := NormalizeYield(records, CornYield)

		require.Len(t, obs, 1)
		assert.Empty(t, obs[0].State)
		assert.Equal(t, 1, drops.UnknownState)
		assert.Zero(t, drops.Total(), "unmapped state is not a dropped record")
	})

	t.Run("thousands separators in value", func(t *testing.T) {
		obs, drops := NormalizeYield([]RawYieldRecord{
			{Year: "2020", StateName: "TEXAS", Value: "1,234.5"},
		}, WheatYield)

		require.Len(t, obs, 1)
		assert.Equal(t, 1234.5, obs[0].Value)
		assert.Zero(t, drops.Total())
	})

	t.Run("suppressed and malformed values", func(t *testing.T) {
		records := []RawYieldRecord{
			{Year: "2020", StateName: "IOWA", Value: "(D)"},
			{Year: "2020", StateName: "IOWA", Value: ""},
			{Year: "20x0", StateName: "IOWA", Value: "170"},
			{Year: "", StateName: "IOWA", Value: "170"},
		}

		obs, drops := NormalizeYield(records, CornYield)

		assert.Empty(t, obs)
		assert.Equal(t, 2, drops.BadValue)
		assert.Equal(t, 2, drops.BadDate)
	})
}

func TestLookupState(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		code   string
		mapped bool
	}{
		{"exact", "KANSAS", "KS", true},
		{"lower case", "new mexico", "NM", true},
		{"padded", "  OHIO  ", "OH", true},
		{"aggregate row", "OTHER STATES", "", false},
		{"national row", "US TOTAL", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := LookupState(tt.input)
			assert.Equal(t, tt.mapped, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestYieldKind(t *testing.T) {
	assert.Equal(t, CornYield, YieldKind("CORN"))
	assert.Equal(t, WheatYield, YieldKind(" wheat "))
	assert.Equal(t, VariableKind("soybeans_yield"), YieldKind("SOYBEANS"))
}
