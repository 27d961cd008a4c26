package parcels

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"irea.valuation/internal/apperr"
)

func sampleTable() *Table {
	rows := []Record{
		{"PID": "000", "LATITUDE": "42.350", "LONGITUDE": "-71.060"},
		{"PID": "001", "LATITUDE": 42.311, "LONGITUDE": -71.051, "TOTAL_VALUE_2025": 450000.0},
		{"PID": "bad", "LATITUDE": nil, "LONGITUDE": -71.05},
		{"PID": "002", "LATITUDE": "42.290", "LONGITUDE": "-71.100"},
		{"PID": "nan", "LATITUDE": math.NaN(), "LONGITUDE": -71.05},
	}
	return NewTable(rows, []string{"PID", "LATITUDE", "LONGITUDE", "TOTAL_VALUE_2025"})
}

func TestNewTableDropsNonFiniteCoordinates(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 2, table.Dropped())
	assert.Equal(t, "000", table.Row(0).PID())
	assert.Equal(t, "001", table.Row(1).PID())
	assert.Equal(t, "002", table.Row(2).PID())
	assert.Equal(t, []string{"PID", "LATITUDE", "LONGITUDE", "TOTAL_VALUE_2025"}, table.Columns())
}

func TestNewTableDropsProjectedCoordinates(t *testing.T) {
	table := NewTable([]Record{
		{"PID": "grid", "LATITUDE": "2953012.5", "LONGITUDE": "775021.1"},
		{"PID": "beyond pole", "LATITUDE": "-91.5", "LONGITUDE": "10"},
		{"PID": "ok", "LATITUDE": "42.31", "LONGITUDE": "-71.05"},
	}, nil)

	assert.Equal(t, 2, table.Dropped())
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "ok", table.Row(0).PID())
}

func TestNearestResolvesClosestRecord(t *testing.T) {
	index := NewScanIndex(sampleTable())

	match, err := index.Nearest(42.31, -71.05)
	require.NoError(t, err)

	assert.Equal(t, 1, match.Index)
	assert.Equal(t, "001", match.Record.PID())
	assert.InDelta(t, 2e-6, match.DistanceSquared, 1e-7)
}

func TestNearestIsMinimalOverTable(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := make([]Record, 500)
	for i := range rows {
		rows[i] = Record{
			"PID":       i,
			"LATITUDE":  42.2279 + rng.Float64()*0.17,
			"LONGITUDE": -71.1912 + rng.Float64()*0.2,
		}
	}
	table := NewTable(rows, nil)
	index := NewScanIndex(table)

	for q := 0; q < 50; q++ {
		lat := 42.2279 + rng.Float64()*0.17
		lng := -71.1912 + rng.Float64()*0.2

		match, err := index.Nearest(lat, lng)
		require.NoError(t, err)

		for i := 0; i < table.Len(); i++ {
			dLat := table.lat[i] - float32(lat)
			dLng := table.lng[i] - float32(lng)
			d2 := float64(dLat*dLat + dLng*dLng)
			assert.LessOrEqual(t, match.DistanceSquared, d2, "query %d row %d", q, i)
		}
	}
}

func TestNearestTieBreaksToFirstIndex(t *testing.T) {
	rows := []Record{
		{"PID": "a", "LATITUDE": 42.30, "LONGITUDE": -71.10},
		{"PID": "b", "LATITUDE": 42.32, "LONGITUDE": -71.10},
		{"PID": "c", "LATITUDE": 42.30, "LONGITUDE": -71.10},
	}
	index := NewScanIndex(NewTable(rows, nil))

	match, err := index.Nearest(42.30, -71.10)
	require.NoError(t, err)
	assert.Equal(t, 0, match.Index, "duplicate coordinates resolve to the first row")
	assert.Equal(t, 0.0, match.DistanceSquared)
}

func TestNearestIsDeterministic(t *testing.T) {
	index := NewScanIndex(sampleTable())

	first, err := index.Nearest(42.33, -71.07)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := index.Nearest(42.33, -71.07)
		require.NoError(t, err)
		assert.Equal(t, first.Index, again.Index)
		assert.Equal(t, first.DistanceSquared, again.DistanceSquared)
	}
}

func TestNearestOnEmptyTableIsNotReady(t *testing.T) {
	tests := []struct {
		name  string
		index *ScanIndex
	}{
		{name: "no rows", index: NewScanIndex(NewTable(nil, nil))},
		{name: "only unusable rows", index: NewScanIndex(NewTable([]Record{{"LATITUDE": "x", "LONGITUDE": "y"}}, nil))},
		{name: "nil index", index: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.index.Nearest(42.31, -71.05)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrNotReady))
			assert.Equal(t, 0, tt.index.Len())
		})
	}
}

func TestRecordCoordinates(t *testing.T) {
	lat, lng, ok := Record{"LATITUDE": "42.31", "LONGITUDE": -71.05}.Coordinates()
	assert.True(t, ok)
	assert.Equal(t, 42.31, lat)
	assert.Equal(t, -71.05, lng)

	_, _, ok = Record{"LATITUDE": "42.31"}.Coordinates()
	assert.False(t, ok)

	assert.Nil(t, Record{}.PID())
}
