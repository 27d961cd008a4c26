// Package parcels holds the in-memory parcel table and answers nearest-parcel
// queries by coordinate.
package parcels

import (
	"math"
	"slices"

	"irea.valuation/internal/utils"
)

// Column names every parcel table carries.
const (
	ColumnPID       = "PID"
	ColumnLatitude  = "LATITUDE"
	ColumnLongitude = "LONGITUDE"
)

// Record is one parcel row keyed by attribute name. Values are float64, int64,
// string, bool or nil. Records are never mutated after load.
type Record map[string]any

// PID returns the parcel identifier, or nil when the row has none.
func (r Record) PID() any {
	v, ok := r[ColumnPID]
	if !ok {
		return nil
	}
	return v
}

// Coordinates returns the record's latitude and longitude and whether both are finite.
func (r Record) Coordinates() (lat, lng float64, ok bool) {
	lat, latOK := utils.SafeFloat(r[ColumnLatitude])
	lng, lngOK := utils.SafeFloat(r[ColumnLongitude])
	return lat, lng, latOK && lngOK
}

// Table is the loaded parcel table. Rows whose coordinates are not finite
// degrees are dropped at construction so indexes stay aligned with the
// coordinate arrays.
type Table struct {
	rows    []Record
	lat     []float32
	lng     []float32
	columns []string
	dropped int
}

// NewTable builds a table from rows, keeping only those with finite
// coordinates inside the valid latitude/longitude range. Rows in a projected
// grid (state plane feet, for instance) fail the range check.
func NewTable(rows []Record, columns []string) *Table {
	t := &Table{
		rows:    make([]Record, 0, len(rows)),
		lat:     make([]float32, 0, len(rows)),
		lng:     make([]float32, 0, len(rows)),
		columns: slices.Clone(columns),
	}

	for _, row := range rows {
		lat, lng, ok := row.Coordinates()
		if !ok || len(utils.ValidateCoordinates(lat, lng)) > 0 {
			t.dropped++
			continue
		}
		lat32, lng32 := float32(lat), float32(lng)
		if isNonFinite32(lat32) || isNonFinite32(lng32) {
			t.dropped++
			continue
		}
		t.rows = append(t.rows, row)
		t.lat = append(t.lat, lat32)
		t.lng = append(t.lng, lng32)
	}

	return t
}

func isNonFinite32(f float32) bool {
	return math.IsNaN(float64(f)) || math.IsInf(float64(f), 0)
}

// Len is the number of usable rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Dropped is the number of rows discarded for unusable coordinates.
func (t *Table) Dropped() int { return t.dropped }

// Columns returns the column names the table was loaded with.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Row returns the record at index i.
func (t *Table) Row(i int) Record { return t.rows[i] }
