package parcels

import (
	"fmt"

	"irea.valuation/internal/apperr"
)

// Match is the result of a nearest-parcel query.
type Match struct {
	Record          Record
	Index           int
	DistanceSquared float64
}

// Index answers nearest-parcel queries. Implementations must be safe for
// concurrent use once built.
type Index interface {
	Nearest(lat, lng float64) (Match, error)
	Len() int
}

// ScanIndex is a brute-force Index over a Table. Distances are squared
// Euclidean in raw degrees, computed in float32; ties resolve to the lowest index.
type ScanIndex struct {
	table *Table
}

// NewScanIndex wraps a table.
func NewScanIndex(table *Table) *ScanIndex {
	return &ScanIndex{table: table}
}

// Len is the number of parcels searched.
func (s *ScanIndex) Len() int {
	if s == nil {
		return 0
	}
	return s.table.Len()
}

// Table returns the underlying table.
func (s *ScanIndex) Table() *Table { return s.table }

// Nearest returns the parcel closest to (lat, lng).
func (s *ScanIndex) Nearest(lat, lng float64) (Match, error) {
	if s.Len() == 0 {
		return Match{}, fmt.Errorf("parcel index is empty: %w", apperr.ErrNotReady)
	}

	lat0, lng0 := float32(lat), float32(lng)
	best := -1
	var bestD2 float32

	for i := range s.table.lat {
		dLat := s.table.lat[i] - lat0
		dLng := s.table.lng[i] - lng0
		d2 := dLat*dLat + dLng*dLng
		if best < 0 || d2 < bestD2 {
			best = i
			bestD2 = d2
		}
	}

	return Match{
		Record:          s.table.rows[best],
		Index:           best,
		DistanceSquared: float64(bestD2),
	}, nil
}
