// Package geofence rejects coordinates outside the supported metropolitan area.
package geofence

import (
	"fmt"

	"irea.valuation/internal/apperr"
)

// Box is an inclusive latitude/longitude bounding box in degrees.
type Box struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
}

// Boston is the only region the models were trained for.
var Boston = Box{
	MinLat: 42.2279,
	MaxLat: 42.3995,
	MinLng: -71.1912,
	MaxLng: -70.9860,
}

// Contains reports whether (lat, lng) lies inside the box. NaN never does.
func (b Box) Contains(lat, lng float64) bool {
	return b.MinLat <= lat && lat <= b.MaxLat &&
		b.MinLng <= lng && lng <= b.MaxLng
}

// Check fails with apperr.ErrOutOfRegion unless (lat, lng) is inside the box.
func (b Box) Check(lat, lng float64) error {
	if !b.Contains(lat, lng) {
		return fmt.Errorf("coordinate (%g, %g): %w", lat, lng, apperr.ErrOutOfRegion)
	}
	return nil
}

// Center returns the midpoint of the box.
func (b Box) Center() (lat, lng float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLng + b.MaxLng) / 2
}
