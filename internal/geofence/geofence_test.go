package geofence

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"irea.valuation/internal/apperr"
)

func TestBoxCheck(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "downtown", lat: 42.3601, lng: -71.0589},
		{name: "south west corner is inclusive", lat: 42.2279, lng: -71.1912},
		{name: "north east corner is inclusive", lat: 42.3995, lng: -70.9860},
		{name: "new york", lat: 40.0, lng: -74.0, wantErr: true},
		{name: "just north", lat: 42.39951, lng: -71.05, wantErr: true},
		{name: "just east", lat: 42.3, lng: -70.98599, wantErr: true},
		{name: "swapped coordinates", lat: -71.05, lng: 42.3, wantErr: true},
		{name: "nan latitude", lat: math.NaN(), lng: -71.05, wantErr: true},
		{name: "infinite longitude", lat: 42.3, lng: math.Inf(-1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Boston.Check(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, apperr.ErrOutOfRegion))
				assert.False(t, Boston.Contains(tt.lat, tt.lng))
			} else {
				assert.NoError(t, err)
				assert.True(t, Boston.Contains(tt.lat, tt.lng))
			}
		})
	}
}

func TestBoxCenter(t *testing.T) {
	lat, lng := Boston.Center()
	assert.True(t, Boston.Contains(lat, lng))
	assert.InDelta(t, 42.3137, lat, 1e-9)
	assert.InDelta(t, -71.0886, lng, 1e-9)
}
