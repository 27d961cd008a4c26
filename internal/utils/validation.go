package utils

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Coordinate limits in degrees.
const (
	MaxLatitude  = 90.0
	MaxLongitude = 180.0
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func withinDegrees(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

// ValidateLatitude fails for NaN and for values outside [-90, 90].
func ValidateLatitude(lat float64) error {
	if !withinDegrees(lat, MaxLatitude) {
		return fmt.Errorf("latitude %g is outside [-90, 90]", lat)
	}
	return nil
}

// ValidateLongitude fails for NaN and for values outside [-180, 180].
func ValidateLongitude(lng float64) error {
	if !withinDegrees(lng, MaxLongitude) {
		return fmt.Errorf("longitude %g is outside [-180, 180]", lng)
	}
	return nil
}

// ValidateCoordinates returns messages keyed by "latitude" and "longitude"
// for whichever part is out of range. The map is empty when both are valid.
func ValidateCoordinates(lat, lng float64) map[string][]string {
	fieldErrors := make(map[string][]string)
	for key, err := range map[string]error{
		"latitude":  ValidateLatitude(lat),
		"longitude": ValidateLongitude(lng),
	} {
		if err != nil {
			fieldErrors[key] = append(fieldErrors[key], err.Error())
		}
	}
	return fieldErrors
}

// SanitizeInput strips markup from a free-text value and trims it.
func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(input, ""))
}
