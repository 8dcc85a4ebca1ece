// Package geo provides common geographic types shared by the geocoding
// client and the tool layer.
package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Location represents a geographic coordinate (latitude and longitude)
// with standardized JSON field names.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoundingBox is the south/north/west/east extent of a matched place.
//
// Example:
//
//	bb, err := geo.ParseBoundingBox([]string{"48.8155755", "48.9021560", "2.2241220", "2.4697602"})
type BoundingBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// ValidateCoords reports whether lat and lon are within WGS-84 ranges.
func ValidateCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude value: %f (must be between -90 and 90)", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude value: %f (must be between -180 and 180)", lon)
	}
	return nil
}

// ParseCoordinate parses decimal latitude and longitude strings as returned
// by Nominatim and validates their range.
func ParseCoordinate(lat, lon string) (Location, error) {
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Location{}, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Location{}, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}
	if err := ValidateCoords(latitude, longitude); err != nil {
		return Location{}, err
	}
	return Location{Latitude: latitude, Longitude: longitude}, nil
}

// ParseBoundingBox converts Nominatim's four-element boundingbox array,
// ordered south, north, west, east, into a BoundingBox.
func ParseBoundingBox(values []string) (BoundingBox, error) {
	if len(values) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box must have 4 values, got %d", len(values))
	}

	var parsed [4]float64
	for i, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("invalid bounding box value %q: %w", v, err)
		}
		parsed[i] = f
	}

	return BoundingBox{
		South: parsed[0],
		North: parsed[1],
		West:  parsed[2],
		East:  parsed[3],
	}, nil
}
