package entities

import "math"

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// NewCoordinate creates a coordinate from latitude and longitude
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{Latitude: lat, Longitude: lng}
}

// Validate ensures the coordinate is a finite point on the globe
func (c Coordinate) Validate() error {
	if !isFinite(c.Latitude) || !isFinite(c.Longitude) ||
		math.Abs(c.Latitude) > 90 || math.Abs(c.Longitude) > 180 {
		return NewLedgerError(KindInvalidCoordinate, map[string]any{
			"latitude":  c.Latitude,
			"longitude": c.Longitude,
		})
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
