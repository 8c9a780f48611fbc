// Package geo decides whether a scan happened inside a checkpoint's geofence.
package geo

import (
	"fanhunt/domain/entities"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the IUGG mean Earth radius
const EarthRadiusMeters = 6371008.8

// Result describes a geofence check
type Result struct {
	DistanceMeters float64
	RadiusMeters   float64
	Within         bool
}

// DistanceMeters returns the great-circle distance between two coordinates
func DistanceMeters(a, b entities.Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	angle := toLatLng(a).Distance(toLatLng(b))
	return angle.Radians() * EarthRadiusMeters, nil
}

// Measure computes the distance between a and b and compares it against
// radiusMeters. The boundary is inclusive; a negative radius contains nothing.
func Measure(a, b entities.Coordinate, radiusMeters float64) (Result, error) {
	distance, err := DistanceMeters(a, b)
	if err != nil {
		return Result{}, err
	}

	return Result{
		DistanceMeters: distance,
		RadiusMeters:   radiusMeters,
		Within:         radiusMeters >= 0 && distance <= radiusMeters,
	}, nil
}

// WithinRadius returns true iff b lies within radiusMeters of a
func WithinRadius(a, b entities.Coordinate, radiusMeters float64) (bool, error) {
	result, err := Measure(a, b, radiusMeters)
	if err != nil {
		return false, err
	}
	return result.Within, nil
}

func toLatLng(c entities.Coordinate) s2.LatLng {
	return s2.LatLngFromDegrees(c.Latitude, c.Longitude)
}
