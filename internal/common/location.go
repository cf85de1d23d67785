package common

import (
	"errors"
	"fmt"
	"math"
)

// kmPerDegree is the approximate length of one degree of latitude at the
// equator. The estimator is intentionally planar: accurate enough to rank
// drivers within a metro area, not geodesically correct at scale.
const kmPerDegree = 111.0

var ErrInvalidLatLng = errors.New("invalid latitude or longitude")

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NewLocation(lat, lng float64) Location {
	return Location{Lat: lat, Lng: lng}
}

// ApproxDistanceKM returns the planar Euclidean distance between two
// coordinates scaled to kilometers. Identical points yield zero.
func ApproxDistanceKM(a, b Location) float64 {
	dLat := b.Lat - a.Lat
	dLng := b.Lng - a.Lng
	return math.Sqrt(dLat*dLat+dLng*dLng) * kmPerDegree
}

func ValidateLatLng(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidLatLng)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidLatLng)
	}
	return nil
}
