package geo

import (
	"fmt"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	lat float64
	lng float64
}

// NewCoordinate validates latitude in [-90, 90] and longitude in [-180, 180].
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if !isFinite(lat) || !isFinite(lng) {
		return Coordinate{}, domainerr.New(domainerr.InvalidCoordinate, "coordinate must be finite, got (%v, %v)", lat, lng)
	}
	if lat < -90 || lat > 90 {
		return Coordinate{}, domainerr.New(domainerr.InvalidCoordinate, "latitude %v outside [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return Coordinate{}, domainerr.New(domainerr.InvalidCoordinate, "longitude %v outside [-180, 180]", lng)
	}
	return Coordinate{lat: lat, lng: lng}, nil
}

// MustCoordinate is NewCoordinate for literals known to be valid.
func MustCoordinate(lat, lng float64) Coordinate {
	c, err := NewCoordinate(lat, lng)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Coordinate) Lat() float64 { return c.lat }

func (c Coordinate) Lng() float64 { return c.lng }

// MetersTo returns the raw great-circle distance in meters. Unlike DistanceTo
// it is not bounded by the Distance ceiling.
func (c Coordinate) MetersTo(other Coordinate) float64 {
	return greatCircleMeters(c.lat, c.lng, other.lat, other.lng)
}

// DistanceTo returns the distance to other as a Distance value.
func (c Coordinate) DistanceTo(other Coordinate) (Distance, error) {
	return Meters(c.MetersTo(other))
}

// BearingTo returns the initial bearing from c towards other. Identical
// points yield a bearing of 0.
func (c Coordinate) BearingTo(other Coordinate) Bearing {
	if c == other {
		return Bearing{}
	}
	return Bearing{degrees: normalizeDegrees(initialBearingDegrees(c.lat, c.lng, other.lat, other.lng))}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.lat, c.lng)
}
