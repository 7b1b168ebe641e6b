package geo

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

// EncodePolyline encodes a path with Google's polyline algorithm.
func EncodePolyline(path []Coordinate) string {
	coords := make([][]float64, len(path))
	for i, c := range path {
		coords[i] = []float64{c.lat, c.lng}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of EncodePolyline; every decoded point is
// validated as a Coordinate.
func DecodePolyline(encoded string) ([]Coordinate, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	path := make([]Coordinate, 0, len(coords))
	for _, pair := range coords {
		c, err := NewCoordinate(pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("decode polyline: %w", err)
		}
		path = append(path, c)
	}
	return path, nil
}

// PathLength sums the great-circle length of consecutive legs in meters.
func PathLength(path []Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i-1].MetersTo(path[i])
	}
	return total
}
