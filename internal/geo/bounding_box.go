package geo

import (
	"fmt"
	"math"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

// MinBoundingBoxSpanMeters is the smallest diagonal a box may have.
const MinBoundingBoxSpanMeters = 1.0

// MaxSubdivisionGrid caps Subdivide to keep the result size sane.
const MaxSubdivisionGrid = 100

// BoundingBox is an axis-aligned latitude/longitude rectangle. Boxes that
// cross the antimeridian are not supported.
type BoundingBox struct {
	southWest Coordinate
	northEast Coordinate
}

// NewBoundingBox validates south <= north, west <= east and the minimum span.
func NewBoundingBox(southWest, northEast Coordinate) (BoundingBox, error) {
	if southWest.lat > northEast.lat {
		return BoundingBox{}, domainerr.New(domainerr.InvalidBoundingBox, "south latitude %v is north of north latitude %v", southWest.lat, northEast.lat)
	}
	if southWest.lng > northEast.lng {
		return BoundingBox{}, domainerr.New(domainerr.InvalidBoundingBox, "west longitude %v is east of east longitude %v", southWest.lng, northEast.lng)
	}
	if span := southWest.MetersTo(northEast); span < MinBoundingBoxSpanMeters {
		return BoundingBox{}, domainerr.New(domainerr.InvalidBoundingBox, "bounding box span %.3f m is below the %.0f m minimum", span, MinBoundingBoxSpanMeters)
	}
	return BoundingBox{southWest: southWest, northEast: northEast}, nil
}

// BoundingBoxOfCorners builds a box from its south, west, north and east edges.
func BoundingBoxOfCorners(south, west, north, east float64) (BoundingBox, error) {
	sw, err := NewCoordinate(south, west)
	if err != nil {
		return BoundingBox{}, err
	}
	ne, err := NewCoordinate(north, east)
	if err != nil {
		return BoundingBox{}, err
	}
	return NewBoundingBox(sw, ne)
}

// BoundingBoxFromCenterAndRadius uses the equirectangular approximation,
// which is accurate enough below ~200 km. Edges are clamped to valid
// coordinates near the poles and the antimeridian.
func BoundingBoxFromCenterAndRadius(center Coordinate, radius Distance) (BoundingBox, error) {
	latOffset, lonOffset := degreeOffsets(center.lat, radius.Meters())
	return BoundingBoxOfCorners(
		clamp(center.lat-latOffset, -90, 90),
		clamp(center.lng-lonOffset, -180, 180),
		clamp(center.lat+latOffset, -90, 90),
		clamp(center.lng+lonOffset, -180, 180),
	)
}

// EnclosingBoundingBox returns the smallest box containing every coordinate.
func EnclosingBoundingBox(coords ...Coordinate) (BoundingBox, error) {
	if len(coords) == 0 {
		return BoundingBox{}, domainerr.New(domainerr.InvalidBoundingBox, "cannot enclose an empty set of coordinates")
	}
	south, west := coords[0].lat, coords[0].lng
	north, east := south, west
	for _, c := range coords[1:] {
		south = math.Min(south, c.lat)
		north = math.Max(north, c.lat)
		west = math.Min(west, c.lng)
		east = math.Max(east, c.lng)
	}
	return BoundingBoxOfCorners(south, west, north, east)
}

func (b BoundingBox) SouthWest() Coordinate { return b.southWest }

func (b BoundingBox) NorthEast() Coordinate { return b.northEast }

func (b BoundingBox) South() float64 { return b.southWest.lat }

func (b BoundingBox) West() float64 { return b.southWest.lng }

func (b BoundingBox) North() float64 { return b.northEast.lat }

func (b BoundingBox) East() float64 { return b.northEast.lng }

// Center is the midpoint of the box in degree space.
func (b BoundingBox) Center() Coordinate {
	return Coordinate{
		lat: (b.southWest.lat + b.northEast.lat) / 2,
		lng: (b.southWest.lng + b.northEast.lng) / 2,
	}
}

// HeightMeters is the north-south extent.
func (b BoundingBox) HeightMeters() float64 {
	return greatCircleMeters(b.South(), b.West(), b.North(), b.West())
}

// WidthMeters is the east-west extent measured along the central parallel.
func (b BoundingBox) WidthMeters() float64 {
	lat := b.Center().lat
	return greatCircleMeters(lat, b.West(), lat, b.East())
}

// Contains reports whether c lies inside the box or on its edge.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.lat >= b.South() && c.lat <= b.North() &&
		c.lng >= b.West() && c.lng <= b.East()
}

// ContainsBox reports whether other lies entirely inside b.
func (b BoundingBox) ContainsBox(other BoundingBox) bool {
	return b.Contains(other.southWest) && b.Contains(other.northEast)
}

// Intersects reports whether the boxes share any point, edges included.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(other.North() < b.South() ||
		other.South() > b.North() ||
		other.East() < b.West() ||
		other.West() > b.East())
}

// Intersection returns the overlapping box. ok is false when the boxes do not
// overlap or the overlap is thinner than the minimum span.
func (b BoundingBox) Intersection(other BoundingBox) (box BoundingBox, ok bool) {
	if !b.Intersects(other) {
		return BoundingBox{}, false
	}
	box, err := BoundingBoxOfCorners(
		math.Max(b.South(), other.South()),
		math.Max(b.West(), other.West()),
		math.Min(b.North(), other.North()),
		math.Min(b.East(), other.East()),
	)
	if err != nil {
		return BoundingBox{}, false
	}
	return box, true
}

// Union returns the smallest box containing both.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		southWest: Coordinate{lat: math.Min(b.South(), other.South()), lng: math.Min(b.West(), other.West())},
		northEast: Coordinate{lat: math.Max(b.North(), other.North()), lng: math.Max(b.East(), other.East())},
	}
}

// Expand grows every edge outward by margin.
func (b BoundingBox) Expand(margin Distance) (BoundingBox, error) {
	latOffset, lonOffset := degreeOffsets(b.Center().lat, margin.Meters())
	return BoundingBoxOfCorners(
		clamp(b.South()-latOffset, -90, 90),
		clamp(b.West()-lonOffset, -180, 180),
		clamp(b.North()+latOffset, -90, 90),
		clamp(b.East()+lonOffset, -180, 180),
	)
}

// Subdivide splits the box into gridSize*gridSize equal cells. Cells are
// returned row-major starting at the south-west corner: west to east, then
// south to north.
func (b BoundingBox) Subdivide(gridSize int) ([]BoundingBox, error) {
	if gridSize < 1 || gridSize > MaxSubdivisionGrid {
		return nil, domainerr.New(domainerr.InvalidBoundingBox, "grid size must be between 1 and %d, got %d", MaxSubdivisionGrid, gridSize)
	}

	latStep := (b.North() - b.South()) / float64(gridSize)
	lngStep := (b.East() - b.West()) / float64(gridSize)

	cells := make([]BoundingBox, 0, gridSize*gridSize)
	for row := 0; row < gridSize; row++ {
		south := b.South() + float64(row)*latStep
		north := south + latStep
		if row == gridSize-1 {
			north = b.North()
		}
		for col := 0; col < gridSize; col++ {
			west := b.West() + float64(col)*lngStep
			east := west + lngStep
			if col == gridSize-1 {
				east = b.East()
			}
			cell, err := BoundingBoxOfCorners(south, west, north, east)
			if err != nil {
				return nil, fmt.Errorf("subdivide into %dx%d: %w", gridSize, gridSize, err)
			}
			cells = append(cells, cell)
		}
	}
	return cells, nil
}

// nearestPoint clamps c onto the box.
func (b BoundingBox) nearestPoint(c Coordinate) Coordinate {
	return Coordinate{
		lat: clamp(c.lat, b.South(), b.North()),
		lng: clamp(c.lng, b.West(), b.East()),
	}
}

// DistanceTo is zero for contained points, otherwise the distance from c to
// the nearest point of the box.
func (b BoundingBox) DistanceTo(c Coordinate) (Distance, error) {
	if b.Contains(c) {
		return ZeroDistance, nil
	}
	return c.DistanceTo(b.nearestPoint(c))
}

// DistanceToBox is zero for intersecting boxes, otherwise the gap between
// their nearest points.
func (b BoundingBox) DistanceToBox(other BoundingBox) (Distance, error) {
	if b.Intersects(other) {
		return ZeroDistance, nil
	}
	latFrom, latTo := facingEdges(b.South(), b.North(), other.South(), other.North())
	lngFrom, lngTo := facingEdges(b.West(), b.East(), other.West(), other.East())
	return Coordinate{lat: latFrom, lng: lngFrom}.DistanceTo(Coordinate{lat: latTo, lng: lngTo})
}

// facingEdges picks, along one axis, the closest values of [aMin, aMax] and
// [bMin, bMax]. Overlapping intervals share a value.
func facingEdges(aMin, aMax, bMin, bMax float64) (float64, float64) {
	switch {
	case aMax < bMin:
		return aMax, bMin
	case bMax < aMin:
		return aMin, bMax
	default:
		v := math.Max(aMin, bMin)
		return v, v
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%s, %s]", b.southWest, b.northEast)
}
