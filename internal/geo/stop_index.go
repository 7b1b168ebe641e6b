package geo

import (
	"sort"

	"github.com/tidwall/rtree"
)

// IndexedStop is a stop position held by a StopIndex.
type IndexedStop struct {
	ID       string
	Position Coordinate
}

// StopMatch is a search hit with its distance from the query center.
type StopMatch struct {
	Stop   IndexedStop
	Meters float64
}

// StopIndex is an R-tree of stop positions for proximity lookups. It is not
// safe for concurrent writes.
type StopIndex struct {
	tree rtree.RTreeG[IndexedStop]
}

func NewStopIndex() *StopIndex {
	return &StopIndex{}
}

func point(c Coordinate) [2]float64 {
	return [2]float64{c.lng, c.lat}
}

// Insert adds a stop. Re-inserting an ID adds a second entry.
func (idx *StopIndex) Insert(id string, position Coordinate) {
	p := point(position)
	idx.tree.Insert(p, p, IndexedStop{ID: id, Position: position})
}

func (idx *StopIndex) Len() int {
	return idx.tree.Len()
}

// Within returns the stops inside box ordered by ID.
func (idx *StopIndex) Within(box BoundingBox) []IndexedStop {
	var stops []IndexedStop
	idx.tree.Search(point(box.southWest), point(box.northEast),
		func(_, _ [2]float64, stop IndexedStop) bool {
			stops = append(stops, stop)
			return true
		})
	sort.Slice(stops, func(i, j int) bool { return stops[i].ID < stops[j].ID })
	return stops
}

// Nearby returns the stops within radius of center, nearest first.
func (idx *StopIndex) Nearby(center Coordinate, radius Distance) ([]StopMatch, error) {
	box, err := BoundingBoxFromCenterAndRadius(center, radius)
	if err != nil {
		return nil, err
	}

	var matches []StopMatch
	for _, stop := range idx.Within(box) {
		meters := center.MetersTo(stop.Position)
		if meters <= radius.Meters() {
			matches = append(matches, StopMatch{Stop: stop, Meters: meters})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Meters < matches[j].Meters })
	return matches, nil
}
