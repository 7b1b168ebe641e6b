package geo

import (
	"fmt"
	"math"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

// Bearing is a direction in degrees clockwise from true north, in [0, 360).
type Bearing struct {
	degrees float64
}

// CompassDirection is one of the eight principal compass points.
type CompassDirection string

const (
	North     CompassDirection = "N"
	NorthEast CompassDirection = "NE"
	East      CompassDirection = "E"
	SouthEast CompassDirection = "SE"
	South     CompassDirection = "S"
	SouthWest CompassDirection = "SW"
	West      CompassDirection = "W"
	NorthWest CompassDirection = "NW"
)

var compassPoints = [8]CompassDirection{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// TurnDirection classifies the change of heading needed to reach a target bearing.
type TurnDirection string

const (
	Straight    TurnDirection = "STRAIGHT"
	SlightLeft  TurnDirection = "SLIGHT_LEFT"
	SlightRight TurnDirection = "SLIGHT_RIGHT"
	SharpLeft   TurnDirection = "SHARP_LEFT"
	SharpRight  TurnDirection = "SHARP_RIGHT"
)

const (
	straightToleranceDegrees = 15.0
	slightTurnMaxDegrees     = 90.0
)

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// NewBearing normalizes any finite angle into [0, 360).
func NewBearing(degrees float64) (Bearing, error) {
	if !isFinite(degrees) {
		return Bearing{}, domainerr.New(domainerr.InvalidBearing, "bearing must be finite, got %v", degrees)
	}
	return Bearing{degrees: normalizeDegrees(degrees)}, nil
}

// MustBearing is NewBearing for literals known to be valid.
func MustBearing(degrees float64) Bearing {
	b, err := NewBearing(degrees)
	if err != nil {
		panic(err)
	}
	return b
}

func (b Bearing) Degrees() float64 { return b.degrees }

func (b Bearing) Radians() float64 { return toRadians(b.degrees) }

func (b Bearing) Opposite() Bearing {
	return Bearing{degrees: normalizeDegrees(b.degrees + 180)}
}

// DifferenceTo is the signed turn from b to target in [-180, 180].
// Positive values are clockwise.
func (b Bearing) DifferenceTo(target Bearing) float64 {
	diff := math.Mod(target.degrees-b.degrees, 360)
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	return diff
}

// Compass returns the nearest of the eight compass points.
func (b Bearing) Compass() CompassDirection {
	idx := int(math.Round(b.degrees/45)) % len(compassPoints)
	return compassPoints[idx]
}

// TurnDirectionTo classifies the turn from b to target.
func (b Bearing) TurnDirectionTo(target Bearing) TurnDirection {
	diff := b.DifferenceTo(target)
	abs := math.Abs(diff)
	switch {
	case abs <= straightToleranceDegrees:
		return Straight
	case diff > 0 && abs <= slightTurnMaxDegrees:
		return SlightRight
	case diff > 0:
		return SharpRight
	case abs <= slightTurnMaxDegrees:
		return SlightLeft
	default:
		return SharpLeft
	}
}

// AverageBearings computes the circular mean from the vector sum of unit
// headings, so 350° and 10° average to 0° rather than 180°.
func AverageBearings(bearings ...Bearing) (Bearing, error) {
	if len(bearings) == 0 {
		return Bearing{}, domainerr.New(domainerr.InvalidBearing, "cannot average an empty list of bearings")
	}

	var sumSin, sumCos float64
	for _, b := range bearings {
		sumSin += math.Sin(b.Radians())
		sumCos += math.Cos(b.Radians())
	}

	if math.Abs(sumSin) < 1e-9 && math.Abs(sumCos) < 1e-9 {
		return Bearing{}, domainerr.New(domainerr.InvalidBearing, "bearings cancel out; mean direction is undefined")
	}
	return Bearing{degrees: normalizeDegrees(toDegrees(math.Atan2(sumSin, sumCos)))}, nil
}

func (b Bearing) String() string {
	return fmt.Sprintf("%.1f° %s", b.degrees, b.Compass())
}
