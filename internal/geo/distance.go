package geo

import (
	"fmt"
	"math"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

const (
	// MaxDistanceMeters is the largest distance a transit network deals with.
	MaxDistanceMeters = 500_000.0

	metersPerKilometer = 1000.0
	metersPerMile      = 1609.344
)

// Distance is a non-negative length stored in meters. Two distances are equal
// when they agree to the millimetre.
type Distance struct {
	meters float64
}

// ZeroDistance is the additive identity.
var ZeroDistance = Distance{}

// Meters builds a Distance from meters.
func Meters(v float64) (Distance, error) {
	if !isFinite(v) {
		return Distance{}, domainerr.New(domainerr.InvalidDistance, "distance must be finite, got %v", v)
	}
	if v < 0 {
		return Distance{}, domainerr.New(domainerr.InvalidDistance, "distance cannot be negative, got %v m", v)
	}
	if v > MaxDistanceMeters {
		return Distance{}, domainerr.New(domainerr.InvalidDistance, "distance %.0f m exceeds maximum of %.0f m", v, MaxDistanceMeters)
	}
	return Distance{meters: v}, nil
}

// Kilometers builds a Distance from kilometers.
func Kilometers(v float64) (Distance, error) {
	return Meters(v * metersPerKilometer)
}

// Miles builds a Distance from statute miles.
func Miles(v float64) (Distance, error) {
	return Meters(v * metersPerMile)
}

// MustMeters is Meters for literals known to be valid.
func MustMeters(v float64) Distance {
	d, err := Meters(v)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Distance) Meters() float64 { return d.meters }

func (d Distance) Kilometers() float64 { return d.meters / metersPerKilometer }

func (d Distance) Miles() float64 { return d.meters / metersPerMile }

func (d Distance) IsZero() bool { return d.millimeters() == 0 }

// Add returns d + other. The sum must stay within the ceiling.
func (d Distance) Add(other Distance) (Distance, error) {
	return Meters(d.meters + other.meters)
}

// Subtract returns d - other, floored at zero.
func (d Distance) Subtract(other Distance) Distance {
	return Distance{meters: math.Max(0, d.meters-other.meters)}
}

// MultiplyBy scales d by a non-negative factor.
func (d Distance) MultiplyBy(factor float64) (Distance, error) {
	if !isFinite(factor) || factor < 0 {
		return Distance{}, domainerr.New(domainerr.InvalidDistance, "multiplication factor must be a non-negative number, got %v", factor)
	}
	return Meters(d.meters * factor)
}

// DivideBy divides d by a positive divisor.
func (d Distance) DivideBy(divisor float64) (Distance, error) {
	if !isFinite(divisor) || divisor <= 0 {
		return Distance{}, domainerr.New(domainerr.InvalidDistance, "divisor must be a positive number, got %v", divisor)
	}
	return Meters(d.meters / divisor)
}

func (d Distance) millimeters() int64 {
	return int64(math.Round(d.meters * 1000))
}

// Equal compares to millimetre precision.
func (d Distance) Equal(other Distance) bool {
	return d.millimeters() == other.millimeters()
}

// Compare returns -1, 0 or +1 at millimetre precision.
func (d Distance) Compare(other Distance) int {
	a, b := d.millimeters(), other.millimeters()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (d Distance) LessThan(other Distance) bool { return d.Compare(other) < 0 }

func (d Distance) GreaterThan(other Distance) bool { return d.Compare(other) > 0 }

func (d Distance) String() string {
	if d.meters >= metersPerKilometer {
		return fmt.Sprintf("%.2f km", d.Kilometers())
	}
	return fmt.Sprintf("%.0f m", d.meters)
}

// SumDistances adds distances, failing if the total leaves the valid range.
func SumDistances(ds ...Distance) (Distance, error) {
	total := 0.0
	for _, d := range ds {
		total += d.meters
	}
	return Meters(total)
}
