package geo

import (
	"fmt"
	"math"
	"time"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

// SpeedUnit is the unit a Speed was recorded in.
type SpeedUnit int

const (
	KilometersPerHour SpeedUnit = iota
	MetersPerSecond
	MilesPerHour
)

func (u SpeedUnit) String() string {
	switch u {
	case KilometersPerHour:
		return "km/h"
	case MetersPerSecond:
		return "m/s"
	case MilesPerHour:
		return "mph"
	default:
		return "unknown"
	}
}

// toKmh is the factor converting one unit of u into km/h.
func (u SpeedUnit) toKmh() float64 {
	switch u {
	case MetersPerSecond:
		return 3.6
	case MilesPerHour:
		return metersPerMile / metersPerKilometer
	default:
		return 1
	}
}

// MaxSpeedKmh is the fleet ceiling; no vehicle in service goes faster.
const MaxSpeedKmh = 200.0

// speedEpsilonKmh absorbs rounding when comparing speeds.
const speedEpsilonKmh = 1e-3

// Speed keeps its original unit so values round-trip unchanged.
type Speed struct {
	value float64
	unit  SpeedUnit
}

// NewSpeed validates value in unit against [0, MaxSpeedKmh].
func NewSpeed(value float64, unit SpeedUnit) (Speed, error) {
	if unit < KilometersPerHour || unit > MilesPerHour {
		return Speed{}, domainerr.New(domainerr.InvalidSpeed, "unknown speed unit %d", int(unit))
	}
	if !isFinite(value) {
		return Speed{}, domainerr.New(domainerr.InvalidSpeed, "speed must be finite, got %v", value)
	}
	if value < 0 {
		return Speed{}, domainerr.New(domainerr.InvalidSpeed, "speed cannot be negative, got %v %s", value, unit)
	}
	if kmh := value * unit.toKmh(); kmh > MaxSpeedKmh+speedEpsilonKmh {
		return Speed{}, domainerr.New(domainerr.InvalidSpeed, "speed %.1f km/h exceeds fleet maximum of %.0f km/h", kmh, MaxSpeedKmh)
	}
	return Speed{value: value, unit: unit}, nil
}

// SpeedKmh builds a Speed in km/h.
func SpeedKmh(v float64) (Speed, error) {
	return NewSpeed(v, KilometersPerHour)
}

// MustSpeedKmh is SpeedKmh for literals known to be valid.
func MustSpeedKmh(v float64) Speed {
	s, err := SpeedKmh(v)
	if err != nil {
		panic(err)
	}
	return s
}

// SpeedFromTravel derives the average speed covering d in t.
func SpeedFromTravel(d Distance, t time.Duration) (Speed, error) {
	if t <= 0 {
		return Speed{}, domainerr.New(domainerr.InvalidSpeed, "travel time must be positive, got %s", t)
	}
	return NewSpeed(d.Meters()/t.Seconds(), MetersPerSecond)
}

func (s Speed) Value() float64 { return s.value }

func (s Speed) Unit() SpeedUnit { return s.unit }

func (s Speed) KilometersPerHour() float64 { return s.value * s.unit.toKmh() }

func (s Speed) MetersPerSecond() float64 { return s.KilometersPerHour() / 3.6 }

func (s Speed) MilesPerHour() float64 { return s.KilometersPerHour() / MilesPerHour.toKmh() }

func (s Speed) IsZero() bool { return s.KilometersPerHour() < speedEpsilonKmh }

// TravelTime is how long covering d takes at s.
func (s Speed) TravelTime(d Distance) (time.Duration, error) {
	if s.IsZero() {
		return 0, domainerr.New(domainerr.InvalidSpeed, "cannot derive travel time at zero speed")
	}
	seconds := d.Meters() / s.MetersPerSecond()
	return time.Duration(math.Round(seconds * float64(time.Second))), nil
}

// Compare returns -1, 0 or +1 ignoring unit differences.
func (s Speed) Compare(other Speed) int {
	diff := s.KilometersPerHour() - other.KilometersPerHour()
	switch {
	case diff < -speedEpsilonKmh:
		return -1
	case diff > speedEpsilonKmh:
		return 1
	default:
		return 0
	}
}

func (s Speed) Equal(other Speed) bool { return s.Compare(other) == 0 }

func (s Speed) String() string {
	return fmt.Sprintf("%.1f %s", s.value, s.unit)
}
