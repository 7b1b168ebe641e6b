package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

func TestNewBearing_Normalizes(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0, 0},
		{360, 0},
		{370, 10},
		{-10, 350},
		{-720, 0},
		{359.5, 359.5},
	}
	for _, tt := range tests {
		b, err := NewBearing(tt.in)
		require.NoError(t, err)
		assert.InDelta(t, tt.expected, b.Degrees(), 1e-9, "input %v", tt.in)
	}

	_, err := NewBearing(math.NaN())
	assert.True(t, domainerr.Is(err, domainerr.InvalidBearing))
}

func TestAverageBearings_WrapAround(t *testing.T) {
	avg, err := AverageBearings(MustBearing(0), MustBearing(350))
	require.NoError(t, err)
	assert.InDelta(t, 355, avg.Degrees(), 1e-6, "circular mean must not be the naive 175")

	avg, err = AverageBearings(MustBearing(350), MustBearing(10))
	require.NoError(t, err)
	assert.InDelta(t, 0, math.Min(avg.Degrees(), 360-avg.Degrees()), 1e-6)

	avg, err = AverageBearings(MustBearing(80), MustBearing(100))
	require.NoError(t, err)
	assert.InDelta(t, 90, avg.Degrees(), 1e-6)
}

func TestAverageBearings_Errors(t *testing.T) {
	_, err := AverageBearings()
	assert.True(t, domainerr.Is(err, domainerr.InvalidBearing))

	_, err = AverageBearings(MustBearing(0), MustBearing(180))
	assert.True(t, domainerr.Is(err, domainerr.InvalidBearing))
}

func TestBearing_Compass(t *testing.T) {
	tests := map[float64]CompassDirection{
		0:   North,
		22:  North,
		23:  NorthEast,
		90:  East,
		135: SouthEast,
		180: South,
		225: SouthWest,
		270: West,
		315: NorthWest,
		350: North,
	}
	for deg, expected := range tests {
		assert.Equal(t, expected, MustBearing(deg).Compass(), "degrees %v", deg)
	}
}

func TestBearing_TurnDirectionTo(t *testing.T) {
	heading := MustBearing(0)
	tests := []struct {
		target   float64
		expected TurnDirection
	}{
		{10, Straight},
		{345, Straight},
		{45, SlightRight},
		{90, SlightRight},
		{120, SharpRight},
		{300, SlightLeft},
		{200, SharpLeft},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, heading.TurnDirectionTo(MustBearing(tt.target)), "target %v", tt.target)
	}
}

func TestBearing_DifferenceAndOpposite(t *testing.T) {
	assert.InDelta(t, -20, MustBearing(10).DifferenceTo(MustBearing(350)), 1e-9)
	assert.InDelta(t, 20, MustBearing(350).DifferenceTo(MustBearing(10)), 1e-9)
	assert.InDelta(t, 190, MustBearing(10).Opposite().Degrees(), 1e-9)
	assert.InDelta(t, 10, MustBearing(190).Opposite().Degrees(), 1e-9)
}
