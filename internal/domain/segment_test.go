package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/geo"
)

func TestNewRouteSegment_FlatEstimate(t *testing.T) {
	seg, err := NewRouteSegment(DefaultSegmentLimits(), "seg-1", SegmentParams{
		From: "A", To: "B", Distance: km(1), EstimatedTime: 2 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, StopID("A"), seg.From())
	assert.Equal(t, StopID("B"), seg.To())
	assert.InDelta(t, 30, seg.AverageSpeed().KilometersPerHour(), 1e-9)
	assert.Equal(t, 156*time.Second, seg.EstimatedTimeFor(RushHour))
	assert.Equal(t, 120*time.Second, seg.EstimatedTimeFor(OffPeak))
	assert.Equal(t, 96*time.Second, seg.EstimatedTimeFor(Night))
	assert.Equal(t, 108*time.Second, seg.EstimatedTimeFor(Weekends))
	assert.Equal(t, 1, seg.TrafficConditions().Complexity)
}

func TestNewRouteSegmentWithTrafficAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		traffic TrafficConditions
		base    time.Duration
		rush    time.Duration
		night   time.Duration
	}{
		{
			name:    "urban with lights",
			traffic: TrafficConditions{Complexity: 5, HasTrafficLights: true, IsUrbanArea: true},
			base:    911 * time.Second,
			rush:    1421 * time.Second,
			night:   656 * time.Second,
		},
		{
			name:    "complex rural",
			traffic: TrafficConditions{Complexity: 7},
			base:    780 * time.Second,
			rush:    1217 * time.Second,
			night:   624 * time.Second,
		},
		{
			name:    "simple",
			traffic: TrafficConditions{Complexity: 1},
			base:    600 * time.Second,
			rush:    780 * time.Second,
			night:   480 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg, err := NewRouteSegmentWithTrafficAnalysis(DefaultSegmentLimits(), "seg-1", SegmentParams{
				From: "A", To: "B", Distance: km(5), EstimatedTime: 10 * time.Minute,
			}, tt.traffic)
			require.NoError(t, err)

			assert.Equal(t, tt.base, seg.EstimatedTime())
			assert.Equal(t, tt.base, seg.OffPeakTime())
			assert.Equal(t, tt.rush, seg.RushHourTime())
			assert.Equal(t, tt.night, seg.NightTime())
		})
	}
}

func TestNewRouteSegment_Validation(t *testing.T) {
	limits := DefaultSegmentLimits()
	speed := func(v float64) *geo.Speed {
		s := geo.MustSpeedKmh(v)
		return &s
	}

	tests := []struct {
		name   string
		params SegmentParams
		code   domainerr.Code
	}{
		{"same stop", SegmentParams{From: "A", To: "A", Distance: km(1), EstimatedTime: 2 * time.Minute}, domainerr.InvalidSegment},
		{"missing stop", SegmentParams{From: "A", Distance: km(1), EstimatedTime: 2 * time.Minute}, domainerr.InvalidSegment},
		{"too short", SegmentParams{From: "A", To: "B", Distance: m(40), EstimatedTime: time.Minute}, domainerr.InvalidSegment},
		{"too long", SegmentParams{From: "A", To: "B", Distance: km(60), EstimatedTime: time.Hour}, domainerr.InvalidSegment},
		{"too quick", SegmentParams{From: "A", To: "B", Distance: m(100), EstimatedTime: 20 * time.Second}, domainerr.InvalidSegment},
		{"too slow to believe", SegmentParams{From: "A", To: "B", Distance: km(1), EstimatedTime: 4 * time.Hour}, domainerr.InvalidSegment},
		{"too fast", SegmentParams{From: "A", To: "B", Distance: km(10), EstimatedTime: 4 * time.Minute}, domainerr.InvalidSegment},
		{"inconsistent speed", SegmentParams{From: "A", To: "B", Distance: km(1), EstimatedTime: 2 * time.Minute, AverageSpeed: speed(40)}, domainerr.SpeedInconsistent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRouteSegment(limits, "seg-1", tt.params)
			requireViolation(t, err, tt.code)
		})
	}

	t.Run("speed within tolerance", func(t *testing.T) {
		_, err := NewRouteSegment(limits, "seg-1", SegmentParams{
			From: "A", To: "B", Distance: km(1), EstimatedTime: 2 * time.Minute, AverageSpeed: speed(34),
		})
		assert.NoError(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := NewRouteSegment(limits, "", SegmentParams{From: "A", To: "B", Distance: km(1), EstimatedTime: 2 * time.Minute})
		requireViolation(t, err, domainerr.InvalidSegment)
	})

	t.Run("complexity out of range", func(t *testing.T) {
		_, err := NewRouteSegmentWithTrafficAnalysis(limits, "seg-1", SegmentParams{
			From: "A", To: "B", Distance: km(1), EstimatedTime: 2 * time.Minute,
		}, TrafficConditions{Complexity: 11})
		requireViolation(t, err, domainerr.InvalidSegment)
	})
}

func TestMergeSegments(t *testing.T) {
	limits := DefaultSegmentLimits()
	ab, err := NewRouteSegment(limits, "s1", SegmentParams{From: "A", To: "B", Distance: km(1), EstimatedTime: 2 * time.Minute})
	require.NoError(t, err)
	bc, err := NewRouteSegment(limits, "s2", SegmentParams{From: "B", To: "C", Distance: km(2), EstimatedTime: 4 * time.Minute})
	require.NoError(t, err)

	assert.True(t, ab.IsAdjacentTo(bc))
	assert.True(t, bc.IsAdjacentTo(ab))
	assert.True(t, ab.Precedes(bc))
	assert.False(t, bc.Precedes(ab))

	merged, err := MergeSegments(limits, "s3", ab, bc)
	require.NoError(t, err)
	assert.Equal(t, StopID("A"), merged.From())
	assert.Equal(t, StopID("C"), merged.To())
	assert.True(t, merged.Distance().Equal(km(3)))
	assert.Equal(t, 6*time.Minute, merged.EstimatedTime())

	_, err = MergeSegments(limits, "s4", bc, ab)
	requireViolation(t, err, domainerr.SegmentsNotAdjacent)
}

func TestTimePeriodAt(t *testing.T) {
	at := func(day, hour, minute int) time.Time {
		return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
	}
	tests := []struct {
		when time.Time
		want TimePeriod
	}{
		{at(4, 8, 0), RushHour},
		{at(4, 6, 59), OffPeak},
		{at(4, 12, 0), OffPeak},
		{at(4, 17, 30), RushHour},
		{at(4, 19, 0), OffPeak},
		{at(4, 23, 0), Night},
		{at(5, 3, 0), Night},
		{at(9, 8, 0), Weekends},
		{at(10, 23, 0), Weekends},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimePeriodAt(tt.when), tt.when.String())
	}
}
