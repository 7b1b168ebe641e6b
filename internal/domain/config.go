package domain

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/clock"
)

// SegmentLimits bounds a single stop-to-stop segment and its time-of-day factors.
type SegmentLimits struct {
	MinDistanceMeters    float64
	MaxDistanceMeters    float64
	MinTravelTime        time.Duration
	MaxTravelTime        time.Duration
	MinSpeedKmh          float64
	MaxSpeedKmh          float64
	SpeedToleranceKmh    float64
	MinTrafficComplexity int
	MaxTrafficComplexity int
	RushHourFactor       float64
	NightFactor          float64
	WeekendFactor        float64
}

// RouteLimits bounds a route's structure and drives its maintenance alerting.
type RouteLimits struct {
	MinNameLength         int
	MaxNameLength         int
	MinStops              int
	MaxStops              int
	FlatSpeedKmh          float64
	HighComplexityStops   int
	HighComplexityKm      float64
	MediumComplexityStops int
	MediumComplexityKm    float64
	MaxReportedSpeedKmh   float64
	OnTimeAlertPercent    float64
	ExpressMinSpeedKmh    float64
	StandardMinSpeedKmh   float64
	ExpressMinRidership   int
	StandardMinRidership  int
}

// ScheduleLimits bounds schedule periods, headways, dynamic adjustments and
// performance alerting.
type ScheduleLimits struct {
	MaxPeriods              int
	MaxPeriodNameLength     int
	MinHeadway              time.Duration
	MaxHeadway              time.Duration
	MaxFlexibleDelayMinutes int
	MaxDelayMinutes         int
	AdherenceAlertPercent   float64
	MissedTripsAlertLimit   int
}

// Config carries the tunable rules plus the time and identity sources every
// aggregate needs. Aggregates keep a copy of the Config they were built with.
type Config struct {
	Route    RouteLimits
	Segment  SegmentLimits
	Schedule ScheduleLimits
	Clock    clock.Clock
	NewID    func() string
}

func DefaultSegmentLimits() SegmentLimits {
	return SegmentLimits{
		MinDistanceMeters:    50,
		MaxDistanceMeters:    50_000,
		MinTravelTime:        30 * time.Second,
		MaxTravelTime:        3 * time.Hour,
		MinSpeedKmh:          1,
		MaxSpeedKmh:          120,
		SpeedToleranceKmh:    5,
		MinTrafficComplexity: 1,
		MaxTrafficComplexity: 10,
		RushHourFactor:       1.3,
		NightFactor:          0.8,
		WeekendFactor:        0.9,
	}
}

func DefaultRouteLimits() RouteLimits {
	return RouteLimits{
		MinNameLength:         3,
		MaxNameLength:         100,
		MinStops:              2,
		MaxStops:              100,
		FlatSpeedKmh:          30,
		HighComplexityStops:   50,
		HighComplexityKm:      80,
		MediumComplexityStops: 20,
		MediumComplexityKm:    30,
		MaxReportedSpeedKmh:   200,
		OnTimeAlertPercent:    70,
		ExpressMinSpeedKmh:    25,
		StandardMinSpeedKmh:   15,
		ExpressMinRidership:   500,
		StandardMinRidership:  200,
	}
}

func DefaultScheduleLimits() ScheduleLimits {
	return ScheduleLimits{
		MaxPeriods:              10,
		MaxPeriodNameLength:     50,
		MinHeadway:              time.Minute,
		MaxHeadway:              240 * time.Minute,
		MaxFlexibleDelayMinutes: 10,
		MaxDelayMinutes:         5,
		AdherenceAlertPercent:   80,
		MissedTripsAlertLimit:   5,
	}
}

// DefaultConfig uses the production limits, the system clock and random UUIDs.
func DefaultConfig() Config {
	return Config{
		Route:    DefaultRouteLimits(),
		Segment:  DefaultSegmentLimits(),
		Schedule: DefaultScheduleLimits(),
		Clock:    clock.RealClock{},
		NewID:    uuid.NewString,
	}
}

// WithDefaults fills in any part of c left at its zero value.
func (c Config) WithDefaults() Config {
	if c.Route == (RouteLimits{}) {
		c.Route = DefaultRouteLimits()
	}
	if c.Segment == (SegmentLimits{}) {
		c.Segment = DefaultSegmentLimits()
	}
	if c.Schedule == (ScheduleLimits{}) {
		c.Schedule = DefaultScheduleLimits()
	}
	if c.Clock == nil {
		c.Clock = clock.RealClock{}
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
	return c
}

func (c Config) now() time.Time {
	return c.Clock.Now()
}

// SequentialIDs returns an ID source yielding prefix-1, prefix-2, ... It is
// safe for concurrent use.
func SequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}

type (
	RouteID         string
	RouteScheduleID string
	SegmentID       string
	StopID          string
)
