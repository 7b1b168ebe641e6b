package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/geo"
)

type TimePeriod string

const (
	RushHour TimePeriod = "RUSH_HOUR"
	OffPeak  TimePeriod = "OFF_PEAK"
	Night    TimePeriod = "NIGHT"
	Weekends TimePeriod = "WEEKEND"
)

// TimePeriodAt classifies a wall-clock instant. Saturdays and Sundays are
// always WEEKEND; on weekdays 07:00-09:00 and 16:00-19:00 are rush hour and
// 22:00-05:00 is night.
func TimePeriodAt(t time.Time) TimePeriod {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return Weekends
	}
	switch h := t.Hour(); {
	case h >= 7 && h < 9, h >= 16 && h < 19:
		return RushHour
	case h >= 22 || h < 5:
		return Night
	default:
		return OffPeak
	}
}

// SegmentParams describes the travel between two consecutive stops.
// AverageSpeed is optional; when set it must agree with Distance/EstimatedTime.
type SegmentParams struct {
	From          StopID
	To            StopID
	Distance      geo.Distance
	EstimatedTime time.Duration
	AverageSpeed  *geo.Speed
}

// TrafficConditions feed the traffic-aware estimate.
type TrafficConditions struct {
	Complexity       int
	HasTrafficLights bool
	IsUrbanArea      bool
}

// RouteSegment is the immutable edge between two consecutive stops.
type RouteSegment struct {
	id            SegmentID
	from          StopID
	to            StopID
	distance      geo.Distance
	estimatedTime time.Duration
	averageSpeed  geo.Speed
	traffic       TrafficConditions
	rushHourTime  time.Duration
	offPeakTime   time.Duration
	nightTime     time.Duration
	weekendFactor float64
}

// NewRouteSegment builds a segment with the flat estimate: rush hour is the
// base time scaled by the rush hour factor, night by the night factor.
func NewRouteSegment(limits SegmentLimits, id SegmentID, p SegmentParams) (RouteSegment, error) {
	if err := validateSegmentParams(limits, id, p); err != nil {
		return RouteSegment{}, err
	}
	if err := validateTravelTime(limits, p.EstimatedTime); err != nil {
		return RouteSegment{}, err
	}
	speed, err := derivedSpeed(limits, p)
	if err != nil {
		return RouteSegment{}, err
	}
	return RouteSegment{
		id:            id,
		from:          p.From,
		to:            p.To,
		distance:      p.Distance,
		estimatedTime: p.EstimatedTime,
		averageSpeed:  speed,
		traffic:       TrafficConditions{Complexity: limits.MinTrafficComplexity},
		rushHourTime:  scaleDuration(p.EstimatedTime, limits.RushHourFactor),
		offPeakTime:   p.EstimatedTime,
		nightTime:     scaleDuration(p.EstimatedTime, limits.NightFactor),
		weekendFactor: limits.WeekendFactor,
	}, nil
}

// NewRouteSegmentWithTrafficAnalysis adjusts the base time for complexity,
// traffic lights and urban areas before deriving the time-of-day variants.
// Urban or highly complex segments get an extra rush hour penalty and urban
// segments an extra night discount.
func NewRouteSegmentWithTrafficAnalysis(limits SegmentLimits, id SegmentID, p SegmentParams, tc TrafficConditions) (RouteSegment, error) {
	if err := validateSegmentParams(limits, id, p); err != nil {
		return RouteSegment{}, err
	}
	if tc.Complexity < limits.MinTrafficComplexity || tc.Complexity > limits.MaxTrafficComplexity {
		return RouteSegment{}, domainerr.New(domainerr.InvalidSegment,
			"traffic complexity %d outside %d-%d", tc.Complexity, limits.MinTrafficComplexity, limits.MaxTrafficComplexity)
	}

	factor := 1 + 0.05*float64(tc.Complexity-1)
	if tc.HasTrafficLights {
		factor *= 1.15
	}
	if tc.IsUrbanArea {
		factor *= 1.10
	}
	adjusted := scaleDuration(p.EstimatedTime, factor)
	if err := validateTravelTime(limits, adjusted); err != nil {
		return RouteSegment{}, err
	}

	adjustedParams := p
	adjustedParams.EstimatedTime = adjusted
	speed, err := derivedSpeed(limits, adjustedParams)
	if err != nil {
		return RouteSegment{}, err
	}

	rush := limits.RushHourFactor
	if tc.IsUrbanArea || tc.Complexity >= 7 {
		rush *= 1.2
	}
	night := limits.NightFactor
	if tc.IsUrbanArea {
		night *= 0.9
	}

	return RouteSegment{
		id:            id,
		from:          p.From,
		to:            p.To,
		distance:      p.Distance,
		estimatedTime: adjusted,
		averageSpeed:  speed,
		traffic:       tc,
		rushHourTime:  scaleDuration(adjusted, rush),
		offPeakTime:   adjusted,
		nightTime:     scaleDuration(adjusted, night),
		weekendFactor: limits.WeekendFactor,
	}, nil
}

// MergeSegments joins two consecutive segments a.from -> b.to with a flat
// estimate whose distance and time are the sums of both.
func MergeSegments(limits SegmentLimits, id SegmentID, a, b RouteSegment) (RouteSegment, error) {
	if !a.Precedes(b) {
		return RouteSegment{}, domainerr.New(domainerr.SegmentsNotAdjacent,
			"segment %s->%s does not continue into %s->%s", a.from, a.to, b.from, b.to)
	}
	distance, err := a.distance.Add(b.distance)
	if err != nil {
		return RouteSegment{}, err
	}
	return NewRouteSegment(limits, id, SegmentParams{
		From:          a.from,
		To:            b.to,
		Distance:      distance,
		EstimatedTime: a.estimatedTime + b.estimatedTime,
	})
}

func validateSegmentParams(limits SegmentLimits, id SegmentID, p SegmentParams) error {
	if id == "" {
		return domainerr.New(domainerr.InvalidSegment, "segment id is required")
	}
	if p.From == "" || p.To == "" {
		return domainerr.New(domainerr.InvalidSegment, "segment needs both stops")
	}
	if p.From == p.To {
		return domainerr.New(domainerr.InvalidSegment, "segment cannot start and end at stop %s", p.From)
	}
	m := p.Distance.Meters()
	if m < limits.MinDistanceMeters || m > limits.MaxDistanceMeters {
		return domainerr.New(domainerr.InvalidSegment, "segment distance %s outside %.0f-%.0f m",
			p.Distance, limits.MinDistanceMeters, limits.MaxDistanceMeters)
	}
	return nil
}

func validateTravelTime(limits SegmentLimits, d time.Duration) error {
	if d < limits.MinTravelTime || d > limits.MaxTravelTime {
		return domainerr.New(domainerr.InvalidSegment, "segment travel time %s outside %s-%s",
			d, limits.MinTravelTime, limits.MaxTravelTime)
	}
	return nil
}

func derivedSpeed(limits SegmentLimits, p SegmentParams) (geo.Speed, error) {
	speed, err := geo.SpeedFromTravel(p.Distance, p.EstimatedTime)
	if err != nil {
		return geo.Speed{}, domainerr.New(domainerr.InvalidSegment, "segment speed: %s", domainerr.MessageOf(err))
	}
	kmh := speed.KilometersPerHour()
	if kmh < limits.MinSpeedKmh || kmh > limits.MaxSpeedKmh {
		return geo.Speed{}, domainerr.New(domainerr.InvalidSegment, "segment speed %.1f km/h outside %.0f-%.0f km/h",
			kmh, limits.MinSpeedKmh, limits.MaxSpeedKmh)
	}
	if p.AverageSpeed != nil {
		if diff := math.Abs(p.AverageSpeed.KilometersPerHour() - kmh); diff > limits.SpeedToleranceKmh {
			return geo.Speed{}, domainerr.New(domainerr.SpeedInconsistent,
				"reported speed %s differs from %.1f km/h derived from distance and time", *p.AverageSpeed, kmh)
		}
	}
	return speed, nil
}

// scaleDuration multiplies d by f, rounded to the second.
func scaleDuration(d time.Duration, f float64) time.Duration {
	return time.Duration(math.Round(d.Seconds()*f)) * time.Second
}

func (s RouteSegment) ID() SegmentID                        { return s.id }
func (s RouteSegment) From() StopID                         { return s.from }
func (s RouteSegment) To() StopID                           { return s.to }
func (s RouteSegment) Distance() geo.Distance               { return s.distance }
func (s RouteSegment) EstimatedTime() time.Duration         { return s.estimatedTime }
func (s RouteSegment) AverageSpeed() geo.Speed              { return s.averageSpeed }
func (s RouteSegment) TrafficConditions() TrafficConditions { return s.traffic }
func (s RouteSegment) RushHourTime() time.Duration          { return s.rushHourTime }
func (s RouteSegment) OffPeakTime() time.Duration           { return s.offPeakTime }
func (s RouteSegment) NightTime() time.Duration             { return s.nightTime }

// EstimatedTimeFor returns the travel time for a period. WEEKEND is derived
// from the off-peak time; unknown periods get the base estimate.
func (s RouteSegment) EstimatedTimeFor(p TimePeriod) time.Duration {
	switch p {
	case RushHour:
		return s.rushHourTime
	case OffPeak:
		return s.offPeakTime
	case Night:
		return s.nightTime
	case Weekends:
		return scaleDuration(s.offPeakTime, s.weekendFactor)
	default:
		return s.estimatedTime
	}
}

// Precedes reports whether o starts where s ends.
func (s RouteSegment) Precedes(o RouteSegment) bool { return s.to == o.from }

// IsAdjacentTo reports whether either segment continues into the other.
func (s RouteSegment) IsAdjacentTo(o RouteSegment) bool {
	return s.Precedes(o) || o.Precedes(s)
}

func (s RouteSegment) String() string {
	return fmt.Sprintf("%s->%s %s %s", s.from, s.to, s.distance, s.estimatedTime)
}
