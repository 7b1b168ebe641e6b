package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

type ScheduleType string

const (
	Fixed            ScheduleType = "FIXED"
	Flexible         ScheduleType = "FLEXIBLE"
	FrequencyBased   ScheduleType = "FREQUENCY_BASED"
	DemandResponsive ScheduleType = "DEMAND_RESPONSIVE"
	Hybrid           ScheduleType = "HYBRID"
)

func ParseScheduleType(s string) (ScheduleType, error) {
	switch t := ScheduleType(strings.ToUpper(strings.TrimSpace(s))); t {
	case Fixed, Flexible, FrequencyBased, DemandResponsive, Hybrid:
		return t, nil
	default:
		return "", domainerr.New(domainerr.InvalidSchedule, "unknown schedule type %q", s)
	}
}

// Frequency is the band of headways a schedule runs at.
type Frequency struct {
	MinHeadway time.Duration
	MaxHeadway time.Duration
}

func NewFrequency(limits ScheduleLimits, minHeadway, maxHeadway time.Duration) (Frequency, error) {
	f := Frequency{MinHeadway: minHeadway, MaxHeadway: maxHeadway}
	if err := f.validate(limits); err != nil {
		return Frequency{}, err
	}
	return f, nil
}

func (f Frequency) validate(limits ScheduleLimits) error {
	if err := validateHeadway(limits, f.MinHeadway); err != nil {
		return domainerr.New(domainerr.InvalidFrequency, "minimum headway: %s", domainerr.MessageOf(err))
	}
	if err := validateHeadway(limits, f.MaxHeadway); err != nil {
		return domainerr.New(domainerr.InvalidFrequency, "maximum headway: %s", domainerr.MessageOf(err))
	}
	if f.MinHeadway > f.MaxHeadway {
		return domainerr.New(domainerr.InvalidFrequency, "minimum headway %s exceeds maximum %s", f.MinHeadway, f.MaxHeadway)
	}
	return nil
}

// TripsPerHour is the service rate at the minimum headway.
func (f Frequency) TripsPerHour() float64 {
	if f.MinHeadway <= 0 {
		return 0
	}
	return float64(time.Hour) / float64(f.MinHeadway)
}

func (f Frequency) String() string {
	return fmt.Sprintf("every %s-%s", f.MinHeadway, f.MaxHeadway)
}

func validateHeadway(limits ScheduleLimits, h time.Duration) error {
	if h < limits.MinHeadway || h > limits.MaxHeadway {
		return domainerr.New(domainerr.InvalidHeadway, "headway %s outside %s-%s", h, limits.MinHeadway, limits.MaxHeadway)
	}
	return nil
}

// DailySchedule is the timetable of departures from the first stop on one
// day of the week, sorted and without duplicates.
type DailySchedule struct {
	day               time.Weekday
	departures        []TimeOfDay
	adjustmentMinutes int
}

func NewDailySchedule(day time.Weekday, departures []TimeOfDay) (DailySchedule, error) {
	if day < time.Sunday || day > time.Saturday {
		return DailySchedule{}, domainerr.New(domainerr.InvalidSchedule, "invalid weekday %d", day)
	}
	if len(departures) == 0 {
		return DailySchedule{}, domainerr.New(domainerr.InvalidSchedule, "%s timetable needs at least one departure", day)
	}
	for _, d := range departures {
		if d < 0 || d >= MaxTimeOfDay {
			return DailySchedule{}, domainerr.New(domainerr.InvalidSchedule, "departure %s outside the service day", d)
		}
	}
	sorted := slices.Clone(departures)
	slices.Sort(sorted)
	return DailySchedule{day: day, departures: slices.Compact(sorted)}, nil
}

func (d DailySchedule) Day() time.Weekday         { return d.day }
func (d DailySchedule) Departures() []TimeOfDay   { return slices.Clone(d.departures) }
func (d DailySchedule) TripCount() int            { return len(d.departures) }
func (d DailySchedule) FirstDeparture() TimeOfDay { return d.departures[0] }
func (d DailySchedule) LastDeparture() TimeOfDay  { return d.departures[len(d.departures)-1] }

// AdjustmentMinutes is the net dynamic shift applied since the timetable was set.
func (d DailySchedule) AdjustmentMinutes() int { return d.adjustmentMinutes }

// ServiceSpan is the time between the first and last departure.
func (d DailySchedule) ServiceSpan() time.Duration {
	return d.LastDeparture().Sub(d.FirstDeparture())
}

// NextDeparture returns the first departure at or after t.
func (d DailySchedule) NextDeparture(t TimeOfDay) (TimeOfDay, bool) {
	i, _ := slices.BinarySearch(d.departures, t)
	if i == len(d.departures) {
		return 0, false
	}
	return d.departures[i], true
}

func (d DailySchedule) shift(minutes int) (DailySchedule, error) {
	delta := TimeOfDay(minutes * 60)
	shifted := make([]TimeOfDay, len(d.departures))
	for i, dep := range d.departures {
		t := dep + delta
		if t < 0 || t >= MaxTimeOfDay {
			return DailySchedule{}, domainerr.New(domainerr.InvalidSchedule,
				"shifting %s by %d minutes leaves the service day", dep, minutes)
		}
		shifted[i] = t
	}
	return DailySchedule{day: d.day, departures: shifted, adjustmentMinutes: d.adjustmentMinutes + minutes}, nil
}

// SchedulePeriod is a named band of the service day with its own headway.
type SchedulePeriod struct {
	Name    string
	Start   TimeOfDay
	End     TimeOfDay
	Headway time.Duration
	Days    Weekdays
}

func (p SchedulePeriod) Window() TimeWindow { return TimeWindow{Start: p.Start, End: p.End} }

// Covers reports whether the period applies at t on day.
func (p SchedulePeriod) Covers(day time.Weekday, t TimeOfDay) bool {
	return p.Days.Has(day) && p.Window().Contains(t)
}

// Overlaps reports whether the periods share a day and their windows intersect.
func (p SchedulePeriod) Overlaps(o SchedulePeriod) bool {
	return p.Days.Overlaps(o.Days) && p.Window().Overlaps(o.Window())
}

// TripCount is the number of departures the period generates per day.
func (p SchedulePeriod) TripCount() int {
	if p.Headway <= 0 {
		return 0
	}
	return int((p.Window().Duration() + p.Headway - 1) / p.Headway)
}

func (p SchedulePeriod) validate(limits ScheduleLimits) (SchedulePeriod, error) {
	p.Name = strings.TrimSpace(p.Name)
	if n := utf8.RuneCountInString(p.Name); n == 0 || n > limits.MaxPeriodNameLength {
		return p, domainerr.New(domainerr.InvalidPeriod, "period name must be 1-%d characters", limits.MaxPeriodNameLength)
	}
	if err := p.Window().validate(); err != nil {
		return p, domainerr.New(domainerr.InvalidPeriod, "period %q: %s", p.Name, domainerr.MessageOf(err))
	}
	if p.End > Midnight {
		return p, domainerr.New(domainerr.InvalidPeriod, "period %q must end by 24:00, got %s", p.Name, p.End)
	}
	if err := validateHeadway(limits, p.Headway); err != nil {
		return p, err
	}
	if p.Days.IsEmpty() {
		return p, domainerr.New(domainerr.InvalidPeriod, "period %q has no operating days", p.Name)
	}
	return p, nil
}

// FrequencyPattern is a named headway profile. PeakHeadway, when set, applies
// inside PeakWindows instead of Headway.
type FrequencyPattern struct {
	Name        string
	Headway     time.Duration
	PeakHeadway time.Duration
	PeakWindows []TimeWindow
}

func (f FrequencyPattern) HeadwayAt(t TimeOfDay) time.Duration {
	if f.PeakHeadway > 0 {
		for _, w := range f.PeakWindows {
			if w.Contains(t) {
				return f.PeakHeadway
			}
		}
	}
	return f.Headway
}

func (f FrequencyPattern) HasPeak() bool { return f.PeakHeadway > 0 }

func (f FrequencyPattern) clone() FrequencyPattern {
	f.PeakWindows = slices.Clone(f.PeakWindows)
	return f
}

func (f FrequencyPattern) validate(limits ScheduleLimits) (FrequencyPattern, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return f, domainerr.New(domainerr.InvalidFrequency, "frequency pattern name is required")
	}
	if err := validateHeadway(limits, f.Headway); err != nil {
		return f, err
	}
	if f.PeakHeadway == 0 {
		if len(f.PeakWindows) > 0 {
			return f, domainerr.New(domainerr.InvalidFrequency, "pattern %q has peak windows but no peak headway", f.Name)
		}
		return f.clone(), nil
	}
	if err := validateHeadway(limits, f.PeakHeadway); err != nil {
		return f, err
	}
	if len(f.PeakWindows) == 0 {
		return f, domainerr.New(domainerr.InvalidFrequency, "pattern %q has a peak headway but no peak windows", f.Name)
	}
	for _, w := range f.PeakWindows {
		if err := w.validate(); err != nil {
			return f, domainerr.New(domainerr.InvalidFrequency, "pattern %q: %s", f.Name, domainerr.MessageOf(err))
		}
	}
	return f.clone(), nil
}
