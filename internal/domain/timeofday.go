package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

// TimeOfDay is a service time in seconds since midnight. Values past 24:00
// describe trips that run after midnight on the same service day, the way
// GTFS stop_times do.
type TimeOfDay int

const (
	// Midnight closes the calendar day a service day starts on.
	Midnight     TimeOfDay = 24 * 60 * 60
	MaxTimeOfDay TimeOfDay = 2 * Midnight
)

func NewTimeOfDay(hours, minutes, seconds int) (TimeOfDay, error) {
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 {
		return 0, domainerr.New(domainerr.InvalidValue, "invalid time of day %02d:%02d:%02d", hours, minutes, seconds)
	}
	t := TimeOfDay(hours*3600 + minutes*60 + seconds)
	if t >= MaxTimeOfDay {
		return 0, domainerr.New(domainerr.InvalidValue, "time of day %s is past 48:00", t)
	}
	return t, nil
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS"; hours may exceed 23.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, domainerr.New(domainerr.InvalidValue, "invalid time of day %q", s)
		}
	case 3:
		if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
			return 0, domainerr.New(domainerr.InvalidValue, "invalid time of day %q", s)
		}
	default:
		return 0, domainerr.New(domainerr.InvalidValue, "invalid time of day %q", s)
	}
	return NewTimeOfDay(h, m, sec)
}

func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayOf returns the wall-clock time of t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func (t TimeOfDay) Duration() time.Duration { return time.Duration(t) * time.Second }

func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Second)
}

func (t TimeOfDay) Sub(o TimeOfDay) time.Duration {
	return time.Duration(t-o) * time.Second
}

// On anchors t to the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(t.Duration())
}

func (t TimeOfDay) String() string {
	h, m, s := int(t)/3600, int(t)%3600/60, int(t)%60
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// TimeWindow is the half-open interval [Start, End).
type TimeWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (w TimeWindow) validate() error {
	if w.Start < 0 || w.End > MaxTimeOfDay || w.Start >= w.End {
		return domainerr.New(domainerr.InvalidValue, "time window %s-%s must start before it ends", w.Start, w.End)
	}
	return nil
}

func (w TimeWindow) Contains(t TimeOfDay) bool {
	return t >= w.Start && t < w.End
}

func (w TimeWindow) Overlaps(o TimeWindow) bool {
	return w.Start < o.End && o.Start < w.End
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Weekdays is a set of days of the week.
type Weekdays uint8

const (
	MondayToFriday Weekdays = 1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday
	Weekend        Weekdays = 1<<time.Saturday | 1<<time.Sunday
	EveryDay                = MondayToFriday | Weekend
)

func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w |= 1 << d
	}
	return w
}

func (w Weekdays) Has(d time.Weekday) bool { return w&(1<<d) != 0 }

func (w Weekdays) IsEmpty() bool { return w&EveryDay == 0 }

func (w Weekdays) Overlaps(o Weekdays) bool { return w&o&EveryDay != 0 }

// Days lists the members starting from Monday.
func (w Weekdays) Days() []time.Weekday {
	var days []time.Weekday
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		if w.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

func (w Weekdays) String() string {
	names := make([]string, 0, 7)
	for _, d := range w.Days() {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ",")
}

// ParseWeekdays reads a comma separated list of day names ("mon,tue"), or one
// of the shorthands "weekdays", "weekend" and "daily".
func ParseWeekdays(s string) (Weekdays, error) {
	var w Weekdays
	for _, part := range strings.Split(s, ",") {
		switch p := strings.ToLower(strings.TrimSpace(part)); p {
		case "weekdays":
			w |= MondayToFriday
		case "weekend":
			w |= Weekend
		case "daily", "everyday":
			w |= EveryDay
		default:
			d, ok := parseWeekday(p)
			if !ok {
				return 0, domainerr.New(domainerr.InvalidValue, "unknown day %q", part)
			}
			w |= 1 << d
		}
	}
	return w, nil
}

func parseWeekday(s string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return 0, false
}

// ParseWeekday reads a single day name, full or abbreviated.
func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := parseWeekday(strings.ToLower(strings.TrimSpace(s)))
	if !ok {
		return 0, domainerr.New(domainerr.InvalidValue, "unknown day %q", s)
	}
	return d, nil
}

// OperatingHours is the daily service window of a route. An End past 24:00
// means service runs past midnight into the following day.
type OperatingHours struct {
	Start TimeOfDay
	End   TimeOfDay
	Days  Weekdays
}

func (h OperatingHours) Validate() error {
	if h.Days.IsEmpty() {
		return domainerr.New(domainerr.InvalidOperatingHours, "operating hours need at least one operating day")
	}
	if h.Start < 0 || h.Start >= Midnight {
		return domainerr.New(domainerr.InvalidOperatingHours, "service must start before midnight, got %s", h.Start)
	}
	if h.End <= h.Start || h.End > MaxTimeOfDay {
		return domainerr.New(domainerr.InvalidOperatingHours, "service end %s must be after start %s", h.End, h.Start)
	}
	return nil
}

// Covers reports whether service runs at t, including the after-midnight
// tail of the previous day's service.
func (h OperatingHours) Covers(t time.Time) bool {
	tod := TimeOfDayOf(t)
	if h.Days.Has(t.Weekday()) && tod >= h.Start && tod < h.End {
		return true
	}
	prev := (t.Weekday() + 6) % 7
	return h.Days.Has(prev) && tod+Midnight < h.End
}

func (h OperatingHours) String() string {
	return fmt.Sprintf("%s-%s %s", h.Start, h.End, h.Days)
}
