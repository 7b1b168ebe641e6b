package domain

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

type NewRouteScheduleParams struct {
	// ID is generated from Config.NewID when empty.
	ID      RouteScheduleID
	RouteID RouteID
	Name    string
	Type    ScheduleType
	// EffectiveTo may be zero for an open-ended schedule.
	EffectiveFrom            time.Time
	EffectiveTo              time.Time
	BaseFrequency            Frequency
	AllowsDynamicAdjustments bool
	CreatedBy                string
}

// RouteSchedule is the aggregate root for when a route runs: weekday
// timetables, headway periods and frequency patterns. Like Route it is an
// immutable snapshot; transitions return a new RouteSchedule and the events
// they produced, and on error return the receiver unchanged.
type RouteSchedule struct {
	Tracked[RouteScheduleID]
	cfg Config

	routeID       RouteID
	name          string
	scheduleType  ScheduleType
	effectiveFrom time.Time
	effectiveTo   time.Time
	active        bool

	dailySchedules    map[time.Weekday]DailySchedule
	periods           []SchedulePeriod
	frequencyPatterns map[string]FrequencyPattern

	declaredFrequency Frequency
	baseFrequency     Frequency
	totalDailyTrips   int
	totalServiceTime  time.Duration

	scheduleAdherence        float64
	missedTrips              int
	passengerLoadFactor      float64
	allowsDynamicAdjustments bool

	createdBy      string
	lastModifiedBy string
}

func NewRouteSchedule(cfg Config, p NewRouteScheduleParams) (RouteSchedule, []Event, error) {
	cfg = cfg.WithDefaults()

	if strings.TrimSpace(string(p.RouteID)) == "" {
		return RouteSchedule{}, nil, domainerr.New(domainerr.InvalidSchedule, "schedule needs a route id")
	}
	scheduleType, err := ParseScheduleType(string(p.Type))
	if err != nil {
		return RouteSchedule{}, nil, err
	}
	from, to, err := normalizeEffectivePeriod(p.EffectiveFrom, p.EffectiveTo)
	if err != nil {
		return RouteSchedule{}, nil, err
	}
	if err := p.BaseFrequency.validate(cfg.Schedule); err != nil {
		return RouteSchedule{}, nil, err
	}
	if scheduleType == Fixed && p.AllowsDynamicAdjustments {
		return RouteSchedule{}, nil, domainerr.New(domainerr.AdjustmentNotAllowed, "fixed schedules cannot allow dynamic adjustments")
	}

	id := p.ID
	if id == "" {
		id = RouteScheduleID(cfg.NewID())
	}
	now := cfg.now()
	s := RouteSchedule{
		Tracked:                  newTracked(id, now),
		cfg:                      cfg,
		routeID:                  p.RouteID,
		name:                     strings.TrimSpace(p.Name),
		scheduleType:             scheduleType,
		effectiveFrom:            from,
		effectiveTo:              to,
		dailySchedules:           map[time.Weekday]DailySchedule{},
		frequencyPatterns:        map[string]FrequencyPattern{},
		declaredFrequency:        p.BaseFrequency,
		baseFrequency:            p.BaseFrequency,
		allowsDynamicAdjustments: p.AllowsDynamicAdjustments,
		createdBy:                p.CreatedBy,
		lastModifiedBy:           p.CreatedBy,
	}
	events := s.emit(cfg.NewID, now, RouteScheduleCreated{
		RouteID:                  s.routeID,
		Name:                     s.name,
		Type:                     scheduleType,
		EffectiveFrom:            from,
		EffectiveTo:              to,
		BaseFrequency:            p.BaseFrequency,
		AllowsDynamicAdjustments: p.AllowsDynamicAdjustments,
		CreatedBy:                p.CreatedBy,
	})
	return s, events, nil
}

// AddSchedulePeriod adds a headway band. Periods sharing a day may not
// overlap; windows are half-open so one may end exactly where another starts.
func (s RouteSchedule) AddSchedulePeriod(period SchedulePeriod, addedBy string) (RouteSchedule, []Event, error) {
	limits := s.cfg.Schedule
	period, err := period.validate(limits)
	if err != nil {
		return s, nil, err
	}
	if len(s.periods) >= limits.MaxPeriods {
		return s, nil, domainerr.New(domainerr.PeriodLimitExceeded, "schedule already has the maximum of %d periods", limits.MaxPeriods)
	}
	for _, existing := range s.periods {
		if strings.EqualFold(existing.Name, period.Name) {
			return s, nil, domainerr.New(domainerr.InvalidPeriod, "period %q already exists", period.Name)
		}
		if existing.Overlaps(period) {
			return s, nil, domainerr.New(domainerr.OverlappingPeriod, "period %q (%s-%s %s) overlaps %q (%s-%s %s)",
				period.Name, period.Start, period.End, period.Days, existing.Name, existing.Start, existing.End, existing.Days)
		}
	}

	next := s.clone()
	i, _ := slices.BinarySearchFunc(next.periods, period, comparePeriods)
	next.periods = slices.Insert(next.periods, i, period)
	next.recalculateMetrics()
	events := next.commit(addedBy, SchedulePeriodAdded{Period: period, PeriodCount: len(next.periods), AddedBy: addedBy})
	return next, events, nil
}

func (s RouteSchedule) RemoveSchedulePeriod(name, removedBy string) (RouteSchedule, []Event, error) {
	i := slices.IndexFunc(s.periods, func(p SchedulePeriod) bool { return strings.EqualFold(p.Name, strings.TrimSpace(name)) })
	if i < 0 {
		return s, nil, domainerr.New(domainerr.PeriodNotFound, "schedule has no period %q", name)
	}
	next := s.clone()
	removed := next.periods[i]
	next.periods = slices.Delete(next.periods, i, i+1)
	next.recalculateMetrics()
	events := next.commit(removedBy, SchedulePeriodRemoved{Name: removed.Name, PeriodCount: len(next.periods), RemovedBy: removedBy})
	return next, events, nil
}

// SetDailySchedule replaces the timetable for day.
func (s RouteSchedule) SetDailySchedule(day time.Weekday, departures []TimeOfDay, updatedBy string) (RouteSchedule, []Event, error) {
	ds, err := NewDailySchedule(day, departures)
	if err != nil {
		return s, nil, err
	}
	next := s.clone()
	next.dailySchedules[day] = ds
	next.recalculateMetrics()
	events := next.commit(updatedBy, DailyScheduleUpdated{
		Day:            day,
		TripCount:      ds.TripCount(),
		FirstDeparture: ds.FirstDeparture(),
		LastDeparture:  ds.LastDeparture(),
		UpdatedBy:      updatedBy,
	})
	return next, events, nil
}

func (s RouteSchedule) RemoveDailySchedule(day time.Weekday, removedBy string) (RouteSchedule, []Event, error) {
	if _, ok := s.dailySchedules[day]; !ok {
		return s, nil, domainerr.New(domainerr.DailyScheduleNotFound, "schedule has no %s timetable", day)
	}
	next := s.clone()
	delete(next.dailySchedules, day)
	next.recalculateMetrics()
	events := next.commit(removedBy, DailyScheduleUpdated{Day: day, Removed: true, UpdatedBy: removedBy})
	return next, events, nil
}

func (s RouteSchedule) AddFrequencyPattern(pattern FrequencyPattern, addedBy string) (RouteSchedule, []Event, error) {
	pattern, err := pattern.validate(s.cfg.Schedule)
	if err != nil {
		return s, nil, err
	}
	if _, ok := s.frequencyPatterns[pattern.Name]; ok {
		return s, nil, domainerr.New(domainerr.InvalidFrequency, "frequency pattern %q already exists", pattern.Name)
	}
	next := s.clone()
	next.frequencyPatterns[pattern.Name] = pattern
	events := next.commit(addedBy, FrequencyPatternAdded{Pattern: pattern.clone(), AddedBy: addedBy})
	return next, events, nil
}

// AdjustScheduleDynamically shifts every departure of day's timetable by
// minutes, positive for delays.
func (s RouteSchedule) AdjustScheduleDynamically(day time.Weekday, minutes int, reason, adjustedBy string) (RouteSchedule, []Event, error) {
	if !s.allowsDynamicAdjustments || s.scheduleType == Fixed {
		return s, nil, domainerr.New(domainerr.AdjustmentNotAllowed, "%s schedule %s does not allow dynamic adjustments", s.scheduleType, s.ID())
	}
	if minutes == 0 {
		return s, nil, domainerr.New(domainerr.InvalidValue, "adjustment must be non-zero")
	}
	if limit := s.maxDelayMinutes(); abs(minutes) > limit {
		return s, nil, domainerr.New(domainerr.AdjustmentTooLarge, "adjustment of %d minutes exceeds the %d minute limit for %s schedules",
			minutes, limit, s.scheduleType)
	}
	ds, ok := s.dailySchedules[day]
	if !ok {
		return s, nil, domainerr.New(domainerr.DailyScheduleNotFound, "schedule has no %s timetable to adjust", day)
	}
	shifted, err := ds.shift(minutes)
	if err != nil {
		return s, nil, err
	}

	next := s.clone()
	next.dailySchedules[day] = shifted
	next.recalculateMetrics()
	events := next.commit(adjustedBy, ScheduleDynamicallyAdjusted{
		Day:               day,
		AdjustmentMinutes: minutes,
		TotalAdjustment:   shifted.AdjustmentMinutes(),
		Reason:            reason,
		AdjustedBy:        adjustedBy,
	})
	return next, events, nil
}

// UpdatePerformanceMetrics stores the latest adherence figures. Every report
// below the adherence threshold or above the missed trip limit also produces a
// SchedulePerformanceAlert.
func (s RouteSchedule) UpdatePerformanceMetrics(adherencePercent float64, missedTrips int, loadFactor float64) (RouteSchedule, []Event, error) {
	if math.IsNaN(adherencePercent) || adherencePercent < 0 || adherencePercent > 100 {
		return s, nil, domainerr.New(domainerr.InvalidPerformance, "schedule adherence %v%% outside 0-100", adherencePercent)
	}
	if missedTrips < 0 {
		return s, nil, domainerr.New(domainerr.InvalidPerformance, "missed trips cannot be negative, got %d", missedTrips)
	}
	if math.IsNaN(loadFactor) || math.IsInf(loadFactor, 0) || loadFactor < 0 {
		return s, nil, domainerr.New(domainerr.InvalidPerformance, "passenger load factor must be a non-negative number, got %v", loadFactor)
	}

	next := s.clone()
	next.scheduleAdherence = adherencePercent
	next.missedTrips = missedTrips
	next.passengerLoadFactor = loadFactor

	payloads := []EventPayload{SchedulePerformanceUpdated{
		ScheduleAdherence:   adherencePercent,
		MissedTrips:         missedTrips,
		PassengerLoadFactor: loadFactor,
	}}
	limits := s.cfg.Schedule
	var reasons []string
	if adherencePercent < limits.AdherenceAlertPercent {
		reasons = append(reasons, fmt.Sprintf("schedule adherence %.1f%% below %.0f%%", adherencePercent, limits.AdherenceAlertPercent))
	}
	if missedTrips > limits.MissedTripsAlertLimit {
		reasons = append(reasons, fmt.Sprintf("%d missed trips exceed the limit of %d", missedTrips, limits.MissedTripsAlertLimit))
	}
	if len(reasons) > 0 {
		payloads = append(payloads, SchedulePerformanceAlert{
			ScheduleAdherence: adherencePercent,
			MissedTrips:       missedTrips,
			Reasons:           reasons,
		})
	}
	events := next.commit("", payloads...)
	return next, events, nil
}

// Activate puts the schedule into service; it needs at least one timetable or
// headway period.
func (s RouteSchedule) Activate(activatedBy string) (RouteSchedule, []Event, error) {
	if s.active {
		return s, nil, domainerr.New(domainerr.InvalidStatus, "schedule %s is already active", s.ID())
	}
	if len(s.dailySchedules) == 0 && len(s.periods) == 0 {
		return s, nil, domainerr.New(domainerr.InvalidSchedule, "schedule %s has no timetables or periods", s.ID())
	}
	next := s.clone()
	next.active = true
	events := next.commit(activatedBy, ScheduleActivated{ActivatedBy: activatedBy})
	return next, events, nil
}

func (s RouteSchedule) Deactivate(reason, deactivatedBy string) (RouteSchedule, []Event, error) {
	if !s.active {
		return s, nil, domainerr.New(domainerr.InvalidStatus, "schedule %s is not active", s.ID())
	}
	next := s.clone()
	next.active = false
	events := next.commit(deactivatedBy, ScheduleDeactivated{Reason: reason, DeactivatedBy: deactivatedBy})
	return next, events, nil
}

// UpdateEffectivePeriod moves the validity window; to may be zero.
func (s RouteSchedule) UpdateEffectivePeriod(from, to time.Time, changedBy string) (RouteSchedule, []Event, error) {
	from, to, err := normalizeEffectivePeriod(from, to)
	if err != nil {
		return s, nil, err
	}
	next := s.clone()
	next.effectiveFrom, next.effectiveTo = from, to
	events := next.commit(changedBy, ScheduleEffectivePeriodChanged{
		PreviousFrom: s.effectiveFrom,
		PreviousTo:   s.effectiveTo,
		From:         from,
		To:           to,
		ChangedBy:    changedBy,
	})
	return next, events, nil
}

func (s RouteSchedule) ClearEvents() RouteSchedule {
	s.clearEvents()
	return s
}

// HeadwayAt returns the headway of the period covering t on day, falling
// back to the base frequency's minimum headway.
func (s RouteSchedule) HeadwayAt(day time.Weekday, t TimeOfDay) time.Duration {
	for _, p := range s.periods {
		if p.Covers(day, t) {
			return p.Headway
		}
	}
	return s.baseFrequency.MinHeadway
}

// NextDeparture returns the first departure at or after t on day. A weekday
// timetable wins; otherwise departures are generated from the headway
// periods, starting at each period's start.
func (s RouteSchedule) NextDeparture(day time.Weekday, t TimeOfDay) (TimeOfDay, bool) {
	if ds, ok := s.dailySchedules[day]; ok {
		return ds.NextDeparture(t)
	}
	for _, p := range s.periods {
		if !p.Days.Has(day) || t >= p.End {
			continue
		}
		if t <= p.Start {
			return p.Start, true
		}
		step := TimeOfDay(p.Headway / time.Second)
		k := (t - p.Start + step - 1) / step
		if dep := p.Start + k*step; dep < p.End {
			return dep, true
		}
	}
	return 0, false
}

// NextDepartureAt finds the next departure at or after the instant, looking
// up to a week ahead. Departures past 24:00 on the previous service day count
// on the instant's calendar day. Inactive schedules have no departures.
func (s RouteSchedule) NextDepartureAt(at time.Time) (time.Time, bool) {
	if !s.active {
		return time.Time{}, false
	}
	var carried time.Time
	if prev := at.AddDate(0, 0, -1); s.IsEffectiveOn(prev) {
		if dep, ok := s.NextDeparture(prev.Weekday(), TimeOfDayOf(at)+Midnight); ok {
			carried = dep.On(prev)
		}
	}
	for offset := 0; offset <= 7; offset++ {
		day := at.AddDate(0, 0, offset)
		if !s.IsEffectiveOn(day) {
			continue
		}
		after := TimeOfDay(0)
		if offset == 0 {
			after = TimeOfDayOf(at)
		}
		if dep, ok := s.NextDeparture(day.Weekday(), after); ok {
			next := dep.On(day)
			if !carried.IsZero() && carried.Before(next) {
				return carried, true
			}
			return next, true
		}
	}
	return carried, !carried.IsZero()
}

// IsEffectiveOn compares calendar dates in the location of the effective window.
func (s RouteSchedule) IsEffectiveOn(date time.Time) bool {
	day := startOfDay(date.In(s.effectiveFrom.Location()))
	if day.Before(s.effectiveFrom) {
		return false
	}
	return s.effectiveTo.IsZero() || !day.After(s.effectiveTo)
}

func (s RouteSchedule) RouteID() RouteID                { return s.routeID }
func (s RouteSchedule) Name() string                    { return s.name }
func (s RouteSchedule) Type() ScheduleType              { return s.scheduleType }
func (s RouteSchedule) EffectiveFrom() time.Time        { return s.effectiveFrom }
func (s RouteSchedule) EffectiveTo() time.Time          { return s.effectiveTo }
func (s RouteSchedule) IsActive() bool                  { return s.active }
func (s RouteSchedule) Periods() []SchedulePeriod       { return slices.Clone(s.periods) }
func (s RouteSchedule) TotalDailyTrips() int            { return s.totalDailyTrips }
func (s RouteSchedule) TotalServiceTime() time.Duration { return s.totalServiceTime }
func (s RouteSchedule) BaseFrequency() Frequency        { return s.baseFrequency }
func (s RouteSchedule) ScheduleAdherence() float64      { return s.scheduleAdherence }
func (s RouteSchedule) MissedTrips() int                { return s.missedTrips }
func (s RouteSchedule) PassengerLoadFactor() float64    { return s.passengerLoadFactor }
func (s RouteSchedule) AllowsDynamicAdjustments() bool  { return s.allowsDynamicAdjustments }
func (s RouteSchedule) CreatedBy() string               { return s.createdBy }
func (s RouteSchedule) LastModifiedBy() string          { return s.lastModifiedBy }

func (s RouteSchedule) DailySchedule(day time.Weekday) (DailySchedule, bool) {
	ds, ok := s.dailySchedules[day]
	return ds, ok
}

// DailySchedules lists the timetables from Monday to Sunday.
func (s RouteSchedule) DailySchedules() []DailySchedule {
	out := make([]DailySchedule, 0, len(s.dailySchedules))
	for _, day := range EveryDay.Days() {
		if ds, ok := s.dailySchedules[day]; ok {
			out = append(out, ds)
		}
	}
	return out
}

func (s RouteSchedule) FrequencyPattern(name string) (FrequencyPattern, bool) {
	p, ok := s.frequencyPatterns[name]
	return p.clone(), ok
}

// FrequencyPatterns lists the patterns ordered by name.
func (s RouteSchedule) FrequencyPatterns() []FrequencyPattern {
	names := slices.Sorted(maps.Keys(s.frequencyPatterns))
	out := make([]FrequencyPattern, len(names))
	for i, n := range names {
		out[i] = s.frequencyPatterns[n].clone()
	}
	return out
}

func (s RouteSchedule) clone() RouteSchedule {
	s.dailySchedules = maps.Clone(s.dailySchedules)
	s.periods = slices.Clone(s.periods)
	s.frequencyPatterns = maps.Clone(s.frequencyPatterns)
	return s
}

func (s *RouteSchedule) commit(by string, payloads ...EventPayload) []Event {
	now := s.cfg.now()
	s.markModified(now)
	if by != "" {
		s.lastModifiedBy = by
	}
	return s.emit(s.cfg.NewID, now, payloads...)
}

// recalculateMetrics derives trips and service time from the busiest weekday
// and the base frequency from the periods, when there are any.
func (s *RouteSchedule) recalculateMetrics() {
	s.totalDailyTrips, s.totalServiceTime = 0, 0
	for _, ds := range s.dailySchedules {
		s.totalDailyTrips = max(s.totalDailyTrips, ds.TripCount())
		s.totalServiceTime = max(s.totalServiceTime, ds.ServiceSpan())
	}
	if len(s.periods) == 0 {
		s.baseFrequency = s.declaredFrequency
		return
	}
	var sum, longest time.Duration
	for _, p := range s.periods {
		sum += p.Headway
		longest = max(longest, p.Headway)
	}
	avg := (sum / time.Duration(len(s.periods))).Truncate(time.Second)
	s.baseFrequency = Frequency{MinHeadway: avg, MaxHeadway: longest}
}

func (s *RouteSchedule) maxDelayMinutes() int {
	if s.scheduleType == Flexible {
		return s.cfg.Schedule.MaxFlexibleDelayMinutes
	}
	return s.cfg.Schedule.MaxDelayMinutes
}

func comparePeriods(a, b SchedulePeriod) int {
	if a.Start != b.Start {
		return int(a.Start - b.Start)
	}
	return strings.Compare(a.Name, b.Name)
}

func normalizeEffectivePeriod(from, to time.Time) (time.Time, time.Time, error) {
	if from.IsZero() {
		return time.Time{}, time.Time{}, domainerr.New(domainerr.InvalidEffectiveDates, "effective-from date is required")
	}
	from = startOfDay(from)
	if to.IsZero() {
		return from, time.Time{}, nil
	}
	to = startOfDay(to.In(from.Location()))
	if to.Before(from) {
		return time.Time{}, time.Time{}, domainerr.New(domainerr.InvalidEffectiveDates,
			"effective-to %s is before effective-from %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return from, to, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
