package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

var effectiveFrom = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestSchedule(t *testing.T, cfg Config, scheduleType ScheduleType, dynamic bool) RouteSchedule {
	t.Helper()
	s, _, err := NewRouteSchedule(cfg, NewRouteScheduleParams{
		ID:                       "schedule-1",
		RouteID:                  "route-1",
		Name:                     "Spring timetable",
		Type:                     scheduleType,
		EffectiveFrom:            effectiveFrom,
		BaseFrequency:            Frequency{MinHeadway: 10 * time.Minute, MaxHeadway: 30 * time.Minute},
		AllowsDynamicAdjustments: dynamic,
		CreatedBy:                "planner",
	})
	require.NoError(t, err)
	return s
}

func period(name, start, end string, headway time.Duration, days Weekdays) SchedulePeriod {
	return SchedulePeriod{
		Name:    name,
		Start:   MustParseTimeOfDay(start),
		End:     MustParseTimeOfDay(end),
		Headway: headway,
		Days:    days,
	}
}

func times(values ...string) []TimeOfDay {
	out := make([]TimeOfDay, len(values))
	for i, v := range values {
		out[i] = MustParseTimeOfDay(v)
	}
	return out
}

func TestNewRouteSchedule(t *testing.T) {
	cfg, _ := testConfig()

	s, events, err := NewRouteSchedule(cfg, NewRouteScheduleParams{
		RouteID:       "route-1",
		Type:          Flexible,
		EffectiveFrom: time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC),
		EffectiveTo:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		BaseFrequency: Frequency{MinHeadway: 10 * time.Minute, MaxHeadway: 20 * time.Minute},
	})
	require.NoError(t, err)

	assert.Equal(t, RouteID("route-1"), s.RouteID())
	assert.Equal(t, effectiveFrom, s.EffectiveFrom())
	assert.False(t, s.IsActive())
	assert.Equal(t, int64(1), s.Version())
	require.Equal(t, []EventKind{KindRouteScheduleCreated}, kinds(events))
	assert.Equal(t, RouteID("route-1"), events[0].Payload.(RouteScheduleCreated).RouteID)
}

func TestNewRouteSchedule_Validation(t *testing.T) {
	cfg, _ := testConfig()
	valid := NewRouteScheduleParams{
		RouteID:       "route-1",
		Type:          Hybrid,
		EffectiveFrom: effectiveFrom,
		BaseFrequency: Frequency{MinHeadway: 10 * time.Minute, MaxHeadway: 20 * time.Minute},
	}

	tests := []struct {
		name   string
		mutate func(p *NewRouteScheduleParams)
		code   domainerr.Code
	}{
		{"fixed with adjustments", func(p *NewRouteScheduleParams) { p.Type = Fixed; p.AllowsDynamicAdjustments = true }, domainerr.AdjustmentNotAllowed},
		{"missing route", func(p *NewRouteScheduleParams) { p.RouteID = "" }, domainerr.InvalidSchedule},
		{"unknown type", func(p *NewRouteScheduleParams) { p.Type = "SOMETIMES" }, domainerr.InvalidSchedule},
		{"missing start", func(p *NewRouteScheduleParams) { p.EffectiveFrom = time.Time{} }, domainerr.InvalidEffectiveDates},
		{"end before start", func(p *NewRouteScheduleParams) { p.EffectiveTo = effectiveFrom.AddDate(0, 0, -1) }, domainerr.InvalidEffectiveDates},
		{"inverted frequency", func(p *NewRouteScheduleParams) { p.BaseFrequency.MinHeadway = time.Hour }, domainerr.InvalidFrequency},
		{"zero frequency", func(p *NewRouteScheduleParams) { p.BaseFrequency = Frequency{} }, domainerr.InvalidFrequency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			_, _, err := NewRouteSchedule(cfg, p)
			requireViolation(t, err, tt.code)
		})
	}
}

func TestRouteSchedule_AddSchedulePeriod(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, FrequencyBased, false)

	s, events, err := s.AddSchedulePeriod(period("morning peak", "07:00", "09:00", 5*time.Minute, MondayToFriday), "planner")
	require.NoError(t, err)
	assert.Equal(t, []EventKind{KindSchedulePeriodAdded}, kinds(events))

	t.Run("overlap on shared day", func(t *testing.T) {
		next, events, err := s.AddSchedulePeriod(period("late morning", "08:30", "11:00", 10*time.Minute, NewWeekdays(time.Friday, time.Saturday)), "planner")
		requireViolation(t, err, domainerr.OverlappingPeriod)
		assert.Nil(t, events)
		assert.Len(t, next.Periods(), 1)
	})

	t.Run("touching windows", func(t *testing.T) {
		_, _, err := s.AddSchedulePeriod(period("midday", "09:00", "16:00", 15*time.Minute, MondayToFriday), "planner")
		assert.NoError(t, err)
	})

	t.Run("disjoint days", func(t *testing.T) {
		_, _, err := s.AddSchedulePeriod(period("weekend morning", "07:00", "09:00", 20*time.Minute, Weekend), "planner")
		assert.NoError(t, err)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, _, err := s.AddSchedulePeriod(period("Morning Peak", "18:00", "19:00", 5*time.Minute, Weekend), "planner")
		requireViolation(t, err, domainerr.InvalidPeriod)
	})

	invalid := []struct {
		name   string
		period SchedulePeriod
		code   domainerr.Code
	}{
		{"empty name", period(" ", "10:00", "11:00", 10*time.Minute, Weekend), domainerr.InvalidPeriod},
		{"inverted window", period("evening", "20:00", "19:00", 10*time.Minute, Weekend), domainerr.InvalidPeriod},
		{"headway too short", period("evening", "19:00", "20:00", 30*time.Second, Weekend), domainerr.InvalidHeadway},
		{"headway too long", period("evening", "19:00", "20:00", 241*time.Minute, Weekend), domainerr.InvalidHeadway},
		{"no days", period("evening", "19:00", "20:00", 10*time.Minute, 0), domainerr.InvalidPeriod},
		{"past midnight", period("late night", "22:00", "26:00", 20*time.Minute, EveryDay), domainerr.InvalidPeriod},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.AddSchedulePeriod(tt.period, "planner")
			requireViolation(t, err, tt.code)
		})
	}
}

func TestRouteSchedule_PeriodLimit(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, FrequencyBased, false)

	for h := 0; h < 10; h++ {
		var err error
		start := TimeOfDay(h * 3600)
		s, _, err = s.AddSchedulePeriod(SchedulePeriod{
			Name: "hour " + start.String(), Start: start, End: start + 3600, Headway: 10 * time.Minute, Days: EveryDay,
		}, "planner")
		require.NoError(t, err)
	}

	_, _, err := s.AddSchedulePeriod(period("late", "20:00", "21:00", 10*time.Minute, EveryDay), "planner")
	requireViolation(t, err, domainerr.PeriodLimitExceeded)
}

func TestRouteSchedule_HeadwayAndBaseFrequency(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, FrequencyBased, false)

	assert.Equal(t, 10*time.Minute, s.HeadwayAt(time.Monday, MustParseTimeOfDay("08:00")))

	s, _, err := s.AddSchedulePeriod(period("peak", "07:00", "09:00", 6*time.Minute, MondayToFriday), "planner")
	require.NoError(t, err)
	s, _, err = s.AddSchedulePeriod(period("evening", "19:00", "23:00", 20*time.Minute, EveryDay), "planner")
	require.NoError(t, err)

	assert.Equal(t, 6*time.Minute, s.HeadwayAt(time.Monday, MustParseTimeOfDay("08:00")))
	assert.Equal(t, 13*time.Minute, s.HeadwayAt(time.Saturday, MustParseTimeOfDay("08:00")))
	assert.Equal(t, 20*time.Minute, s.HeadwayAt(time.Saturday, MustParseTimeOfDay("19:00")))
	assert.Equal(t, Frequency{MinHeadway: 13 * time.Minute, MaxHeadway: 20 * time.Minute}, s.BaseFrequency())
	assert.InDelta(t, 60.0/13, s.BaseFrequency().TripsPerHour(), 1e-9)

	names := []string{}
	for _, p := range s.Periods() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"peak", "evening"}, names)

	s, events, err := s.RemoveSchedulePeriod("peak", "planner")
	require.NoError(t, err)
	assert.Equal(t, []EventKind{KindSchedulePeriodRemoved}, kinds(events))
	s, _, err = s.RemoveSchedulePeriod("evening", "planner")
	require.NoError(t, err)
	assert.Equal(t, Frequency{MinHeadway: 10 * time.Minute, MaxHeadway: 30 * time.Minute}, s.BaseFrequency())

	_, _, err = s.RemoveSchedulePeriod("evening", "planner")
	requireViolation(t, err, domainerr.PeriodNotFound)
}

func TestRouteSchedule_DerivedFrequencyIgnoresDeclaredBounds(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, FrequencyBased, false)

	s, _, err := s.AddSchedulePeriod(period("rush", "07:00", "09:00", 4*time.Minute, MondayToFriday), "planner")
	require.NoError(t, err)
	s, _, err = s.AddSchedulePeriod(period("night", "22:00", "24:00", 60*time.Minute, EveryDay), "planner")
	require.NoError(t, err)

	assert.Equal(t, Frequency{MinHeadway: 32 * time.Minute, MaxHeadway: 60 * time.Minute}, s.BaseFrequency())
	assert.Equal(t, 4*time.Minute, s.HeadwayAt(time.Monday, MustParseTimeOfDay("08:00")))
}

func TestRouteSchedule_DailySchedulesDriveMetrics(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, Fixed, false)

	s, events, err := s.SetDailySchedule(time.Monday, times("22:00", "06:00", "12:00", "06:00"), "planner")
	require.NoError(t, err)
	updated := events[0].Payload.(DailyScheduleUpdated)
	assert.Equal(t, 3, updated.TripCount)
	assert.Equal(t, MustParseTimeOfDay("06:00"), updated.FirstDeparture)

	s, _, err = s.SetDailySchedule(time.Saturday, times("08:00", "09:00", "10:00", "11:00"), "planner")
	require.NoError(t, err)

	assert.Equal(t, 4, s.TotalDailyTrips())
	assert.Equal(t, 16*time.Hour, s.TotalServiceTime())

	monday, ok := s.DailySchedule(time.Monday)
	require.True(t, ok)
	assert.Equal(t, times("06:00", "12:00", "22:00"), monday.Departures())

	days := []time.Weekday{}
	for _, ds := range s.DailySchedules() {
		days = append(days, ds.Day())
	}
	assert.Equal(t, []time.Weekday{time.Monday, time.Saturday}, days)

	s, events, err = s.RemoveDailySchedule(time.Monday, "planner")
	require.NoError(t, err)
	assert.True(t, events[0].Payload.(DailyScheduleUpdated).Removed)
	assert.Equal(t, 3*time.Hour, s.TotalServiceTime())

	_, _, err = s.RemoveDailySchedule(time.Monday, "planner")
	requireViolation(t, err, domainerr.DailyScheduleNotFound)

	_, _, err = s.SetDailySchedule(time.Tuesday, nil, "planner")
	requireViolation(t, err, domainerr.InvalidSchedule)
}

func TestRouteSchedule_AdjustScheduleDynamically(t *testing.T) {
	cfg, _ := testConfig()

	t.Run("flexible allows ten minutes", func(t *testing.T) {
		s := newTestSchedule(t, cfg, Flexible, true)
		s, _, err := s.SetDailySchedule(time.Monday, times("06:00", "07:00"), "planner")
		require.NoError(t, err)

		next, events, err := s.AdjustScheduleDynamically(time.Monday, 10, "traffic jam", "dispatcher")
		require.NoError(t, err)
		ds, _ := next.DailySchedule(time.Monday)
		assert.Equal(t, times("06:10", "07:10"), ds.Departures())
		assert.Equal(t, 10, ds.AdjustmentMinutes())
		assert.Equal(t, []EventKind{KindScheduleDynamicallyAdjusted}, kinds(events))

		_, _, err = s.AdjustScheduleDynamically(time.Monday, -11, "early", "dispatcher")
		requireViolation(t, err, domainerr.AdjustmentTooLarge)

		_, _, err = s.AdjustScheduleDynamically(time.Tuesday, 5, "detour", "dispatcher")
		requireViolation(t, err, domainerr.DailyScheduleNotFound)

		_, _, err = s.AdjustScheduleDynamically(time.Monday, 0, "nothing", "dispatcher")
		requireViolation(t, err, domainerr.InvalidValue)
	})

	t.Run("other types allow five minutes", func(t *testing.T) {
		s := newTestSchedule(t, cfg, Hybrid, true)
		s, _, err := s.SetDailySchedule(time.Monday, times("06:00"), "planner")
		require.NoError(t, err)

		_, _, err = s.AdjustScheduleDynamically(time.Monday, 6, "detour", "dispatcher")
		requireViolation(t, err, domainerr.AdjustmentTooLarge)
		_, _, err = s.AdjustScheduleDynamically(time.Monday, -5, "early", "dispatcher")
		assert.NoError(t, err)
	})

	t.Run("not allowed", func(t *testing.T) {
		for _, st := range []ScheduleType{Fixed, FrequencyBased} {
			s := newTestSchedule(t, cfg, st, false)
			s, _, err := s.SetDailySchedule(time.Monday, times("06:00"), "planner")
			require.NoError(t, err)
			_, _, err = s.AdjustScheduleDynamically(time.Monday, 2, "detour", "dispatcher")
			requireViolation(t, err, domainerr.AdjustmentNotAllowed)
		}
	})

	t.Run("shift past the service day", func(t *testing.T) {
		s := newTestSchedule(t, cfg, Flexible, true)
		s, _, err := s.SetDailySchedule(time.Monday, times("00:03"), "planner")
		require.NoError(t, err)
		_, _, err = s.AdjustScheduleDynamically(time.Monday, -5, "early", "dispatcher")
		requireViolation(t, err, domainerr.InvalidSchedule)
	})
}

func TestRouteSchedule_UpdatePerformanceMetrics(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, Fixed, false)

	tests := []struct {
		name      string
		adherence float64
		missed    int
		want      []EventKind
	}{
		{"healthy", 92, 2, []EventKind{KindSchedulePerformanceUpdated}},
		{"low adherence", 75, 0, []EventKind{KindSchedulePerformanceUpdated, KindSchedulePerformanceAlert}},
		{"missed trips", 95, 6, []EventKind{KindSchedulePerformanceUpdated, KindSchedulePerformanceAlert}},
		{"at thresholds", 80, 5, []EventKind{KindSchedulePerformanceUpdated}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, events, err := s.UpdatePerformanceMetrics(tt.adherence, tt.missed, 0.7)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kinds(events))
			assert.Equal(t, tt.adherence, next.ScheduleAdherence())
			assert.Equal(t, tt.missed, next.MissedTrips())
			assert.Equal(t, 0.7, next.PassengerLoadFactor())
		})
	}

	_, _, err := s.UpdatePerformanceMetrics(101, 0, 0)
	requireViolation(t, err, domainerr.InvalidPerformance)
	_, _, err = s.UpdatePerformanceMetrics(90, -1, 0)
	requireViolation(t, err, domainerr.InvalidPerformance)
	_, _, err = s.UpdatePerformanceMetrics(90, 0, -0.1)
	requireViolation(t, err, domainerr.InvalidPerformance)
}

func TestRouteSchedule_NextDeparture(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, FrequencyBased, false)
	s, _, err := s.AddSchedulePeriod(period("morning", "06:00", "09:00", 15*time.Minute, MondayToFriday), "planner")
	require.NoError(t, err)
	s, _, err = s.AddSchedulePeriod(period("day", "09:00", "18:00", 40*time.Minute, MondayToFriday), "planner")
	require.NoError(t, err)
	s, _, err = s.SetDailySchedule(time.Saturday, times("10:00", "14:00"), "planner")
	require.NoError(t, err)

	tests := []struct {
		day   time.Weekday
		after string
		want  string
		ok    bool
	}{
		{time.Monday, "05:00", "06:00", true},
		{time.Monday, "07:05", "07:15", true},
		{time.Monday, "07:15", "07:15", true},
		{time.Monday, "08:50", "09:00", true},
		{time.Monday, "17:30", "17:40", true},
		{time.Monday, "17:45", "", false},
		{time.Saturday, "11:00", "14:00", true},
		{time.Sunday, "06:00", "", false},
	}
	for _, tt := range tests {
		got, ok := s.NextDeparture(tt.day, MustParseTimeOfDay(tt.after))
		assert.Equal(t, tt.ok, ok, "%s %s", tt.day, tt.after)
		if tt.ok {
			assert.Equal(t, tt.want, got.String(), "%s %s", tt.day, tt.after)
		}
	}
}

func TestRouteSchedule_NextDepartureAt(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, Fixed, false)
	s, _, err := s.SetDailySchedule(time.Monday, times("06:00", "12:00"), "planner")
	require.NoError(t, err)

	monday := time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC)
	_, ok := s.NextDepartureAt(monday)
	assert.False(t, ok, "inactive schedules have no departures")

	s, events, err := s.Activate("ops")
	require.NoError(t, err)
	assert.Equal(t, []EventKind{KindScheduleActivated}, kinds(events))

	next, ok := s.NextDepartureAt(monday.Add(-2 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC), next)

	next, ok = s.NextDepartureAt(monday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC), next)

	s, _, err = s.UpdateEffectivePeriod(effectiveFrom, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "planner")
	require.NoError(t, err)
	_, ok = s.NextDepartureAt(monday)
	assert.False(t, ok)
}

func TestRouteSchedule_NextDepartureAtAfterMidnight(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, Fixed, false)
	for _, day := range MondayToFriday.Days() {
		var err error
		s, _, err = s.SetDailySchedule(day, times("06:00", "25:30"), "planner")
		require.NoError(t, err)
	}
	s, _, err := s.Activate("ops")
	require.NoError(t, err)

	tuesday := time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)
	next, ok := s.NextDepartureAt(tuesday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 1, 30, 0, 0, time.UTC), next, "Monday's 25:30 runs early Tuesday")

	next, ok = s.NextDepartureAt(tuesday.Add(time.Hour))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 6, 0, 0, 0, time.UTC), next)

	// Sunday has no timetable, so nothing carries into Monday morning.
	monday := time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC)
	next, ok = s.NextDepartureAt(monday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC), next)

	// Saturday 01:00 still gets Friday's late trip.
	saturday := time.Date(2024, 3, 9, 1, 0, 0, 0, time.UTC)
	next, ok = s.NextDepartureAt(saturday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 9, 1, 30, 0, 0, time.UTC), next)
}

func TestRouteSchedule_PeriodsEndByMidnight(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, FrequencyBased, false)

	s, _, err := s.AddSchedulePeriod(period("late", "22:00", "24:00", 20*time.Minute, EveryDay), "planner")
	require.NoError(t, err)

	_, _, err = s.AddSchedulePeriod(period("overnight", "23:00", "26:00", 30*time.Minute, MondayToFriday), "planner")
	requireViolation(t, err, domainerr.InvalidPeriod)

	s, _, err = s.AddSchedulePeriod(period("early", "01:00", "03:00", 30*time.Minute, NewWeekdays(time.Tuesday)), "planner")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, s.HeadwayAt(time.Tuesday, MustParseTimeOfDay("01:00")))
	assert.Equal(t, 20*time.Minute, s.HeadwayAt(time.Monday, MustParseTimeOfDay("23:30")))
}

func TestRouteSchedule_ActivationAndEffectivePeriod(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, Fixed, false)

	_, _, err := s.Activate("ops")
	requireViolation(t, err, domainerr.InvalidSchedule)
	_, _, err = s.Deactivate("unused", "ops")
	requireViolation(t, err, domainerr.InvalidStatus)

	s, _, err = s.SetDailySchedule(time.Monday, times("06:00"), "planner")
	require.NoError(t, err)
	s, _, err = s.Activate("ops")
	require.NoError(t, err)
	_, _, err = s.Activate("ops")
	requireViolation(t, err, domainerr.InvalidStatus)

	s, events, err := s.Deactivate("summer break", "ops")
	require.NoError(t, err)
	assert.False(t, s.IsActive())
	assert.Equal(t, []EventKind{KindScheduleDeactivated}, kinds(events))

	assert.False(t, s.IsEffectiveOn(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)))
	assert.True(t, s.IsEffectiveOn(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, s.IsEffectiveOn(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

	s, events, err = s.UpdateEffectivePeriod(effectiveFrom, time.Date(2024, 5, 31, 18, 0, 0, 0, time.UTC), "planner")
	require.NoError(t, err)
	changed := events[0].Payload.(ScheduleEffectivePeriodChanged)
	assert.True(t, changed.PreviousTo.IsZero())
	assert.True(t, s.IsEffectiveOn(time.Date(2024, 5, 31, 22, 0, 0, 0, time.UTC)))
	assert.False(t, s.IsEffectiveOn(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))

	_, _, err = s.UpdateEffectivePeriod(effectiveFrom, effectiveFrom.AddDate(0, 0, -1), "planner")
	requireViolation(t, err, domainerr.InvalidEffectiveDates)
}

func TestRouteSchedule_FrequencyPatterns(t *testing.T) {
	cfg, _ := testConfig()
	s := newTestSchedule(t, cfg, FrequencyBased, false)

	pattern := FrequencyPattern{
		Name:        "commuter",
		Headway:     12 * time.Minute,
		PeakHeadway: 6 * time.Minute,
		PeakWindows: []TimeWindow{{Start: MustParseTimeOfDay("07:00"), End: MustParseTimeOfDay("09:00")}},
	}
	s, events, err := s.AddFrequencyPattern(pattern, "planner")
	require.NoError(t, err)
	assert.Equal(t, []EventKind{KindFrequencyPatternAdded}, kinds(events))

	stored, ok := s.FrequencyPattern("commuter")
	require.True(t, ok)
	assert.Equal(t, 6*time.Minute, stored.HeadwayAt(MustParseTimeOfDay("08:00")))
	assert.Equal(t, 12*time.Minute, stored.HeadwayAt(MustParseTimeOfDay("10:00")))

	pattern.PeakWindows[0].End = MustParseTimeOfDay("23:00")
	stored, _ = s.FrequencyPattern("commuter")
	assert.Equal(t, MustParseTimeOfDay("09:00"), stored.PeakWindows[0].End)

	_, _, err = s.AddFrequencyPattern(FrequencyPattern{Name: "commuter", Headway: 12 * time.Minute}, "planner")
	requireViolation(t, err, domainerr.InvalidFrequency)
	_, _, err = s.AddFrequencyPattern(FrequencyPattern{Name: "peaky", Headway: 12 * time.Minute, PeakHeadway: 5 * time.Minute}, "planner")
	requireViolation(t, err, domainerr.InvalidFrequency)
	_, _, err = s.AddFrequencyPattern(FrequencyPattern{Name: "slow", Headway: 5 * time.Hour}, "planner")
	requireViolation(t, err, domainerr.InvalidHeadway)

	s, _, err = s.AddFrequencyPattern(FrequencyPattern{Name: "a-weekend", Headway: 30 * time.Minute}, "planner")
	require.NoError(t, err)
	all := s.FrequencyPatterns()
	require.Len(t, all, 2)
	assert.Equal(t, "a-weekend", all[0].Name)
}
