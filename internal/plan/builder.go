package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domain"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/geo"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/logging"
)

const defaultAuthor = "routectl"

// Stop is a route stop as declared in the plan, with its position when one
// was given.
type Stop struct {
	ID          domain.StopID
	Name        string
	Position    geo.Coordinate
	HasPosition bool
}

// BuiltRoute is a route aggregate with the schedules that reference it.
type BuiltRoute struct {
	Route     domain.Route
	Schedules []domain.RouteSchedule
	Stops     []Stop
}

// Path returns the positioned stops in route order.
func (b BuiltRoute) Path() []geo.Coordinate {
	path := make([]geo.Coordinate, 0, len(b.Stops))
	for _, s := range b.Stops {
		if s.HasPosition {
			path = append(path, s.Position)
		}
	}
	return path
}

// Polyline encodes Path in the Google polyline format.
func (b BuiltRoute) Polyline() string {
	return geo.EncodePolyline(b.Path())
}

// Result holds every aggregate a plan produced and the events raised while
// building them, in the order they were raised.
type Result struct {
	Routes []BuiltRoute
	Events []domain.Event
}

// StopIndex indexes every positioned stop of the result. A stop shared by
// several routes is indexed once.
func (r *Result) StopIndex() *geo.StopIndex {
	idx := geo.NewStopIndex()
	seen := make(map[domain.StopID]struct{})
	for _, br := range r.Routes {
		for _, s := range br.Stops {
			if !s.HasPosition {
				continue
			}
			if _, ok := seen[s.ID]; ok {
				continue
			}
			seen[s.ID] = struct{}{}
			idx.Insert(string(s.ID), s.Position)
		}
	}
	return idx
}

type Builder struct {
	cfg      domain.Config
	location *time.Location
}

type Option func(*Builder)

// WithLocation sets the zone schedule effective dates are read in. The
// default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.location = loc
		}
	}
}

func NewBuilder(cfg domain.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg.WithDefaults(), location: time.UTC}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build applies p. It stops at the first route or schedule the domain
// rejects and reports which one it was.
func (b *Builder) Build(ctx context.Context, p *Plan) (*Result, error) {
	logger := logging.FromContext(ctx).With(slog.String("component", "plan_builder"))

	author := p.Author
	if author == "" {
		author = defaultAuthor
	}

	res := &Result{}
	for i, rp := range p.Routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		built, events, err := b.buildRoute(rp, author)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", routeLabel(rp, i), err)
		}
		res.Routes = append(res.Routes, built)
		res.Events = append(res.Events, events...)

		logging.LogOperation(logger, "route_built",
			slog.String("route_id", string(built.Route.ID())),
			slog.String("status", string(built.Route.Status())),
			slog.Int("stops", built.Route.StopCount()),
			slog.Int("schedules", len(built.Schedules)),
			slog.Int("events", len(events)))
	}
	return res, nil
}

func routeLabel(rp RoutePlan, index int) string {
	if rp.ID != "" {
		return rp.ID
	}
	if rp.Name != "" {
		return fmt.Sprintf("%q", rp.Name)
	}
	return fmt.Sprintf("#%d", index+1)
}

func (b *Builder) buildRoute(rp RoutePlan, author string) (BuiltRoute, []domain.Event, error) {
	params := domain.NewRouteParams{
		ID:          domain.RouteID(rp.ID),
		Name:        rp.Name,
		Description: rp.Description,
		Type:        domain.CityBus,
		CreatedBy:   author,
	}

	var err error
	if rp.Type != "" {
		if params.Type, err = domain.ParseRouteType(rp.Type); err != nil {
			return BuiltRoute{}, nil, err
		}
	}
	if rp.Direction != "" {
		if params.Direction, err = domain.ParseRouteDirection(rp.Direction); err != nil {
			return BuiltRoute{}, nil, err
		}
	}
	if rp.OperatingHours != nil {
		hours, err := rp.OperatingHours.toDomain()
		if err != nil {
			return BuiltRoute{}, nil, fmt.Errorf("operating hours: %w", err)
		}
		params.OperatingHours = &hours
	}

	stops, initial, err := resolveStops(rp.Stops)
	if err != nil {
		return BuiltRoute{}, nil, err
	}
	params.InitialStops = initial

	var all []domain.Event
	route, events, err := domain.NewRoute(b.cfg, params)
	if err != nil {
		return BuiltRoute{}, nil, err
	}
	all = append(all, events...)

	if rp.Activate {
		if route, events, err = route.Activate(nil, author); err != nil {
			return BuiltRoute{}, nil, err
		}
		all = append(all, events...)
	}
	if perf := rp.Performance; perf != nil {
		route, events, err = route.UpdatePerformanceMetrics(perf.AverageSpeedKmh, perf.DailyRidership, perf.OnTimePercent)
		if err != nil {
			return BuiltRoute{}, nil, err
		}
		all = append(all, events...)
	}

	built := BuiltRoute{Route: route.ClearEvents(), Stops: stops}
	for i, sp := range rp.Schedules {
		schedule, events, err := b.buildSchedule(route.ID(), sp, author)
		if err != nil {
			label := sp.Name
			if label == "" {
				label = fmt.Sprintf("#%d", i+1)
			}
			return BuiltRoute{}, nil, fmt.Errorf("schedule %s: %w", label, err)
		}
		built.Schedules = append(built.Schedules, schedule.ClearEvents())
		all = append(all, events...)
	}
	return built, all, nil
}

// resolveStops turns the plan's stop list into positioned stops and the
// distances between them.
func resolveStops(plans []StopPlan) ([]Stop, []domain.InitialStop, error) {
	stops := make([]Stop, 0, len(plans))
	initial := make([]domain.InitialStop, 0, len(plans))

	for i, sp := range plans {
		if sp.ID == "" {
			return nil, nil, fmt.Errorf("stop #%d has no id", i+1)
		}
		stop := Stop{ID: domain.StopID(sp.ID), Name: sp.Name}
		if sp.hasPosition() {
			pos, err := geo.NewCoordinate(*sp.Lat, *sp.Lon)
			if err != nil {
				return nil, nil, fmt.Errorf("stop %s: %w", sp.ID, err)
			}
			stop.Position, stop.HasPosition = pos, true
		} else if sp.Lat != nil || sp.Lon != nil {
			return nil, nil, fmt.Errorf("stop %s: lat and lon must be given together", sp.ID)
		}

		entry := domain.InitialStop{StopID: stop.ID}
		if i > 0 {
			d, err := stopDistance(stops[i-1], stop, sp.DistanceMeters)
			if err != nil {
				return nil, nil, err
			}
			entry.DistanceFromPrevious = d
		}

		stops = append(stops, stop)
		initial = append(initial, entry)
	}
	return stops, initial, nil
}

func stopDistance(prev, cur Stop, declared *float64) (geo.Distance, error) {
	if declared != nil {
		d, err := geo.Meters(*declared)
		if err != nil {
			return geo.Distance{}, fmt.Errorf("stop %s: %w", cur.ID, err)
		}
		return d, nil
	}
	if !prev.HasPosition || !cur.HasPosition {
		return geo.Distance{}, fmt.Errorf("stop %s: distance_m is required when %s and %s are not both positioned", cur.ID, prev.ID, cur.ID)
	}
	d, err := prev.Position.DistanceTo(cur.Position)
	if err != nil {
		return geo.Distance{}, fmt.Errorf("stop %s: %w", cur.ID, err)
	}
	return d, nil
}

func (b *Builder) buildSchedule(routeID domain.RouteID, sp SchedulePlan, author string) (domain.RouteSchedule, []domain.Event, error) {
	scheduleType, err := domain.ParseScheduleType(sp.Type)
	if err != nil {
		return domain.RouteSchedule{}, nil, err
	}
	from, err := b.parseDate(sp.EffectiveFrom)
	if err != nil {
		return domain.RouteSchedule{}, nil, fmt.Errorf("effective_from: %w", err)
	}
	var to time.Time
	if sp.EffectiveTo != "" {
		if to, err = b.parseDate(sp.EffectiveTo); err != nil {
			return domain.RouteSchedule{}, nil, fmt.Errorf("effective_to: %w", err)
		}
	}
	base, err := domain.NewFrequency(b.cfg.Schedule, sp.BaseFrequency.Min, sp.BaseFrequency.Max)
	if err != nil {
		return domain.RouteSchedule{}, nil, fmt.Errorf("base_frequency: %w", err)
	}

	var all []domain.Event
	s, events, err := domain.NewRouteSchedule(b.cfg, domain.NewRouteScheduleParams{
		ID:                       domain.RouteScheduleID(sp.ID),
		RouteID:                  routeID,
		Name:                     sp.Name,
		Type:                     scheduleType,
		EffectiveFrom:            from,
		EffectiveTo:              to,
		BaseFrequency:            base,
		AllowsDynamicAdjustments: sp.AllowsDynamicAdjustments,
		CreatedBy:                author,
	})
	if err != nil {
		return domain.RouteSchedule{}, nil, err
	}
	all = append(all, events...)

	// apply runs one transition and collects its events.
	apply := func(next domain.RouteSchedule, events []domain.Event, err error) error {
		if err != nil {
			return err
		}
		s = next
		all = append(all, events...)
		return nil
	}

	for _, pp := range sp.Periods {
		period, err := pp.toDomain()
		if err != nil {
			return domain.RouteSchedule{}, nil, fmt.Errorf("period %s: %w", pp.Name, err)
		}
		if err := apply(s.AddSchedulePeriod(period, author)); err != nil {
			return domain.RouteSchedule{}, nil, err
		}
	}
	for _, dp := range sp.Daily {
		days, departures, err := dp.toDomain()
		if err != nil {
			return domain.RouteSchedule{}, nil, fmt.Errorf("daily %s: %w", dp.Days, err)
		}
		for _, day := range days.Days() {
			if err := apply(s.SetDailySchedule(day, departures, author)); err != nil {
				return domain.RouteSchedule{}, nil, err
			}
		}
	}
	for _, fp := range sp.FrequencyPatterns {
		pattern, err := fp.toDomain()
		if err != nil {
			return domain.RouteSchedule{}, nil, fmt.Errorf("frequency pattern %s: %w", fp.Name, err)
		}
		if err := apply(s.AddFrequencyPattern(pattern, author)); err != nil {
			return domain.RouteSchedule{}, nil, err
		}
	}
	for _, ap := range sp.Adjustments {
		day, err := domain.ParseWeekday(ap.Day)
		if err != nil {
			return domain.RouteSchedule{}, nil, fmt.Errorf("adjustment: %w", err)
		}
		if err := apply(s.AdjustScheduleDynamically(day, ap.Minutes, ap.Reason, author)); err != nil {
			return domain.RouteSchedule{}, nil, err
		}
	}
	if sp.Activate {
		if err := apply(s.Activate(author)); err != nil {
			return domain.RouteSchedule{}, nil, err
		}
	}
	if perf := sp.Performance; perf != nil {
		if err := apply(s.UpdatePerformanceMetrics(perf.AdherencePercent, perf.MissedTrips, perf.LoadFactor)); err != nil {
			return domain.RouteSchedule{}, nil, err
		}
	}
	return s, all, nil
}

func (b *Builder) parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, b.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func (h HoursPlan) toDomain() (domain.OperatingHours, error) {
	start, err := domain.ParseTimeOfDay(h.Start)
	if err != nil {
		return domain.OperatingHours{}, err
	}
	end, err := domain.ParseTimeOfDay(h.End)
	if err != nil {
		return domain.OperatingHours{}, err
	}
	days := domain.EveryDay
	if h.Days != "" {
		if days, err = domain.ParseWeekdays(h.Days); err != nil {
			return domain.OperatingHours{}, err
		}
	}
	return domain.OperatingHours{Start: start, End: end, Days: days}, nil
}

func (p PeriodPlan) toDomain() (domain.SchedulePeriod, error) {
	window, err := WindowPlan{Start: p.Start, End: p.End}.toDomain()
	if err != nil {
		return domain.SchedulePeriod{}, err
	}
	days := domain.EveryDay
	if p.Days != "" {
		if days, err = domain.ParseWeekdays(p.Days); err != nil {
			return domain.SchedulePeriod{}, err
		}
	}
	return domain.SchedulePeriod{
		Name:    p.Name,
		Start:   window.Start,
		End:     window.End,
		Headway: p.Headway,
		Days:    days,
	}, nil
}

func (d DailyPlan) toDomain() (domain.Weekdays, []domain.TimeOfDay, error) {
	days, err := domain.ParseWeekdays(d.Days)
	if err != nil {
		return 0, nil, err
	}
	departures := make([]domain.TimeOfDay, 0, len(d.Departures))
	for _, s := range d.Departures {
		t, err := domain.ParseTimeOfDay(s)
		if err != nil {
			return 0, nil, err
		}
		departures = append(departures, t)
	}
	return days, departures, nil
}

func (p PatternPlan) toDomain() (domain.FrequencyPattern, error) {
	pattern := domain.FrequencyPattern{
		Name:        p.Name,
		Headway:     p.Headway,
		PeakHeadway: p.PeakHeadway,
	}
	for _, wp := range p.PeakWindows {
		w, err := wp.toDomain()
		if err != nil {
			return domain.FrequencyPattern{}, err
		}
		pattern.PeakWindows = append(pattern.PeakWindows, w)
	}
	return pattern, nil
}

func (w WindowPlan) toDomain() (domain.TimeWindow, error) {
	start, err := domain.ParseTimeOfDay(w.Start)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	end, err := domain.ParseTimeOfDay(w.End)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	return domain.TimeWindow{Start: start, End: end}, nil
}
