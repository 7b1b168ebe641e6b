// Package gtfsimport derives route plans from a GTFS static feed. The stop
// sequence of a route direction comes from its longest trip; the timetable
// comes from the first-stop departures of every trip in that direction.
package gtfsimport

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/OneBusAway/go-gtfs"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domain"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/logging"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/plan"
)

const (
	maxRouteNameLength = 100

	minBaseHeadway     = time.Minute
	maxBaseHeadway     = 240 * time.Minute
	defaultBaseHeadway = 60 * time.Minute
)

var ErrRouteNotFound = errors.New("route not found in feed")

// Options selects what to import.
type Options struct {
	RouteID string
	// Direction is 0 for the first direction found in the feed and 1 for the
	// second. The first becomes OUTBOUND, the second INBOUND.
	Direction int
	// ScheduleName names the generated schedule; empty skips it.
	ScheduleName string
}

// LoadFeed reads and parses a GTFS zip archive.
func LoadFeed(path string, logger *slog.Logger) (*gtfs.Static, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading local GTFS file: %w", err)
	}
	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}
	logging.LogOperation(logger, "gtfs_feed_loaded",
		slog.String("path", path),
		slog.Int("routes", len(static.Routes)),
		slog.Int("trips", len(static.Trips)),
		slog.Int("warnings", len(static.Warnings)))
	return static, nil
}

// ToPlan converts one direction of a GTFS route into a route plan.
func ToPlan(static *gtfs.Static, opts Options) (plan.RoutePlan, error) {
	route := findRoute(static, opts.RouteID)
	if route == nil {
		return plan.RoutePlan{}, fmt.Errorf("%w: %s", ErrRouteNotFound, opts.RouteID)
	}

	trips, direction, err := tripsForDirection(static, route.Id, opts.Direction)
	if err != nil {
		return plan.RoutePlan{}, err
	}

	longest := longestTrip(trips)
	stops, err := stopPlans(longest)
	if err != nil {
		return plan.RoutePlan{}, err
	}

	rp := plan.RoutePlan{
		ID:          fmt.Sprintf("%s-%s", route.Id, strings.ToLower(string(direction))),
		Name:        routeName(route),
		Description: route.Description,
		Type:        string(routeType(int(route.Type))),
		Direction:   string(direction),
		Stops:       stops,
	}
	if hours, ok := operatingHours(trips); ok {
		rp.OperatingHours = &hours
	}
	if opts.ScheduleName != "" {
		if sp, ok := schedulePlan(trips, opts.ScheduleName); ok {
			rp.Schedules = []plan.SchedulePlan{sp}
		}
	}
	return rp, nil
}

func findRoute(static *gtfs.Static, id string) *gtfs.Route {
	for i := range static.Routes {
		if static.Routes[i].Id == id {
			return &static.Routes[i]
		}
	}
	return nil
}

// tripsForDirection returns the route's trips with at least two stops that
// run in the requested direction.
func tripsForDirection(static *gtfs.Static, routeID string, direction int) ([]*gtfs.ScheduledTrip, domain.RouteDirection, error) {
	var trips []*gtfs.ScheduledTrip
	for i := range static.Trips {
		t := &static.Trips[i]
		if t.Route != nil && t.Route.Id == routeID && len(t.StopTimes) >= 2 {
			trips = append(trips, t)
		}
	}
	if len(trips) == 0 {
		return nil, "", fmt.Errorf("route %s has no trips with at least two stops", routeID)
	}

	var directions []int
	for _, t := range trips {
		if d := int(t.DirectionId); !slices.Contains(directions, d) {
			directions = append(directions, d)
		}
	}
	slices.Sort(directions)
	if direction < 0 || direction >= len(directions) {
		return nil, "", fmt.Errorf("route %s has %d direction(s), cannot select direction %d", routeID, len(directions), direction)
	}

	wanted := directions[direction]
	selected := slices.DeleteFunc(trips, func(t *gtfs.ScheduledTrip) bool {
		return int(t.DirectionId) != wanted
	})
	if direction == 0 {
		return selected, domain.Outbound, nil
	}
	return selected, domain.Inbound, nil
}

// longestTrip picks the trip serving the most stops, breaking ties by trip ID.
func longestTrip(trips []*gtfs.ScheduledTrip) *gtfs.ScheduledTrip {
	return slices.MaxFunc(trips, func(a, b *gtfs.ScheduledTrip) int {
		if c := cmp.Compare(len(a.StopTimes), len(b.StopTimes)); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

func orderedStopTimes(t *gtfs.ScheduledTrip) []gtfs.ScheduledStopTime {
	sts := slices.Clone(t.StopTimes)
	slices.SortStableFunc(sts, func(a, b gtfs.ScheduledStopTime) int {
		return cmp.Compare(a.StopSequence, b.StopSequence)
	})
	return sts
}

// stopPlans lists the stops of a trip. Positioned stops get their distance
// from coordinates when the plan is built; between unpositioned stops the
// feed's shape_dist_traveled, taken as meters, is used instead.
func stopPlans(trip *gtfs.ScheduledTrip) ([]plan.StopPlan, error) {
	sts := orderedStopTimes(trip)
	stops := make([]plan.StopPlan, 0, len(sts))
	seen := make(map[string]bool, len(sts))

	for i, st := range sts {
		if st.Stop == nil {
			return nil, fmt.Errorf("trip %s: stop time %d has no stop", trip.ID, st.StopSequence)
		}
		if seen[st.Stop.Id] {
			return nil, fmt.Errorf("trip %s visits stop %s more than once", trip.ID, st.Stop.Id)
		}
		seen[st.Stop.Id] = true

		sp := plan.StopPlan{
			ID:   st.Stop.Id,
			Name: st.Stop.Name,
			Lat:  st.Stop.Latitude,
			Lon:  st.Stop.Longitude,
		}
		if i > 0 && !(sp.Lat != nil && sp.Lon != nil && stops[i-1].Lat != nil && stops[i-1].Lon != nil) {
			prev := sts[i-1].ShapeDistanceTraveled
			if prev != nil && st.ShapeDistanceTraveled != nil {
				d := *st.ShapeDistanceTraveled - *prev
				sp.DistanceMeters = &d
			}
		}
		stops = append(stops, sp)
	}
	return stops, nil
}

func routeName(r *gtfs.Route) string {
	name := strings.TrimSpace(strings.TrimSpace(r.ShortName) + " " + strings.TrimSpace(r.LongName))
	if len([]rune(name)) < 3 {
		name = "Route " + name
	}
	if runes := []rune(name); len(runes) > maxRouteNameLength {
		name = string(runes[:maxRouteNameLength])
	}
	return name
}

// routeType maps basic and extended GTFS route types onto route types.
func routeType(gtfsType int) domain.RouteType {
	switch gtfsType {
	case 701:
		return domain.Suburban
	case 702:
		return domain.Express
	case 705:
		return domain.NightBus
	case 711:
		return domain.Shuttle
	default:
		return domain.CityBus
	}
}

func timeOfDay(d time.Duration) domain.TimeOfDay {
	return domain.TimeOfDay(d / time.Second)
}

func firstDeparture(t *gtfs.ScheduledTrip) time.Duration {
	sts := orderedStopTimes(t)
	return sts[0].DepartureTime
}

func lastArrival(t *gtfs.ScheduledTrip) time.Duration {
	sts := orderedStopTimes(t)
	return sts[len(sts)-1].ArrivalTime
}

func serviceDays(s *gtfs.Service) domain.Weekdays {
	if s == nil {
		return 0
	}
	var days []time.Weekday
	for day, runs := range map[time.Weekday]bool{
		time.Monday:    s.Monday,
		time.Tuesday:   s.Tuesday,
		time.Wednesday: s.Wednesday,
		time.Thursday:  s.Thursday,
		time.Friday:    s.Friday,
		time.Saturday:  s.Saturday,
		time.Sunday:    s.Sunday,
	} {
		if runs {
			days = append(days, day)
		}
	}
	return domain.NewWeekdays(days...)
}

// operatingHours spans the earliest first-stop departure to the latest
// last-stop arrival, on every day any trip's service runs.
func operatingHours(trips []*gtfs.ScheduledTrip) (plan.HoursPlan, bool) {
	var (
		start, end time.Duration
		days       domain.Weekdays
	)
	for i, t := range trips {
		dep, arr := firstDeparture(t), lastArrival(t)
		if i == 0 || dep < start {
			start = dep
		}
		if arr > end {
			end = arr
		}
		days |= serviceDays(t.Service)
	}
	if days.IsEmpty() || start >= 24*time.Hour || end <= start {
		return plan.HoursPlan{}, false
	}
	return plan.HoursPlan{
		Start: timeOfDay(start).String(),
		End:   timeOfDay(end).String(),
		Days:  days.String(),
	}, true
}

// schedulePlan builds a fixed timetable from the trips' first-stop
// departures. Weekdays with identical departures share one entry.
func schedulePlan(trips []*gtfs.ScheduledTrip, name string) (plan.SchedulePlan, bool) {
	var from, to time.Time
	byDay := make(map[time.Weekday][]domain.TimeOfDay)
	for _, t := range trips {
		if t.Service == nil {
			continue
		}
		if !t.Service.StartDate.IsZero() && (from.IsZero() || t.Service.StartDate.Before(from)) {
			from = t.Service.StartDate
		}
		if t.Service.EndDate.After(to) {
			to = t.Service.EndDate
		}
		dep := timeOfDay(firstDeparture(t))
		for _, day := range serviceDays(t.Service).Days() {
			byDay[day] = append(byDay[day], dep)
		}
	}
	if from.IsZero() || len(byDay) == 0 {
		return plan.SchedulePlan{}, false
	}

	type group struct {
		days       domain.Weekdays
		departures []domain.TimeOfDay
	}
	var groups []*group
	index := make(map[string]*group)
	for _, day := range domain.EveryDay.Days() {
		deps, ok := byDay[day]
		if !ok {
			continue
		}
		slices.Sort(deps)
		deps = slices.Compact(deps)

		key := fmt.Sprint(deps)
		g, ok := index[key]
		if !ok {
			g = &group{departures: deps}
			index[key] = g
			groups = append(groups, g)
		}
		g.days |= domain.NewWeekdays(day)
	}

	sp := plan.SchedulePlan{
		Name:          name,
		Type:          string(domain.Fixed),
		EffectiveFrom: from.Format(time.DateOnly),
		BaseFrequency: baseFrequency(groups[0].departures),
	}
	if !to.IsZero() && !to.Before(from) {
		sp.EffectiveTo = to.Format(time.DateOnly)
	}
	minH, maxH := sp.BaseFrequency.Min, sp.BaseFrequency.Max
	for _, g := range groups {
		f := baseFrequency(g.departures)
		minH, maxH = min(minH, f.Min), max(maxH, f.Max)

		departures := make([]string, len(g.departures))
		for i, d := range g.departures {
			departures[i] = d.String()
		}
		sp.Daily = append(sp.Daily, plan.DailyPlan{Days: g.days.String(), Departures: departures})
	}
	sp.BaseFrequency = plan.FrequencyPlan{Min: minH, Max: maxH}
	return sp, true
}

// baseFrequency is the smallest and largest gap between departures, kept
// within the headway bounds a schedule accepts.
func baseFrequency(departures []domain.TimeOfDay) plan.FrequencyPlan {
	if len(departures) < 2 {
		return plan.FrequencyPlan{Min: defaultBaseHeadway, Max: defaultBaseHeadway}
	}
	minH, maxH := maxBaseHeadway, minBaseHeadway
	for i := 1; i < len(departures); i++ {
		gap := departures[i].Sub(departures[i-1])
		minH, maxH = min(minH, gap), max(maxH, gap)
	}
	minH = min(max(minH, minBaseHeadway), maxBaseHeadway)
	maxH = min(max(maxH, minH), maxBaseHeadway)
	return plan.FrequencyPlan{Min: minH.Truncate(time.Second), Max: maxH.Truncate(time.Second)}
}
