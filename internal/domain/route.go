package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/geo"
)

// InitialStop seeds a new route; the distance is ignored for the first stop.
type InitialStop struct {
	StopID               StopID
	DistanceFromPrevious geo.Distance
}

type NewRouteParams struct {
	// ID is generated from Config.NewID when empty.
	ID             RouteID
	Name           string
	Description    string
	Type           RouteType
	Direction      RouteDirection
	InitialStops   []InitialStop
	OperatingHours *OperatingHours
	CreatedBy      string
}

// Route is the aggregate root for a line's stop sequence, its segments and its
// service state. A Route value is an immutable snapshot: every transition
// returns a new Route together with the events it produced, and leaves the
// receiver untouched. On error the receiver is returned as is.
type Route struct {
	Tracked[RouteID]
	cfg Config

	name        string
	description string
	routeType   RouteType
	direction   RouteDirection
	status      RouteStatus

	stops         []StopID
	segments      []RouteSegment
	totalDistance geo.Distance
	totalDuration time.Duration
	complexity    RouteComplexity

	operatingHours    OperatingHours
	hasOperatingHours bool

	averageSpeed      geo.Speed
	dailyRidership    int
	onTimePerformance float64
	maintenanceAlert  bool
	maintenanceNotes  string

	createdBy      string
	lastModifiedBy string
}

// NewRoute creates a DRAFT route. Initial stops go through the same insertion
// rules as AddStop and are reported in the single RouteCreated event.
func NewRoute(cfg Config, p NewRouteParams) (Route, []Event, error) {
	cfg = cfg.WithDefaults()

	name, err := validateRouteName(cfg.Route, p.Name)
	if err != nil {
		return Route{}, nil, err
	}
	routeType, err := ParseRouteType(string(p.Type))
	if err != nil {
		return Route{}, nil, err
	}
	direction := p.Direction
	if direction == "" {
		direction = Outbound
	}
	if direction, err = ParseRouteDirection(string(direction)); err != nil {
		return Route{}, nil, err
	}

	id := p.ID
	if id == "" {
		id = RouteID(cfg.NewID())
	}
	now := cfg.now()
	r := Route{
		Tracked:        newTracked(id, now),
		cfg:            cfg,
		name:           name,
		description:    strings.TrimSpace(p.Description),
		routeType:      routeType,
		direction:      direction,
		status:         StatusDraft,
		complexity:     ComplexityLow,
		createdBy:      p.CreatedBy,
		lastModifiedBy: p.CreatedBy,
	}
	if p.OperatingHours != nil {
		if err := p.OperatingHours.Validate(); err != nil {
			return Route{}, nil, err
		}
		r.operatingHours, r.hasOperatingHours = *p.OperatingHours, true
	}
	for i, s := range p.InitialStops {
		if err := r.insertStop(s.StopID, i, s.DistanceFromPrevious); err != nil {
			return Route{}, nil, err
		}
	}
	if err := r.recalculate(); err != nil {
		return Route{}, nil, err
	}

	events := r.emit(cfg.NewID, now, RouteCreated{
		Name:          r.name,
		Type:          r.routeType,
		Direction:     r.direction,
		InitialStops:  slices.Clone(r.stops),
		TotalDistance: r.totalDistance,
		CreatedBy:     p.CreatedBy,
	})
	return r, events, nil
}

// AddStop inserts stopID at position. Appending links the previous last stop
// to the new one; inserting at the head links the new stop to the old first
// stop; an interior insert splits the segment it lands on, the remainder of
// its distance going to the new stop's outgoing segment.
func (r Route) AddStop(stopID StopID, position int, distanceFromPrevious geo.Distance, addedBy string) (Route, []Event, error) {
	if r.status == StatusArchived {
		return r, nil, archivedError(r.ID())
	}
	next := r.clone()
	if err := next.insertStop(stopID, position, distanceFromPrevious); err != nil {
		return r, nil, err
	}
	if err := next.recalculate(); err != nil {
		return r, nil, err
	}
	events := next.commit(addedBy, RouteStopAdded{
		StopID:               stopID,
		Position:             position,
		DistanceFromPrevious: distanceFromPrevious,
		StopCount:            len(next.stops),
		TotalDistance:        next.totalDistance,
		TotalDuration:        next.totalDuration,
		AddedBy:              addedBy,
	})
	return next, events, nil
}

// RemoveStop drops stopID. Removing an endpoint drops its only segment;
// removing an interior stop merges the two segments around it.
func (r Route) RemoveStop(stopID StopID, reason, removedBy string) (Route, []Event, error) {
	if r.status == StatusArchived {
		return r, nil, archivedError(r.ID())
	}
	i := slices.Index(r.stops, stopID)
	if i < 0 {
		return r, nil, domainerr.New(domainerr.StopNotFound, "stop %s is not on route %s", stopID, r.ID())
	}
	if len(r.stops)-1 < r.cfg.Route.MinStops {
		return r, nil, domainerr.New(domainerr.InsufficientStops,
			"route %s must keep at least %d stops", r.ID(), r.cfg.Route.MinStops)
	}

	next := r.clone()
	n := len(next.stops)
	merged := false
	switch {
	case n == 1:
	case i == 0:
		next.segments = slices.Delete(next.segments, 0, 1)
	case i == n-1:
		next.segments = slices.Delete(next.segments, n-2, n-1)
	default:
		seg, err := MergeSegments(next.cfg.Segment, SegmentID(next.cfg.NewID()), next.segments[i-1], next.segments[i])
		if err != nil {
			return r, nil, err
		}
		next.segments = slices.Replace(next.segments, i-1, i+1, seg)
		merged = true
	}
	next.stops = slices.Delete(next.stops, i, i+1)
	if err := next.recalculate(); err != nil {
		return r, nil, err
	}

	events := next.commit(removedBy, RouteStopRemoved{
		StopID:        stopID,
		Position:      i,
		Reason:        reason,
		Merged:        merged,
		StopCount:     len(next.stops),
		TotalDistance: next.totalDistance,
		TotalDuration: next.totalDuration,
		RemovedBy:     removedBy,
	})
	return next, events, nil
}

// Activate puts the route into service. hours may be nil when the route
// already carries operating hours.
func (r Route) Activate(hours *OperatingHours, activatedBy string) (Route, []Event, error) {
	switch r.status {
	case StatusArchived:
		return r, nil, archivedError(r.ID())
	case StatusActive:
		return r, nil, domainerr.New(domainerr.InvalidStatus, "route %s is already active", r.ID())
	}
	if len(r.stops) < r.cfg.Route.MinStops {
		return r, nil, domainerr.New(domainerr.InsufficientStops,
			"route %s needs at least %d stops to be activated, has %d", r.ID(), r.cfg.Route.MinStops, len(r.stops))
	}
	h, ok := r.operatingHours, r.hasOperatingHours
	if hours != nil {
		h, ok = *hours, true
	}
	if !ok {
		return r, nil, domainerr.New(domainerr.MissingOperatingHours, "route %s has no operating hours", r.ID())
	}
	if err := h.Validate(); err != nil {
		return r, nil, err
	}

	next := r.clone()
	next.status = StatusActive
	next.operatingHours, next.hasOperatingHours = h, true
	next.complexity = next.deriveComplexity()
	events := next.commit(activatedBy, RouteActivated{
		OperatingHours: h,
		Complexity:     next.complexity,
		StopCount:      len(next.stops),
		TotalDistance:  next.totalDistance,
		ActivatedBy:    activatedBy,
	})
	return next, events, nil
}

func (r Route) Deactivate(reason, deactivatedBy string) (Route, []Event, error) {
	if r.status != StatusActive {
		return r, nil, domainerr.New(domainerr.InvalidStatus, "route %s is %s, only active routes can be deactivated", r.ID(), r.status)
	}
	if strings.TrimSpace(reason) == "" {
		return r, nil, domainerr.New(domainerr.InvalidValue, "a deactivation reason is required")
	}
	next := r.clone()
	next.status = StatusInactive
	events := next.commit(deactivatedBy, RouteDeactivated{Reason: reason, DeactivatedBy: deactivatedBy})
	return next, events, nil
}

// Archive retires a draft or inactive route for good.
func (r Route) Archive(reason, archivedBy string) (Route, []Event, error) {
	switch r.status {
	case StatusArchived:
		return r, nil, archivedError(r.ID())
	case StatusActive:
		return r, nil, domainerr.New(domainerr.InvalidStatus, "route %s must be deactivated before it is archived", r.ID())
	}
	next := r.clone()
	next.status = StatusArchived
	events := next.commit(archivedBy, RouteArchived{PreviousStatus: r.status, Reason: reason, ArchivedBy: archivedBy})
	return next, events, nil
}

func (r Route) UpdateDetails(name, description, updatedBy string) (Route, []Event, error) {
	if r.status == StatusArchived {
		return r, nil, archivedError(r.ID())
	}
	clean, err := validateRouteName(r.cfg.Route, name)
	if err != nil {
		return r, nil, err
	}
	next := r.clone()
	next.name = clean
	next.description = strings.TrimSpace(description)
	events := next.commit(updatedBy, RouteUpdated{
		PreviousName: r.name,
		Name:         next.name,
		Description:  next.description,
		UpdatedBy:    updatedBy,
	})
	return next, events, nil
}

// UpdatePerformanceMetrics stores the latest operating figures. The first
// report that falls short of any threshold raises the maintenance alert; it
// stays raised, without further alert events, until resolved.
func (r Route) UpdatePerformanceMetrics(speedKmh float64, dailyRidership int, onTimePercent float64) (Route, []Event, error) {
	limits := r.cfg.Route
	if math.IsNaN(speedKmh) || math.IsInf(speedKmh, 0) || speedKmh < 0 || speedKmh > limits.MaxReportedSpeedKmh {
		return r, nil, domainerr.New(domainerr.InvalidPerformance,
			"average speed %v km/h outside 0-%.0f", speedKmh, limits.MaxReportedSpeedKmh)
	}
	if dailyRidership < 0 {
		return r, nil, domainerr.New(domainerr.InvalidPerformance, "daily ridership cannot be negative, got %d", dailyRidership)
	}
	if math.IsNaN(onTimePercent) || onTimePercent < 0 || onTimePercent > 100 {
		return r, nil, domainerr.New(domainerr.InvalidPerformance, "on-time performance %v%% outside 0-100", onTimePercent)
	}
	speed, err := geo.SpeedKmh(speedKmh)
	if err != nil {
		return r, nil, err
	}

	next := r.clone()
	next.averageSpeed = speed
	next.dailyRidership = dailyRidership
	next.onTimePerformance = onTimePercent

	payloads := []EventPayload{RoutePerformanceUpdated{
		AverageSpeed:      speed,
		DailyRidership:    dailyRidership,
		OnTimePerformance: onTimePercent,
	}}
	if reasons := next.maintenanceReasons(); len(reasons) > 0 && !next.maintenanceAlert {
		next.maintenanceAlert = true
		next.maintenanceNotes = strings.Join(reasons, "; ")
		payloads = append(payloads, RouteMaintenanceAlert{
			Urgency:           UrgencyForOnTime(onTimePercent),
			Reasons:           reasons,
			OnTimePerformance: onTimePercent,
			AverageSpeed:      speed,
			DailyRidership:    dailyRidership,
		})
	}
	events := next.commit("", payloads...)
	return next, events, nil
}

// ResolveMaintenanceAlert clears a raised alert so later reports can raise it
// again.
func (r Route) ResolveMaintenanceAlert(resolvedBy, notes string) (Route, []Event, error) {
	if !r.maintenanceAlert {
		return r, nil, domainerr.New(domainerr.NoActiveAlert, "route %s has no maintenance alert to resolve", r.ID())
	}
	next := r.clone()
	next.maintenanceAlert = false
	next.maintenanceNotes = ""
	events := next.commit(resolvedBy, RouteMaintenanceResolved{
		PreviousNotes: r.maintenanceNotes,
		Notes:         notes,
		ResolvedBy:    resolvedBy,
	})
	return next, events, nil
}

// ClearEvents returns the snapshot with an empty event buffer, typically
// after the events have been handed to a dispatcher.
func (r Route) ClearEvents() Route {
	r.clearEvents()
	return r
}

func (r Route) Name() string                 { return r.name }
func (r Route) Description() string          { return r.description }
func (r Route) Type() RouteType              { return r.routeType }
func (r Route) Direction() RouteDirection    { return r.direction }
func (r Route) Status() RouteStatus          { return r.status }
func (r Route) Stops() []StopID              { return slices.Clone(r.stops) }
func (r Route) Segments() []RouteSegment     { return slices.Clone(r.segments) }
func (r Route) StopCount() int               { return len(r.stops) }
func (r Route) TotalDistance() geo.Distance  { return r.totalDistance }
func (r Route) TotalDuration() time.Duration { return r.totalDuration }
func (r Route) Complexity() RouteComplexity  { return r.complexity }
func (r Route) AverageSpeed() geo.Speed      { return r.averageSpeed }
func (r Route) DailyRidership() int          { return r.dailyRidership }
func (r Route) OnTimePerformance() float64   { return r.onTimePerformance }
func (r Route) MaintenanceNotes() string     { return r.maintenanceNotes }
func (r Route) CreatedBy() string            { return r.createdBy }
func (r Route) LastModifiedBy() string       { return r.lastModifiedBy }

// RequiresMaintenanceAlert reports whether an alert is raised and unresolved.
func (r Route) RequiresMaintenanceAlert() bool { return r.maintenanceAlert }

func (r Route) OperatingHours() (OperatingHours, bool) {
	return r.operatingHours, r.hasOperatingHours
}

func (r Route) ContainsStop(id StopID) bool { return slices.Contains(r.stops, id) }

// IndexOfStop returns the stop's position, or -1.
func (r Route) IndexOfStop(id StopID) int { return slices.Index(r.stops, id) }

func (r Route) NextStop(id StopID) (StopID, bool) {
	i := slices.Index(r.stops, id)
	if i < 0 || i == len(r.stops)-1 {
		return "", false
	}
	return r.stops[i+1], true
}

func (r Route) PreviousStop(id StopID) (StopID, bool) {
	i := slices.Index(r.stops, id)
	if i <= 0 {
		return "", false
	}
	return r.stops[i-1], true
}

// SegmentFrom returns the segment leaving stop id.
func (r Route) SegmentFrom(id StopID) (RouteSegment, bool) {
	i := slices.Index(r.stops, id)
	if i < 0 || i >= len(r.segments) {
		return RouteSegment{}, false
	}
	return r.segments[i], true
}

// EstimatedDurationFor sums the segment times for a period.
func (r Route) EstimatedDurationFor(p TimePeriod) time.Duration {
	var total time.Duration
	for _, s := range r.segments {
		total += s.EstimatedTimeFor(p)
	}
	return total
}

// IsOperatingAt reports whether the route is active and in service at t.
func (r Route) IsOperatingAt(t time.Time) bool {
	return r.status == StatusActive && r.hasOperatingHours && r.operatingHours.Covers(t)
}

func (r Route) CanBeActivated() bool {
	return r.status != StatusArchived && r.status != StatusActive &&
		len(r.stops) >= r.cfg.Route.MinStops && r.hasOperatingHours
}

func (r Route) clone() Route {
	r.stops = slices.Clone(r.stops)
	r.segments = slices.Clone(r.segments)
	return r
}

func (r *Route) commit(by string, payloads ...EventPayload) []Event {
	now := r.cfg.now()
	r.markModified(now)
	if by != "" {
		r.lastModifiedBy = by
	}
	return r.emit(r.cfg.NewID, now, payloads...)
}

func (r *Route) insertStop(id StopID, position int, distance geo.Distance) error {
	if strings.TrimSpace(string(id)) == "" {
		return domainerr.New(domainerr.InvalidValue, "stop id is required")
	}
	n := len(r.stops)
	if position < 0 || position > n {
		return domainerr.New(domainerr.InvalidStopPosition, "position %d outside 0-%d", position, n)
	}
	if slices.Contains(r.stops, id) {
		return domainerr.New(domainerr.DuplicateStop, "stop %s is already on the route", id)
	}
	if n >= r.cfg.Route.MaxStops {
		return domainerr.New(domainerr.StopLimitExceeded, "route already has the maximum of %d stops", r.cfg.Route.MaxStops)
	}

	switch {
	case n == 0:
	case position == n:
		seg, err := r.flatSegment(r.stops[n-1], id, distance)
		if err != nil {
			return err
		}
		r.segments = append(r.segments, seg)
	case position == 0:
		seg, err := r.flatSegment(id, r.stops[0], distance)
		if err != nil {
			return err
		}
		r.segments = slices.Insert(r.segments, 0, seg)
	default:
		split := r.segments[position-1]
		if !distance.LessThan(split.Distance()) {
			return domainerr.New(domainerr.InvalidDistance,
				"distance %s must be shorter than the %s segment %s->%s it splits", distance, split.Distance(), split.From(), split.To())
		}
		in, err := r.flatSegment(split.From(), id, distance)
		if err != nil {
			return err
		}
		out, err := r.flatSegment(id, split.To(), split.Distance().Subtract(distance))
		if err != nil {
			return err
		}
		r.segments = slices.Replace(r.segments, position-1, position, in, out)
	}
	r.stops = slices.Insert(r.stops, position, id)
	return nil
}

// flatSegment estimates travel time at the flat planning speed, never below
// the segment time floor.
func (r *Route) flatSegment(from, to StopID, d geo.Distance) (RouteSegment, error) {
	seconds := d.Kilometers() / r.cfg.Route.FlatSpeedKmh * 3600
	t := time.Duration(math.Round(seconds)) * time.Second
	if t < r.cfg.Segment.MinTravelTime {
		t = r.cfg.Segment.MinTravelTime
	}
	return NewRouteSegment(r.cfg.Segment, SegmentID(r.cfg.NewID()), SegmentParams{
		From:          from,
		To:            to,
		Distance:      d,
		EstimatedTime: t,
	})
}

// recalculate recomputes the totals as a full sum over the segments.
func (r *Route) recalculate() error {
	distances := make([]geo.Distance, len(r.segments))
	var duration time.Duration
	for i, s := range r.segments {
		distances[i] = s.Distance()
		duration += s.EstimatedTime()
	}
	total, err := geo.SumDistances(distances...)
	if err != nil {
		return err
	}
	r.totalDistance = total
	r.totalDuration = duration
	r.complexity = r.deriveComplexity()
	return nil
}

func (r *Route) deriveComplexity() RouteComplexity {
	limits := r.cfg.Route
	stops, km := len(r.stops), r.totalDistance.Kilometers()
	switch {
	case stops > limits.HighComplexityStops || km > limits.HighComplexityKm:
		return ComplexityHigh
	case stops > limits.MediumComplexityStops || km > limits.MediumComplexityKm:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

func (r *Route) maintenanceReasons() []string {
	limits := r.cfg.Route
	minSpeed, minRidership := limits.StandardMinSpeedKmh, limits.StandardMinRidership
	if r.routeType.IsExpress() {
		minSpeed, minRidership = limits.ExpressMinSpeedKmh, limits.ExpressMinRidership
	}
	var reasons []string
	if r.onTimePerformance < limits.OnTimeAlertPercent {
		reasons = append(reasons, fmt.Sprintf("low on-time performance: %.1f%% (minimum %.0f%%)", r.onTimePerformance, limits.OnTimeAlertPercent))
	}
	if kmh := r.averageSpeed.KilometersPerHour(); kmh < minSpeed {
		reasons = append(reasons, fmt.Sprintf("low average speed: %.1f km/h (minimum %.0f km/h)", kmh, minSpeed))
	}
	if r.dailyRidership < minRidership {
		reasons = append(reasons, fmt.Sprintf("low daily ridership: %d (minimum %d)", r.dailyRidership, minRidership))
	}
	return reasons
}

func validateRouteName(limits RouteLimits, name string) (string, error) {
	clean := strings.TrimSpace(name)
	if n := utf8.RuneCountInString(clean); n < limits.MinNameLength || n > limits.MaxNameLength {
		return "", domainerr.New(domainerr.InvalidRouteName,
			"route name must be %d-%d characters, got %d", limits.MinNameLength, limits.MaxNameLength, n)
	}
	return clean, nil
}

func archivedError(id RouteID) error {
	return domainerr.New(domainerr.RouteArchived, "route %s is archived", id)
}
