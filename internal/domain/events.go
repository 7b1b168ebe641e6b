package domain

import (
	"time"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/geo"
)

type EventKind string

const (
	KindRouteCreated                   EventKind = "RouteCreated"
	KindRouteStopAdded                 EventKind = "RouteStopAdded"
	KindRouteStopRemoved               EventKind = "RouteStopRemoved"
	KindRouteUpdated                   EventKind = "RouteUpdated"
	KindRouteActivated                 EventKind = "RouteActivated"
	KindRouteDeactivated               EventKind = "RouteDeactivated"
	KindRouteArchived                  EventKind = "RouteArchived"
	KindRoutePerformanceUpdated        EventKind = "RoutePerformanceUpdated"
	KindRouteMaintenanceAlert          EventKind = "RouteMaintenanceAlert"
	KindRouteMaintenanceResolved       EventKind = "RouteMaintenanceResolved"
	KindRouteScheduleCreated           EventKind = "RouteScheduleCreated"
	KindSchedulePeriodAdded            EventKind = "SchedulePeriodAdded"
	KindSchedulePeriodRemoved          EventKind = "SchedulePeriodRemoved"
	KindDailyScheduleUpdated           EventKind = "DailyScheduleUpdated"
	KindFrequencyPatternAdded          EventKind = "FrequencyPatternAdded"
	KindScheduleDynamicallyAdjusted    EventKind = "ScheduleDynamicallyAdjusted"
	KindSchedulePerformanceUpdated     EventKind = "SchedulePerformanceUpdated"
	KindSchedulePerformanceAlert       EventKind = "SchedulePerformanceAlert"
	KindScheduleActivated              EventKind = "ScheduleActivated"
	KindScheduleDeactivated            EventKind = "ScheduleDeactivated"
	KindScheduleEffectivePeriodChanged EventKind = "ScheduleEffectivePeriodChanged"
)

// Event is the envelope shared by every domain event. Payload holds the
// kind-specific data and always agrees with Kind.
type Event struct {
	ID               string
	Kind             EventKind
	AggregateID      string
	AggregateVersion int64
	OccurredAt       time.Time
	Payload          EventPayload
}

// EventPayload is implemented only by the payload types in this package.
type EventPayload interface {
	Kind() EventKind
	isEventPayload()
}

type payload struct{}

func (payload) isEventPayload() {}

type RouteCreated struct {
	payload
	Name          string
	Type          RouteType
	Direction     RouteDirection
	InitialStops  []StopID
	TotalDistance geo.Distance
	CreatedBy     string
}

type RouteStopAdded struct {
	payload
	StopID               StopID
	Position             int
	DistanceFromPrevious geo.Distance
	StopCount            int
	TotalDistance        geo.Distance
	TotalDuration        time.Duration
	AddedBy              string
}

type RouteStopRemoved struct {
	payload
	StopID        StopID
	Position      int
	Reason        string
	Merged        bool
	StopCount     int
	TotalDistance geo.Distance
	TotalDuration time.Duration
	RemovedBy     string
}

type RouteUpdated struct {
	payload
	PreviousName string
	Name         string
	Description  string
	UpdatedBy    string
}

type RouteActivated struct {
	payload
	OperatingHours OperatingHours
	Complexity     RouteComplexity
	StopCount      int
	TotalDistance  geo.Distance
	ActivatedBy    string
}

type RouteDeactivated struct {
	payload
	Reason        string
	DeactivatedBy string
}

type RouteArchived struct {
	payload
	PreviousStatus RouteStatus
	Reason         string
	ArchivedBy     string
}

type RoutePerformanceUpdated struct {
	payload
	AverageSpeed      geo.Speed
	DailyRidership    int
	OnTimePerformance float64
}

type RouteMaintenanceAlert struct {
	payload
	Urgency           MaintenanceUrgency
	Reasons           []string
	OnTimePerformance float64
	AverageSpeed      geo.Speed
	DailyRidership    int
}

type RouteMaintenanceResolved struct {
	payload
	PreviousNotes string
	Notes         string
	ResolvedBy    string
}

type RouteScheduleCreated struct {
	payload
	RouteID                  RouteID
	Name                     string
	Type                     ScheduleType
	EffectiveFrom            time.Time
	EffectiveTo              time.Time
	BaseFrequency            Frequency
	AllowsDynamicAdjustments bool
	CreatedBy                string
}

type SchedulePeriodAdded struct {
	payload
	Period      SchedulePeriod
	PeriodCount int
	AddedBy     string
}

type SchedulePeriodRemoved struct {
	payload
	Name        string
	PeriodCount int
	RemovedBy   string
}

// DailyScheduleUpdated reports a timetable replacement; Removed is set when
// the day no longer has a timetable.
type DailyScheduleUpdated struct {
	payload
	Day            time.Weekday
	TripCount      int
	FirstDeparture TimeOfDay
	LastDeparture  TimeOfDay
	Removed        bool
	UpdatedBy      string
}

type FrequencyPatternAdded struct {
	payload
	Pattern FrequencyPattern
	AddedBy string
}

type ScheduleDynamicallyAdjusted struct {
	payload
	Day               time.Weekday
	AdjustmentMinutes int
	TotalAdjustment   int
	Reason            string
	AdjustedBy        string
}

type SchedulePerformanceUpdated struct {
	payload
	ScheduleAdherence   float64
	MissedTrips         int
	PassengerLoadFactor float64
}

type SchedulePerformanceAlert struct {
	payload
	ScheduleAdherence float64
	MissedTrips       int
	Reasons           []string
}

type ScheduleActivated struct {
	payload
	ActivatedBy string
}

type ScheduleDeactivated struct {
	payload
	Reason        string
	DeactivatedBy string
}

type ScheduleEffectivePeriodChanged struct {
	payload
	PreviousFrom time.Time
	PreviousTo   time.Time
	From         time.Time
	To           time.Time
	ChangedBy    string
}

func (RouteCreated) Kind() EventKind                   { return KindRouteCreated }
func (RouteStopAdded) Kind() EventKind                 { return KindRouteStopAdded }
func (RouteStopRemoved) Kind() EventKind               { return KindRouteStopRemoved }
func (RouteUpdated) Kind() EventKind                   { return KindRouteUpdated }
func (RouteActivated) Kind() EventKind                 { return KindRouteActivated }
func (RouteDeactivated) Kind() EventKind               { return KindRouteDeactivated }
func (RouteArchived) Kind() EventKind                  { return KindRouteArchived }
func (RoutePerformanceUpdated) Kind() EventKind        { return KindRoutePerformanceUpdated }
func (RouteMaintenanceAlert) Kind() EventKind          { return KindRouteMaintenanceAlert }
func (RouteMaintenanceResolved) Kind() EventKind       { return KindRouteMaintenanceResolved }
func (RouteScheduleCreated) Kind() EventKind           { return KindRouteScheduleCreated }
func (SchedulePeriodAdded) Kind() EventKind            { return KindSchedulePeriodAdded }
func (SchedulePeriodRemoved) Kind() EventKind          { return KindSchedulePeriodRemoved }
func (DailyScheduleUpdated) Kind() EventKind           { return KindDailyScheduleUpdated }
func (FrequencyPatternAdded) Kind() EventKind          { return KindFrequencyPatternAdded }
func (ScheduleDynamicallyAdjusted) Kind() EventKind    { return KindScheduleDynamicallyAdjusted }
func (SchedulePerformanceUpdated) Kind() EventKind     { return KindSchedulePerformanceUpdated }
func (SchedulePerformanceAlert) Kind() EventKind       { return KindSchedulePerformanceAlert }
func (ScheduleActivated) Kind() EventKind              { return KindScheduleActivated }
func (ScheduleDeactivated) Kind() EventKind            { return KindScheduleDeactivated }
func (ScheduleEffectivePeriodChanged) Kind() EventKind { return KindScheduleEffectivePeriodChanged }
