package domain

import (
	"strings"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

type RouteStatus string

const (
	StatusDraft    RouteStatus = "DRAFT"
	StatusActive   RouteStatus = "ACTIVE"
	StatusInactive RouteStatus = "INACTIVE"
	StatusArchived RouteStatus = "ARCHIVED"
)

type RouteType string

const (
	CityBus  RouteType = "CITY_BUS"
	Express  RouteType = "EXPRESS"
	Suburban RouteType = "SUBURBAN"
	Shuttle  RouteType = "SHUTTLE"
	NightBus RouteType = "NIGHT"
)

var routeTypes = []RouteType{CityBus, Express, Suburban, Shuttle, NightBus}

func ParseRouteType(s string) (RouteType, error) {
	t := RouteType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range routeTypes {
		if t == known {
			return t, nil
		}
	}
	return "", domainerr.New(domainerr.InvalidValue, "unknown route type %q", s)
}

func (t RouteType) IsExpress() bool { return t == Express }

type RouteDirection string

const (
	Outbound RouteDirection = "OUTBOUND"
	Inbound  RouteDirection = "INBOUND"
	Circular RouteDirection = "CIRCULAR"
)

func ParseRouteDirection(s string) (RouteDirection, error) {
	switch d := RouteDirection(strings.ToUpper(strings.TrimSpace(s))); d {
	case Outbound, Inbound, Circular:
		return d, nil
	default:
		return "", domainerr.New(domainerr.InvalidValue, "unknown route direction %q", s)
	}
}

type RouteComplexity string

const (
	ComplexityLow    RouteComplexity = "LOW"
	ComplexityMedium RouteComplexity = "MEDIUM"
	ComplexityHigh   RouteComplexity = "HIGH"
)

type MaintenanceUrgency string

const (
	UrgencyLow      MaintenanceUrgency = "LOW"
	UrgencyMedium   MaintenanceUrgency = "MEDIUM"
	UrgencyHigh     MaintenanceUrgency = "HIGH"
	UrgencyCritical MaintenanceUrgency = "CRITICAL"
)

// UrgencyForOnTime grades a maintenance alert by on-time performance.
func UrgencyForOnTime(onTimePercent float64) MaintenanceUrgency {
	switch {
	case onTimePercent < 50:
		return UrgencyCritical
	case onTimePercent < 70:
		return UrgencyHigh
	case onTimePercent < 85:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
