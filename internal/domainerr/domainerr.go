// Package domainerr defines the single error kind raised by the route and
// schedule core when a business rule is violated.
package domainerr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable identifier for a violated rule.
type Code string

const (
	InvalidValue          Code = "INVALID_VALUE"
	InvalidCoordinate     Code = "INVALID_COORDINATE"
	InvalidDistance       Code = "INVALID_DISTANCE"
	InvalidSpeed          Code = "INVALID_SPEED"
	InvalidBearing        Code = "INVALID_BEARING"
	InvalidBoundingBox    Code = "INVALID_BOUNDING_BOX"
	InvalidSegment        Code = "INVALID_SEGMENT"
	SpeedInconsistent     Code = "SEGMENT_SPEED_INCONSISTENT"
	SegmentsNotAdjacent   Code = "SEGMENTS_NOT_ADJACENT"
	InvalidRouteName      Code = "INVALID_ROUTE_NAME"
	RouteArchived         Code = "ROUTE_ARCHIVED"
	InvalidStopPosition   Code = "INVALID_STOP_POSITION"
	DuplicateStop         Code = "DUPLICATE_STOP"
	StopNotFound          Code = "STOP_NOT_FOUND"
	StopLimitExceeded     Code = "STOP_LIMIT_EXCEEDED"
	InsufficientStops     Code = "INSUFFICIENT_STOPS"
	InvalidStatus         Code = "INVALID_STATUS_TRANSITION"
	MissingOperatingHours Code = "MISSING_OPERATING_HOURS"
	InvalidOperatingHours Code = "INVALID_OPERATING_HOURS"
	InvalidPerformance    Code = "INVALID_PERFORMANCE_METRICS"
	NoActiveAlert         Code = "NO_ACTIVE_MAINTENANCE_ALERT"
	InvalidSchedule       Code = "INVALID_SCHEDULE"
	InvalidPeriod         Code = "INVALID_SCHEDULE_PERIOD"
	OverlappingPeriod     Code = "OVERLAPPING_SCHEDULE_PERIOD"
	PeriodLimitExceeded   Code = "SCHEDULE_PERIOD_LIMIT_EXCEEDED"
	PeriodNotFound        Code = "SCHEDULE_PERIOD_NOT_FOUND"
	InvalidHeadway        Code = "INVALID_HEADWAY"
	InvalidFrequency      Code = "INVALID_FREQUENCY_PATTERN"
	DailyScheduleNotFound Code = "DAILY_SCHEDULE_NOT_FOUND"
	AdjustmentNotAllowed  Code = "DYNAMIC_ADJUSTMENT_NOT_ALLOWED"
	AdjustmentTooLarge    Code = "DYNAMIC_ADJUSTMENT_TOO_LARGE"
	InvalidEffectiveDates Code = "INVALID_EFFECTIVE_DATES"
)

// Violation is a failed precondition. It carries a code for callers that
// branch on the rule and a message for humans.
type Violation struct {
	Code    Code
	Message string
}

func (v *Violation) Error() string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("business rule violation [%s]: %s", v.Code, v.Message)
}

// New builds a Violation with a formatted message.
func New(code Code, format string, args ...any) *Violation {
	return &Violation{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsViolation reports whether err is, or wraps, a Violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// Is reports whether err is, or wraps, a Violation with the given code.
func Is(err error, code Code) bool {
	var v *Violation
	if errors.As(err, &v) {
		return v.Code == code
	}
	return false
}

// CodeOf returns the code of the Violation in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var v *Violation
	if errors.As(err, &v) {
		return v.Code
	}
	return ""
}

// MessageOf returns the human-readable part of a Violation, or err's text for
// any other error.
func MessageOf(err error) string {
	var v *Violation
	if errors.As(err, &v) {
		return v.Message
	}
	return err.Error()
}
