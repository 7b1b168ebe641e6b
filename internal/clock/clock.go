// Package clock provides the time source used to stamp aggregates and events.
// Tests inject MockClock so versions, timestamps and next-departure lookups
// are deterministic.
package clock

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Clock provides an abstraction for time operations.
type Clock interface {
	// Now returns the current time
	Now() time.Time
}

// RealClock implements Clock using actual system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a controllable, thread-safe Clock for tests.
type MockClock struct {
	currentTime time.Time
	mu          sync.Mutex
}

// NewMockClock creates a new MockClock set to the specified time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mock clock's current time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

// Set changes the mock clock's current time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance moves the mock clock by d. Negative durations move it backward.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// overrideLayouts are accepted in addition to RFC3339 when a location is known.
var overrideLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NewOverrideClock returns a clock pinned to value, or RealClock when value is
// empty. Operators use it to evaluate schedules "as of" a service day.
func NewOverrideClock(value string, location *time.Location) (Clock, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return RealClock{}, nil
	}
	t, err := ParseInstant(value, location)
	if err != nil {
		return nil, err
	}
	return NewMockClock(t), nil
}

// ParseInstant parses RFC3339, or one of the local layouts in location.
func ParseInstant(value string, location *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if location == nil {
		return time.Time{}, fmt.Errorf("unable to parse time %q: timezone not configured for local layouts", value)
	}
	for _, layout := range overrideLayouts {
		if t, err := time.ParseInLocation(layout, value, location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time %q: expected RFC3339 or YYYY-MM-DD[ HH:MM[:SS]]", value)
}
