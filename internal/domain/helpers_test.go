package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/clock"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/geo"
)

// Monday morning.
var baseTime = time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

func testConfig() (Config, *clock.MockClock) {
	clk := clock.NewMockClock(baseTime)
	cfg := DefaultConfig()
	cfg.Clock = clk
	cfg.NewID = SequentialIDs("id")
	return cfg, clk
}

func km(v float64) geo.Distance {
	d, err := geo.Kilometers(v)
	if err != nil {
		panic(err)
	}
	return d
}

func m(v float64) geo.Distance { return geo.MustMeters(v) }

// newTestRoute builds a draft city bus route whose stops are 1 km apart.
func newTestRoute(t *testing.T, cfg Config, stops ...StopID) Route {
	t.Helper()
	initial := make([]InitialStop, len(stops))
	for i, s := range stops {
		initial[i] = InitialStop{StopID: s, DistanceFromPrevious: km(1)}
	}
	r, _, err := NewRoute(cfg, NewRouteParams{
		ID:           "route-1",
		Name:         "Line 12",
		Type:         CityBus,
		Direction:    Outbound,
		InitialStops: initial,
		CreatedBy:    "planner",
	})
	require.NoError(t, err)
	return r
}

func weekdayHours() *OperatingHours {
	return &OperatingHours{Start: MustParseTimeOfDay("06:00"), End: MustParseTimeOfDay("23:00"), Days: MondayToFriday}
}

func requireViolation(t *testing.T, err error, code domainerr.Code) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, domainerr.Is(err, code), "expected %s, got %v", code, err)
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
