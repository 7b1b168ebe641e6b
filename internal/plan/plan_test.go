package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlan = `
author: planner
routes:
  - id: line-12
    name: Line 12
    type: city_bus
    direction: outbound
    stops:
      - {id: S1, name: Central Station, lat: 43.2389, lon: 76.8897}
      - {id: S2, name: Market, lat: 43.2450, lon: 76.8950}
      - {id: S3, name: University, lat: 43.2500, lon: 76.9050, distance_m: 1500}
    operating_hours: {start: "05:30", end: "24:30", days: daily}
    activate: true
    performance: {average_speed_kmh: 18, daily_ridership: 1200, on_time_pct: 60}
    schedules:
      - name: Spring 2024
        type: frequency_based
        effective_from: "2024-03-01"
        effective_to: "2024-06-30"
        base_frequency: {min: 5m, max: 20m}
        allows_dynamic_adjustments: true
        periods:
          - {name: morning peak, start: "06:00", end: "09:00", headway: 6m, days: weekdays}
          - {name: midday, start: "09:00", end: "16:00", headway: 12m, days: weekdays}
        daily:
          - days: sat,sun
            departures: ["07:00", "07:30", "08:00"]
        frequency_patterns:
          - name: commuter
            headway: 12m
            peak_headway: 6m
            peak_windows: [{start: "07:00", end: "09:00"}]
        activate: true
        performance: {adherence_pct: 75, missed_trips: 1, load_factor: 0.8}
`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(samplePlan))
	require.NoError(t, err)

	assert.Equal(t, "planner", p.Author)
	require.Len(t, p.Routes, 1)

	route := p.Routes[0]
	assert.Equal(t, "line-12", route.ID)
	require.Len(t, route.Stops, 3)
	assert.Nil(t, route.Stops[1].DistanceMeters)
	require.NotNil(t, route.Stops[2].DistanceMeters)
	assert.Equal(t, 1500.0, *route.Stops[2].DistanceMeters)

	require.Len(t, route.Schedules, 1)
	schedule := route.Schedules[0]
	assert.Equal(t, 5*time.Minute, schedule.BaseFrequency.Min)
	assert.Equal(t, 6*time.Minute, schedule.Periods[0].Headway)
	assert.Equal(t, []string{"07:00", "07:30", "08:00"}, schedule.Daily[0].Departures)
	require.NotNil(t, schedule.Performance)
	assert.Equal(t, 75.0, schedule.Performance.AdherencePercent)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "empty document", doc: "", wantErr: "empty"},
		{name: "no routes", doc: "author: x\nroutes: []\n", wantErr: "no routes"},
		{name: "unknown field", doc: "routes:\n  - name: A\n    colour: red\n", wantErr: "failed to parse plan"},
		{name: "bad duration", doc: "routes:\n  - name: A\n    schedules:\n      - base_frequency: {min: soon}\n", wantErr: "failed to parse plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteAndLoad(t *testing.T) {
	original, err := Parse(strings.NewReader(samplePlan))
	require.NoError(t, err)

	for _, name := range []string{"plan.yaml", "plan.yaml.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Write(path, original))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, original, loaded)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open plan file")
}

func TestLoad_NotGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml.gz")
	require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}
