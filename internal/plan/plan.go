// Package plan reads and writes declarative route plans: YAML documents
// describing routes, their stops and their schedules, which a Builder turns
// into domain aggregates.
package plan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/logging"
)

// Plan is the root of a plan document.
type Plan struct {
	// Author is recorded as the actor on every transition the plan applies.
	Author string      `yaml:"author,omitempty"`
	Routes []RoutePlan `yaml:"routes"`
}

type RoutePlan struct {
	ID             string         `yaml:"id,omitempty"`
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description,omitempty"`
	Type           string         `yaml:"type,omitempty"`
	Direction      string         `yaml:"direction,omitempty"`
	Stops          []StopPlan     `yaml:"stops"`
	OperatingHours *HoursPlan     `yaml:"operating_hours,omitempty"`
	Activate       bool           `yaml:"activate,omitempty"`
	Performance    *RoutePerfPlan `yaml:"performance,omitempty"`
	Schedules      []SchedulePlan `yaml:"schedules,omitempty"`
}

// StopPlan places a stop on the route. DistanceMeters is the distance from
// the previous stop; when omitted it is computed from the coordinates of both
// stops.
type StopPlan struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name,omitempty"`
	Lat            *float64 `yaml:"lat,omitempty"`
	Lon            *float64 `yaml:"lon,omitempty"`
	DistanceMeters *float64 `yaml:"distance_m,omitempty"`
}

func (s StopPlan) hasPosition() bool {
	return s.Lat != nil && s.Lon != nil
}

type HoursPlan struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Days  string `yaml:"days,omitempty"`
}

type RoutePerfPlan struct {
	AverageSpeedKmh float64 `yaml:"average_speed_kmh"`
	DailyRidership  int     `yaml:"daily_ridership"`
	OnTimePercent   float64 `yaml:"on_time_pct"`
}

type SchedulePlan struct {
	ID                       string            `yaml:"id,omitempty"`
	Name                     string            `yaml:"name"`
	Type                     string            `yaml:"type"`
	EffectiveFrom            string            `yaml:"effective_from"`
	EffectiveTo              string            `yaml:"effective_to,omitempty"`
	BaseFrequency            FrequencyPlan     `yaml:"base_frequency"`
	AllowsDynamicAdjustments bool              `yaml:"allows_dynamic_adjustments,omitempty"`
	Periods                  []PeriodPlan      `yaml:"periods,omitempty"`
	Daily                    []DailyPlan       `yaml:"daily,omitempty"`
	FrequencyPatterns        []PatternPlan     `yaml:"frequency_patterns,omitempty"`
	Adjustments              []AdjustmentPlan  `yaml:"adjustments,omitempty"`
	Activate                 bool              `yaml:"activate,omitempty"`
	Performance              *SchedulePerfPlan `yaml:"performance,omitempty"`
}

type FrequencyPlan struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

type PeriodPlan struct {
	Name    string        `yaml:"name"`
	Start   string        `yaml:"start"`
	End     string        `yaml:"end"`
	Headway time.Duration `yaml:"headway"`
	Days    string        `yaml:"days,omitempty"`
}

// DailyPlan is a weekday timetable. Days may name several weekdays sharing
// the same departures.
type DailyPlan struct {
	Days       string   `yaml:"days"`
	Departures []string `yaml:"departures"`
}

type PatternPlan struct {
	Name        string        `yaml:"name"`
	Headway     time.Duration `yaml:"headway"`
	PeakHeadway time.Duration `yaml:"peak_headway,omitempty"`
	PeakWindows []WindowPlan  `yaml:"peak_windows,omitempty"`
}

type WindowPlan struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type AdjustmentPlan struct {
	Day     string `yaml:"day"`
	Minutes int    `yaml:"minutes"`
	Reason  string `yaml:"reason"`
}

type SchedulePerfPlan struct {
	AdherencePercent float64 `yaml:"adherence_pct"`
	MissedTrips      int     `yaml:"missed_trips"`
	LoadFactor       float64 `yaml:"load_factor"`
}

func isGzip(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

// Load reads a plan file. Files ending in .gz are decompressed first.
func Load(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan file: %w", err)
	}
	defer logging.SafeCloseWithLogging(f, nil, "plan_file")

	var r io.Reader = f
	if isGzip(path) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip plan: %w", err)
		}
		defer logging.SafeCloseWithLogging(zr, nil, "plan_gzip_reader")
		r = zr
	}

	p, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a plan document. Unknown keys are rejected.
func Parse(r io.Reader) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("plan document is empty")
		}
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if len(p.Routes) == 0 {
		return nil, errors.New("plan has no routes")
	}
	return &p, nil
}

// Write encodes p to path, compressing it when the name ends in .gz.
func Write(path string, p *Plan) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plan file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if !isGzip(path) {
		return Encode(f, p)
	}

	zw := gzip.NewWriter(f)
	if err := Encode(zw, p); err != nil {
		return err
	}
	return zw.Close()
}

func Encode(w io.Writer, p *Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}
