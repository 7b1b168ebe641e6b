// Package appconf loads the routectl configuration from the environment (and
// an optional .env file) or from a JSON config file.
package appconf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/clock"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domain"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/logging"
)

// Config holds the settings shared by every routectl command.
type Config struct {
	Env       Environment
	LogLevel  slog.Level
	LogFormat logging.Format
	Verbose   bool

	// Timezone is the IANA zone used to read plan dates and times.
	Timezone string
	// ClockOverride pins "now" to a fixed instant, for reproducible runs.
	ClockOverride string

	Limits LimitOverrides
}

// LimitOverrides replaces individual domain limits; zero keeps the default.
type LimitOverrides struct {
	RouteMaxStops                 int     `json:"route_max_stops"`
	RouteFlatSpeedKmh             float64 `json:"route_flat_speed_kmh"`
	RouteOnTimeAlertPercent       float64 `json:"route_on_time_alert_pct"`
	SegmentMaxDistanceMeters      float64 `json:"segment_max_distance_m"`
	ScheduleMaxPeriods            int     `json:"schedule_max_periods"`
	ScheduleAdherenceAlertPercent float64 `json:"schedule_adherence_alert_pct"`
	ScheduleMissedTripsAlert      int     `json:"schedule_missed_trips_alert"`
}

// Default is the configuration used when nothing is set.
func Default() Config {
	return Config{
		Env:       Development,
		LogLevel:  slog.LevelInfo,
		LogFormat: logging.FormatText,
		Timezone:  "UTC",
	}
}

// LoadFromEnv reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func LoadFromEnv(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	env := envReader{lookup: lookup}

	var err error
	if v, ok := env.get("ROUTECTL_ENV"); ok {
		if cfg.Env, err = ParseEnvironment(v); err != nil {
			return Config{}, err
		}
	}
	if v, ok := env.get("LOG_LEVEL"); ok {
		if cfg.LogLevel, err = logging.ParseLevel(v); err != nil {
			return Config{}, err
		}
	}
	if v, ok := env.get("LOG_FORMAT"); ok {
		if cfg.LogFormat, err = logging.ParseFormat(v); err != nil {
			return Config{}, err
		}
	}
	cfg.Verbose = env.boolean("ROUTECTL_VERBOSE")
	if v, ok := env.get("ROUTECTL_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := env.get("ROUTECTL_CLOCK"); ok {
		cfg.ClockOverride = v
	}

	cfg.Limits = LimitOverrides{
		RouteMaxStops:                 env.integer("ROUTE_MAX_STOPS"),
		RouteFlatSpeedKmh:             env.float("ROUTE_FLAT_SPEED_KMH"),
		RouteOnTimeAlertPercent:       env.float("ROUTE_ON_TIME_ALERT_PCT"),
		SegmentMaxDistanceMeters:      env.float("SEGMENT_MAX_DISTANCE_M"),
		ScheduleMaxPeriods:            env.integer("SCHEDULE_MAX_PERIODS"),
		ScheduleAdherenceAlertPercent: env.float("SCHEDULE_ADHERENCE_ALERT_PCT"),
		ScheduleMissedTripsAlert:      env.integer("SCHEDULE_MISSED_TRIPS_ALERT"),
	}
	if len(env.errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %w", errors.Join(env.errs...))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be checked while parsing.
func (c Config) Validate() error {
	var errs []error
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if c.ClockOverride != "" {
		if _, err := clock.ParseInstant(c.ClockOverride, time.UTC); err != nil {
			errs = append(errs, fmt.Errorf("clock override: %w", err))
		}
	}
	l := c.Limits
	if l.RouteMaxStops < 0 || l.ScheduleMaxPeriods < 0 || l.ScheduleMissedTripsAlert < 0 {
		errs = append(errs, errors.New("limit overrides cannot be negative"))
	}
	if l.RouteFlatSpeedKmh < 0 || l.SegmentMaxDistanceMeters < 0 {
		errs = append(errs, errors.New("limit overrides cannot be negative"))
	}
	if l.RouteOnTimeAlertPercent < 0 || l.RouteOnTimeAlertPercent > 100 ||
		l.ScheduleAdherenceAlertPercent < 0 || l.ScheduleAdherenceAlertPercent > 100 {
		errs = append(errs, errors.New("alert percentages must be within 0-100"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Location returns the configured time zone, UTC if it cannot be loaded.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Clock is the real clock unless an override is configured.
func (c Config) Clock() (clock.Clock, error) {
	return clock.NewOverrideClock(c.ClockOverride, c.Location())
}

// DomainConfig applies the overrides to the default domain rules.
func (c Config) DomainConfig() (domain.Config, error) {
	clk, err := c.Clock()
	if err != nil {
		return domain.Config{}, err
	}
	cfg := domain.DefaultConfig()
	cfg.Clock = clk

	l := c.Limits
	if l.RouteMaxStops > 0 {
		cfg.Route.MaxStops = l.RouteMaxStops
	}
	if l.RouteFlatSpeedKmh > 0 {
		cfg.Route.FlatSpeedKmh = l.RouteFlatSpeedKmh
	}
	if l.RouteOnTimeAlertPercent > 0 {
		cfg.Route.OnTimeAlertPercent = l.RouteOnTimeAlertPercent
	}
	if l.SegmentMaxDistanceMeters > 0 {
		cfg.Segment.MaxDistanceMeters = l.SegmentMaxDistanceMeters
	}
	if l.ScheduleMaxPeriods > 0 {
		cfg.Schedule.MaxPeriods = l.ScheduleMaxPeriods
	}
	if l.ScheduleAdherenceAlertPercent > 0 {
		cfg.Schedule.AdherenceAlertPercent = l.ScheduleAdherenceAlertPercent
	}
	if l.ScheduleMissedTripsAlert > 0 {
		cfg.Schedule.MissedTripsAlertLimit = l.ScheduleMissedTripsAlert
	}
	return cfg, nil
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) integer(key string) int {
	v, ok := e.get(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, v))
	}
	return n
}

func (e *envReader) float(key string) float64 {
	v, ok := e.get(key)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a number", key, v))
	}
	return f
}

func (e *envReader) boolean(key string) bool {
	v, ok := e.get(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
	}
	return b
}
