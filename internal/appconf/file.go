package appconf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/logging"
)

// JSONConfig is the on-disk form of Config.
type JSONConfig struct {
	Env       string         `json:"env"`
	LogLevel  string         `json:"log_level"`
	LogFormat string         `json:"log_format"`
	Verbose   bool           `json:"verbose"`
	Timezone  string         `json:"timezone"`
	Clock     string         `json:"clock"`
	Limits    LimitOverrides `json:"limits"`
}

// LoadFromFile reads and validates a JSON config file.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg JSONConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}
	if _, err := cfg.ToAppConfig(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ToAppConfig converts the file form, filling unset fields with defaults.
func (j *JSONConfig) ToAppConfig() (Config, error) {
	cfg := Default()
	var err error
	if cfg.Env, err = ParseEnvironment(j.Env); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.LogLevel, err = logging.ParseLevel(j.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.LogFormat, err = logging.ParseFormat(j.LogFormat); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Verbose = j.Verbose
	if j.Timezone != "" {
		cfg.Timezone = j.Timezone
	}
	cfg.ClockOverride = j.Clock
	cfg.Limits = j.Limits
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
