package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	sim "github.com/drivethru-sim/drivethru-sim/sim"
)

// Duration is a duration in seconds that unmarshals from either a YAML
// number ("90") or a human-readable string ("1m 30s").
type Duration float64

// Seconds returns the duration as a plain number of seconds.
func (d Duration) Seconds() float64 { return float64(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var num float64
	if err := value.Decode(&num); err == nil {
		*d = Duration(num)
		return nil
	}
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	seconds, err := sim.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(seconds)
	return nil
}

// CustomerConfig is one explicit (arrival, service) pair for a fixed run.
type CustomerConfig struct {
	Arrival Duration `yaml:"arrival"`
	Service Duration `yaml:"service"`
}

// FixedSimConfig configures a run with an explicit customer list.
type FixedSimConfig struct {
	Enabled     bool             `yaml:"enabled"`
	NumWindows  int              `yaml:"num_windows"`
	Customers   []CustomerConfig `yaml:"customers"`
	HistoryFile string           `yaml:"history_file"`
}

// RandomSimConfig configures a run with randomly generated customers.
type RandomSimConfig struct {
	Enabled            bool     `yaml:"enabled"`
	NumWindows         int      `yaml:"num_windows"`
	AvgArrivalInterval Duration `yaml:"avg_arrival_interval"`
	MinServiceTime     Duration `yaml:"min_service_time"`
	MaxServiceTime     Duration `yaml:"max_service_time"`
	MaxSimulationTime  Duration `yaml:"max_simulation_time"`
	HistoryFile        string   `yaml:"history_file"`
}

// Config is the top-level simulation configuration, loaded from YAML.
type Config struct {
	FixedSimulation  FixedSimConfig  `yaml:"fixed_simulation"`
	RandomSimulation RandomSimConfig `yaml:"random_simulation"`
}

// LoadConfig reads, validates, and normalizes a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// applyEnvOverrides layers APP__-prefixed environment variables over the
// file values, with __ separating the section from the field, e.g.
// APP__RANDOM_SIMULATION__NUM_WINDOWS=4.
func (c *Config) applyEnvOverrides() error {
	overrides := map[string]func(string) error{
		"APP__FIXED_SIMULATION__ENABLED":               envBool(&c.FixedSimulation.Enabled),
		"APP__FIXED_SIMULATION__NUM_WINDOWS":           envInt(&c.FixedSimulation.NumWindows),
		"APP__FIXED_SIMULATION__HISTORY_FILE":          envString(&c.FixedSimulation.HistoryFile),
		"APP__RANDOM_SIMULATION__ENABLED":              envBool(&c.RandomSimulation.Enabled),
		"APP__RANDOM_SIMULATION__NUM_WINDOWS":          envInt(&c.RandomSimulation.NumWindows),
		"APP__RANDOM_SIMULATION__AVG_ARRIVAL_INTERVAL": envDuration(&c.RandomSimulation.AvgArrivalInterval),
		"APP__RANDOM_SIMULATION__MIN_SERVICE_TIME":     envDuration(&c.RandomSimulation.MinServiceTime),
		"APP__RANDOM_SIMULATION__MAX_SERVICE_TIME":     envDuration(&c.RandomSimulation.MaxServiceTime),
		"APP__RANDOM_SIMULATION__MAX_SIMULATION_TIME":  envDuration(&c.RandomSimulation.MaxSimulationTime),
		"APP__RANDOM_SIMULATION__HISTORY_FILE":         envString(&c.RandomSimulation.HistoryFile),
	}
	for key, apply := range overrides {
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := apply(raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func envBool(dst *bool) func(string) error {
	return func(raw string) error {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func envInt(dst *int) func(string) error {
	return func(raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func envString(dst *string) func(string) error {
	return func(raw string) error {
		*dst = raw
		return nil
	}
}

func envDuration(dst *Duration) func(string) error {
	return func(raw string) error {
		seconds, err := sim.ParseDuration(raw)
		if err != nil {
			return err
		}
		*dst = Duration(seconds)
		return nil
	}
}

// Validate checks that the config describes at least one runnable simulation.
func (c *Config) Validate() error {
	if !c.FixedSimulation.Enabled && !c.RandomSimulation.Enabled {
		return errors.New("at least one simulation (fixed or random) must be enabled")
	}
	if c.FixedSimulation.Enabled && c.FixedSimulation.NumWindows == 0 {
		return errors.New("fixed_simulation: num_windows must be greater than 0")
	}
	if c.RandomSimulation.Enabled && c.RandomSimulation.NumWindows == 0 {
		return errors.New("random_simulation: num_windows must be greater than 0")
	}
	return nil
}

// Normalize sorts the fixed customer list by arrival time. The engine sorts
// again before running, but a sorted config keeps customer ids aligned with
// arrival order in the event table.
func (c *Config) Normalize() {
	sort.SliceStable(c.FixedSimulation.Customers, func(i, j int) bool {
		return c.FixedSimulation.Customers[i].Arrival < c.FixedSimulation.Customers[j].Arrival
	})
}
