// Package config holds the yaml run configuration for the gtm CLI:
// which model variant to build and where to start a simulation.
// Angles are configured in degrees and converted once on read.
package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flightdyn/gtm/internal/gtm"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 20.0
)

type Config struct {
	STM      bool    `yaml:"stm"`
	Simplify bool    `yaml:"simplify"`
	Name     string  `yaml:"name"`
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`

	InitState InitStateConfig `yaml:"init_state"`
	Inputs    InputConfig     `yaml:"inputs"`
}

type InitStateConfig struct {
	Airspeed  float64 `yaml:"airspeed"`   // m/s
	AlphaDeg  float64 `yaml:"alpha_deg"`  // deg
	PitchRate float64 `yaml:"pitch_rate"` // rad/s
	ThetaDeg  float64 `yaml:"theta_deg"`  // deg
}

type InputConfig struct {
	ElevatorDeg float64 `yaml:"elevator_deg"` // deg
	Throttle    float64 `yaml:"throttle"`     // percent
}

// DefaultConfig is the canonical trim condition with conventional
// build and simulation settings.
func DefaultConfig() *Config {
	return &Config{
		Simplify: true,
		Name:     gtm.DefaultName,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		InitState: InitStateConfig{
			Airspeed: 29.6,
			AlphaDeg: 9.0,
		},
		Inputs: InputConfig{
			ElevatorDeg: 0.68,
			Throttle:    12.7,
		},
	}
}

// Load reads path over DefaultConfig, so absent keys keep defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildOptions maps the config onto model-builder options.
func (c *Config) BuildOptions() gtm.Options {
	name := c.Name
	if name == "" {
		name = gtm.DefaultName
	}
	return gtm.Options{AugmentSTM: c.STM, Simplify: c.Simplify, Name: name}
}

// StateVector returns the configured base state [V, alpha, q, theta]
// in SI units and radians.
func (c *Config) StateVector() []float64 {
	return []float64{
		c.InitState.Airspeed,
		deg2rad(c.InitState.AlphaDeg),
		c.InitState.PitchRate,
		deg2rad(c.InitState.ThetaDeg),
	}
}

// InputVector returns the configured inputs [delta_e, delta_t].
func (c *Config) InputVector() []float64 {
	return []float64{deg2rad(c.Inputs.ElevatorDeg), c.Inputs.Throttle}
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
