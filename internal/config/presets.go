package config

var Presets = map[string]*Config{
	"trim": {
		Simplify: true, Dt: 0.01, Duration: 20.0,
		InitState: InitStateConfig{Airspeed: 29.6, AlphaDeg: 9.0},
		Inputs:    InputConfig{ElevatorDeg: 0.68, Throttle: 12.7},
	},
	"pitch-up": {
		Simplify: true, Dt: 0.005, Duration: 10.0,
		InitState: InitStateConfig{Airspeed: 29.6, AlphaDeg: 14.0, PitchRate: 0.1},
		Inputs:    InputConfig{ElevatorDeg: -2.0, Throttle: 12.7},
	},
	"sensitivity": {
		STM: true, Simplify: true, Dt: 0.005, Duration: 5.0,
		InitState: InitStateConfig{Airspeed: 29.6, AlphaDeg: 9.0},
		Inputs:    InputConfig{ElevatorDeg: 0.68, Throttle: 12.7},
	},
}

// GetPreset returns a copy of the named preset, or nil when unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	if c.Name == "" {
		c.Name = DefaultConfig().Name
	}
	return &c
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	return names
}
